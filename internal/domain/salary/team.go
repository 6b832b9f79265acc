package salary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
)

type EmployeeReport struct {
	Name                    string   `json:"name"`
	Role                    string   `json:"role,omitempty"`
	HourlyRate              float64  `json:"hourly_rate,omitempty"`
	MarketRateComparison    string   `json:"market_rate_comparison,omitempty"`
	InefficiencyPercent     float64  `json:"inefficiency_percent"`
	AnnualLossUSD           float64  `json:"annual_loss_usd,omitempty"`
	OptimizationSuggestions []string `json:"optimization_suggestions,omitempty"`
	RetentionRisk           string   `json:"retention_risk,omitempty"`
}

type TeamSummary struct {
	TotalInefficiencyPercent float64  `json:"total_inefficiency_percent"`
	TotalEmployees           int      `json:"total_employees,omitempty"`
	AverageSalary            float64  `json:"average_salary,omitempty"`
	TotalAnnualLossUSD       float64  `json:"total_annual_loss_usd,omitempty"`
	TopInefficiencies        []string `json:"top_inefficiencies,omitempty"`
	QuickWins                []string `json:"quick_wins,omitempty"`
	NextBestActions          []string `json:"next_best_actions,omitempty"`
}

// TeamReport is the expected shape of the raw text returned by /api/salary.
type TeamReport struct {
	PerEmployee     []EmployeeReport `json:"per_employee"`
	TeamSummary     TeamSummary      `json:"team_summary"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Confidence      float64          `json:"confidence,omitempty"`
}

// ParseTeamReport checks that raw model text has the team report shape.
func ParseTeamReport(raw string) (*TeamReport, error) {
	var r TeamReport
	if err := ai.DecodeJSON(raw, &r); err != nil {
		return nil, err
	}
	if len(r.PerEmployee) == 0 && r.TeamSummary.TotalInefficiencyPercent == 0 {
		return nil, fmt.Errorf("%w: team report is empty", ai.ErrUnparseable)
	}
	for _, e := range r.PerEmployee {
		if e.InefficiencyPercent < 0 || e.InefficiencyPercent > 100 {
			return nil, fmt.Errorf("%w: inefficiency_percent %v out of range", ai.ErrUnparseable, e.InefficiencyPercent)
		}
	}
	return &r, nil
}

var ErrNotObject = errors.New("team payload is not a JSON object")

// DecodeTeamPayload accepts any JSON object. Arrays, strings, numbers and
// null are rejected with ErrNotObject.
func DecodeTeamPayload(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrNotObject
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	return m, nil
}

const demoAverageSalary = 45000

var demoRecommendations = []string{
	"Rebalance task distribution across the team",
	"Review salaries against measured productivity",
	"Introduce a motivation system with KPIs",
	"Improve communication processes inside the team",
}

// DemoTeamReport produces a plausible report without a model. Employees are
// taken from payload["employees"] when it is an array.
func DemoTeamReport(payload map[string]any, rnd *rand.Rand) TeamReport {
	r := TeamReport{
		TeamSummary: TeamSummary{
			TotalInefficiencyPercent: float64(rnd.IntN(30) + 15),
			AverageSalary:            demoAverageSalary,
		},
		Recommendations: demoRecommendations,
	}

	employees, ok := payload["employees"].([]any)
	if !ok {
		r.PerEmployee = []EmployeeReport{
			{Name: "Demo employee 1", InefficiencyPercent: 15},
			{Name: "Demo employee 2", InefficiencyPercent: 20},
			{Name: "Demo employee 3", InefficiencyPercent: 12},
		}
		r.TeamSummary.TotalEmployees = len(r.PerEmployee)
		return r
	}

	r.TeamSummary.TotalEmployees = len(employees)
	for i, e := range employees {
		name := fmt.Sprintf("Employee %d", i+1)
		if m, ok := e.(map[string]any); ok {
			if n, ok := m["name"].(string); ok && n != "" {
				name = n
			}
		}
		r.PerEmployee = append(r.PerEmployee, EmployeeReport{
			Name:                name,
			InefficiencyPercent: float64(rnd.IntN(25) + 10),
		})
	}
	return r
}

// DemoTeamTextAnalysis is the team text answer used without a model.
func DemoTeamTextAnalysis() *TeamTextAnalysis {
	return &TeamTextAnalysis{
		OverallEfficiency: 7,
		MarketAlignment:   "at_market",
		CostEffectiveness: 6,
		Strengths:         []string{"Clear role separation", "Experienced core members"},
		Concerns:          []string{"Senior staff spend time on routine tasks", "No documented salary bands"},
		Inefficiencies: []Inefficiency{{
			Issue:    "Routine work assigned to senior roles",
			Impact:   "medium",
			Solution: "Delegate routine tasks to junior staff or automate them",
		}},
		Recommendations: demoRecommendations,
		SalaryRanges: SalaryRanges{
			CurrentAverage: demoAverageSalary,
			RecommendedMin: demoAverageSalary * 0.8,
			RecommendedMax: demoAverageSalary * 1.3,
		},
		BudgetOptimization: "Redirect savings from task rebalancing to retention bonuses",
		MarketTrends:       []string{"Demand for senior engineers remains high"},
		Confidence:         0.5,
	}
}
