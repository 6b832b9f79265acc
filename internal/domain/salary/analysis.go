package salary

import (
	"errors"
	"fmt"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
)

type EmployeeAssessment struct {
	SalaryFairness    float64 `json:"salary_fairness"`
	MarketPosition    string  `json:"market_position"`
	PerformanceRatio  float64 `json:"performance_ratio"`
	GrowthPotential   string  `json:"growth_potential"`
	RetentionPriority string  `json:"retention_priority,omitempty"`
}

type MarketData struct {
	PositionRangeMin     float64 `json:"position_range_min"`
	PositionRangeMax     float64 `json:"position_range_max"`
	MarketMedian         float64 `json:"market_median"`
	LocationAdjustment   float64 `json:"location_adjustment,omitempty"`
	ExperienceMultiplier float64 `json:"experience_multiplier,omitempty"`
	SkillsPremium        float64 `json:"skills_premium,omitempty"`
}

type RiskAssessment struct {
	FlightProbability     float64 `json:"flight_probability"`
	RetentionRisk         string  `json:"retention_risk"`
	MarketDemand          string  `json:"market_demand,omitempty"`
	ReplacementDifficulty string  `json:"replacement_difficulty,omitempty"`
	KnowledgeCriticality  string  `json:"knowledge_criticality,omitempty"`
}

type Recommendations struct {
	SalaryAdjustment  string `json:"salary_adjustment"`
	CareerDevelopment string `json:"career_development"`
	SkillsImprovement string `json:"skills_improvement"`
	RetentionStrategy string `json:"retention_strategy,omitempty"`
}

// EmployeeAnalysis answers /api/salary-employee. The last three fields are
// always computed locally, never taken from the model.
type EmployeeAnalysis struct {
	EmployeeAnalysis   EmployeeAssessment `json:"employee_analysis"`
	MarketData         MarketData         `json:"market_data"`
	RiskAssessment     RiskAssessment     `json:"risk_assessment"`
	Recommendations    Recommendations    `json:"recommendations"`
	ActionPlan         []string           `json:"action_plan"`
	BenchmarkCompanies []string           `json:"benchmark_companies,omitempty"`
	Confidence         float64            `json:"confidence"`

	CompetencyAlignment     Alignment `json:"competency_alignment"`
	HourlyRate              float64   `json:"hourly_rate"`
	MonthlyInefficiencyCost float64   `json:"monthly_inefficiency_cost"`
	Source                  string    `json:"source"` // ai | fallback
}

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// ParseEmployeeAnalysis decodes model output and attaches the locally
// computed alignment figures for e.
func ParseEmployeeAnalysis(raw string, e Employee) (*EmployeeAnalysis, error) {
	var a EmployeeAnalysis
	if err := ai.DecodeJSON(raw, &a); err != nil {
		return nil, err
	}
	if a.EmployeeAnalysis.MarketPosition == "" && len(a.ActionPlan) == 0 && a.Recommendations.SalaryAdjustment == "" {
		return nil, fmt.Errorf("%w: employee analysis is empty", ai.ErrUnparseable)
	}
	a.Confidence = ai.NormalizeConfidence(a.Confidence)
	a.attachLocal(e)
	a.Source = SourceAI
	return &a, nil
}

func (a *EmployeeAnalysis) attachLocal(e Employee) {
	al := e.Alignment()
	a.CompetencyAlignment = al
	a.HourlyRate = HourlyRate(e.Salary)
	a.MonthlyInefficiencyCost = MonthlyInefficiencyCost(e.Salary, al.FinancialLoss)
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type TeamStructure struct {
	RolesIdentified       []string         `json:"roles_identified"`
	SalaryRanges          map[string]Range `json:"salary_ranges"`
	TeamSize              int              `json:"team_size"`
	SeniorityDistribution map[string]int   `json:"seniority_distribution"`
}

type Inefficiency struct {
	Issue      string  `json:"issue"`
	Impact     string  `json:"impact"`
	AnnualCost float64 `json:"annual_cost"`
	Solution   string  `json:"solution"`
}

type SalaryRanges struct {
	CurrentAverage         float64 `json:"current_average"`
	RecommendedMin         float64 `json:"recommended_min"`
	RecommendedMax         float64 `json:"recommended_max"`
	MarketAdjustmentNeeded bool    `json:"market_adjustment_needed"`
}

type RetentionRisk struct {
	Role       string `json:"role"`
	RiskLevel  string `json:"risk_level"`
	Mitigation string `json:"mitigation"`
}

type HiringRecommendation struct {
	Role        string `json:"role"`
	Priority    string `json:"priority"`
	BudgetRange string `json:"budget_range"`
	Rationale   string `json:"rationale"`
}

// TeamTextAnalysis answers /api/salary-text.
type TeamTextAnalysis struct {
	OverallEfficiency     float64                `json:"overall_efficiency"`
	MarketAlignment       string                 `json:"market_alignment"`
	CostEffectiveness     float64                `json:"cost_effectiveness"`
	TeamStructure         TeamStructure          `json:"team_structure"`
	Strengths             []string               `json:"strengths"`
	Concerns              []string               `json:"concerns"`
	Inefficiencies        []Inefficiency         `json:"inefficiencies"`
	Recommendations       []string               `json:"recommendations"`
	SalaryRanges          SalaryRanges           `json:"salary_ranges"`
	BudgetOptimization    string                 `json:"budget_optimization"`
	RetentionRisks        []RetentionRisk        `json:"retention_risks"`
	HiringRecommendations []HiringRecommendation `json:"hiring_recommendations"`
	MarketTrends          []string               `json:"market_trends"`
	CompetitiveAnalysis   string                 `json:"competitive_analysis"`
	Confidence            float64                `json:"confidence"`
}

var errOutOfScale = errors.New("efficiency scores must be on a 0–10 scale")

func ParseTeamTextAnalysis(raw string) (*TeamTextAnalysis, error) {
	var a TeamTextAnalysis
	if err := ai.DecodeJSON(raw, &a); err != nil {
		return nil, err
	}
	if len(a.Strengths) == 0 && len(a.Concerns) == 0 && len(a.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: team analysis is empty", ai.ErrUnparseable)
	}
	if a.OverallEfficiency < 0 || a.OverallEfficiency > 10 || a.CostEffectiveness < 0 || a.CostEffectiveness > 10 {
		return nil, fmt.Errorf("%w: %v", ai.ErrUnparseable, errOutOfScale)
	}
	a.Confidence = ai.NormalizeConfidence(a.Confidence)
	return &a, nil
}
