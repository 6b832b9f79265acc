package salary

import (
	"fmt"
	"math"
)

// FallbackEmployeeAnalysis builds an analysis from the competency heuristic
// alone. It is used when no model is configured or its answer is unusable.
func FallbackEmployeeAnalysis(e Employee) *EmployeeAnalysis {
	al := e.Alignment()
	gap := al.Gap
	absGap := math.Abs(float64(gap))
	monthlyLoss := MonthlyInefficiencyCost(e.Salary, al.FinancialLoss)

	a := &EmployeeAnalysis{
		EmployeeAnalysis: EmployeeAssessment{
			SalaryFairness:   math.Round(7 - absGap*0.5),
			MarketPosition:   al.Label,
			PerformanceRatio: float64(e.PerformanceRating()),
			GrowthPotential:  growthPotential(gap),
		},
		RiskAssessment: RiskAssessment{
			FlightProbability: flightProbability(gap),
			RetentionRisk:     "medium",
		},
		MarketData: MarketData{
			PositionRangeMin: e.Salary * 0.8,
			MarketMedian:     e.Salary,
			PositionRangeMax: e.Salary * 1.3,
		},
		Recommendations: Recommendations{
			SalaryAdjustment:  salaryAdjustment(gap),
			CareerDevelopment: "Balance task complexity with the employee's competency level",
			SkillsImprovement: e.Skills,
		},
		Source: SourceFallback,
	}
	if gap > overqualifiedGap {
		a.RiskAssessment.RetentionRisk = "high"
	}
	if a.Recommendations.SkillsImprovement == "" {
		a.Recommendations.SkillsImprovement = "Develop core skills for the position"
	}

	first := "Optimise task distribution"
	if gap > overqualifiedGap {
		first = "Assign more complex projects"
	}
	third := "Keep the current balance"
	if gap < underqualifiedGap {
		third = "Arrange mentoring or training"
	}
	a.ActionPlan = []string{
		first,
		"Reassess competencies in 3 months",
		third,
		fmt.Sprintf("Reduce costs: potential savings %.0f UAH/month", monthlyLoss),
	}

	a.attachLocal(e)
	return a
}

func growthPotential(gap int) string {
	switch {
	case gap > 2:
		return "high"
	case gap < underqualifiedGap:
		return "needs_training"
	default:
		return "stable"
	}
}

func flightProbability(gap int) float64 {
	switch {
	case gap > overqualifiedGap:
		return 8
	case gap < underqualifiedGap:
		return 3
	default:
		return 5
	}
}

func salaryAdjustment(gap int) string {
	switch {
	case gap > overqualifiedGap:
		return "Consider a raise or more complex assignments"
	case gap < underqualifiedGap:
		return "Training or simpler tasks are required"
	default:
		return "Salary matches the assigned tasks"
	}
}
