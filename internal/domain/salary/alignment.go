package salary

import "math"

type Status string

const (
	StatusOverqualified  Status = "overqualified"
	StatusUnderqualified Status = "underqualified"
	StatusOptimal        Status = "optimal"
)

// Label is the human wording shown next to the status.
func (s Status) Label() string {
	switch s {
	case StatusOverqualified:
		return "Overqualified"
	case StatusUnderqualified:
		return "Insufficient qualification"
	default:
		return "Optimal fit"
	}
}

const (
	overqualifiedGap  = 3
	underqualifiedGap = -2

	maxLossPercent = 50.0

	// WorkHoursPerMonth converts a monthly salary to an hourly rate.
	WorkHoursPerMonth = 160
)

// Alignment is the result of comparing a competency rating with the
// complexity of the tasks the employee actually does.
type Alignment struct {
	Competency     int     `json:"competency"`
	TaskComplexity int     `json:"taskComplexity"`
	Gap            int     `json:"gap"`
	Status         Status  `json:"status"`
	Label          string  `json:"label"`
	Efficiency     float64 `json:"efficiency"`
	FinancialLoss  float64 `json:"financialLoss"`
}

// Align computes gap = competency - taskComplexity and classifies it.
// Efficiency is clamped to [0,100] and loss is capped at 50%.
func Align(competency, taskComplexity int) Alignment {
	gap := competency - taskComplexity
	g := float64(gap)
	abs := math.Abs(g)

	a := Alignment{Competency: competency, TaskComplexity: taskComplexity, Gap: gap}
	switch {
	case gap > overqualifiedGap:
		a.Status = StatusOverqualified
		a.Efficiency = 100 - g*10
		a.FinancialLoss = g * 5
	case gap < underqualifiedGap:
		a.Status = StatusUnderqualified
		a.Efficiency = 100 + g*15
		a.FinancialLoss = abs * 8
	default:
		a.Status = StatusOptimal
		a.Efficiency = 100 - abs*2
		a.FinancialLoss = abs * 2
	}
	a.Label = a.Status.Label()
	a.Efficiency = math.Max(0, math.Min(100, a.Efficiency))
	a.FinancialLoss = math.Min(maxLossPercent, a.FinancialLoss)
	return a
}

func HourlyRate(monthlySalary float64) float64 { return monthlySalary / WorkHoursPerMonth }

// MonthlyInefficiencyCost is the share of salary lost to misalignment.
func MonthlyInefficiencyCost(monthlySalary, lossPercent float64) float64 {
	return monthlySalary * lossPercent / 100
}
