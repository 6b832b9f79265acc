package salary

// DefaultRating is used when competency or task complexity is not given.
const DefaultRating = 5

// Employee is the single-employee form. Optional numbers are pointers so
// that "not provided" and zero stay distinct.
type Employee struct {
	Name           string   `json:"name" validate:"required,min=2,max=100" msg:"name must be 2–100 characters"`
	Position       string   `json:"position" validate:"required,min=2,max=100" msg:"position must be 2–100 characters"`
	Salary         float64  `json:"salary" validate:"min=1000,max=1000000" msg:"salary must be 1000–1000000"`
	Experience     *float64 `json:"experience,omitempty" validate:"omitempty,min=0,max=50" msg:"experience must be 0–50"`
	Skills         string   `json:"skills,omitempty" validate:"max=500" msg:"skills must be at most 500 characters"`
	Education      string   `json:"education,omitempty" validate:"max=200" msg:"education must be at most 200 characters"`
	Department     string   `json:"department,omitempty" validate:"max=100" msg:"department must be at most 100 characters"`
	Performance    *int     `json:"performance,omitempty" validate:"omitempty,min=1,max=10" msg:"performance must be 1–10"`
	Location       string   `json:"location,omitempty" validate:"max=100" msg:"location must be at most 100 characters"`
	Tasks          string   `json:"tasks,omitempty" validate:"max=2000" msg:"tasks must be at most 2000 characters"`
	Competency     *int     `json:"competency,omitempty" validate:"omitempty,min=1,max=10" msg:"competency must be 1–10"`
	TaskComplexity *int     `json:"taskComplexity,omitempty" validate:"omitempty,min=1,max=10" msg:"taskComplexity must be 1–10"`
}

func (e Employee) CompetencyRating() int { return intOr(e.Competency, DefaultRating) }

func (e Employee) TaskComplexityRating() int { return intOr(e.TaskComplexity, DefaultRating) }

func (e Employee) PerformanceRating() int { return intOr(e.Performance, DefaultRating) }

// Alignment runs the competency heuristic on the employee's ratings.
func (e Employee) Alignment() Alignment {
	return Align(e.CompetencyRating(), e.TaskComplexityRating())
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// TextRequest is the free-text team description.
type TextRequest struct {
	Text string `json:"text" validate:"required,min=20,max=15000" msg:"text must be 20–15000 characters"`
}
