package negotiation

import (
	"fmt"
	"strings"
)

// Profile describes the counterpart of a negotiation. It is filled from a
// free-text form and embedded into the prompt as is.
type Profile struct {
	Company     string `json:"company"`
	Negotiator  string `json:"negotiator"`
	Sector      string `json:"sector"`
	Goal        string `json:"goal"`
	Criteria    string `json:"criteria"`
	Constraints string `json:"constraints"`
	Notes       string `json:"notes"`
}

// ProfileKeys lists the form fields in display order.
var ProfileKeys = []string{"company", "negotiator", "sector", "goal", "criteria", "constraints", "notes"}

// Fields flattens the profile into its per-field key/value form.
func (p Profile) Fields() map[string]string {
	return map[string]string{
		"company":     p.Company,
		"negotiator":  p.Negotiator,
		"sector":      p.Sector,
		"goal":        p.Goal,
		"criteria":    p.Criteria,
		"constraints": p.Constraints,
		"notes":       p.Notes,
	}
}

// ProfileFromFields is the inverse of Fields. Unknown keys are rejected so a
// save/load round trip is exact.
func ProfileFromFields(m map[string]string) (Profile, error) {
	var p Profile
	for k, v := range m {
		switch k {
		case "company":
			p.Company = v
		case "negotiator":
			p.Negotiator = v
		case "sector":
			p.Sector = v
		case "goal":
			p.Goal = v
		case "criteria":
			p.Criteria = v
		case "constraints":
			p.Constraints = v
		case "notes":
			p.Notes = v
		default:
			return Profile{}, fmt.Errorf("unknown profile field %q", k)
		}
	}
	return p, nil
}

func (p Profile) IsZero() bool { return p == Profile{} }

// Key identifies the client a profile belongs to.
func (p Profile) Key() string { return strings.ToLower(strings.TrimSpace(p.Company)) }
