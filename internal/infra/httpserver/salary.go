package httpserver

import (
	"net/http"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/salary"
	"github.com/bryanwahyu/teampulse-turbo/internal/middleware"
)

// POST /api/salary
// Body: any JSON object describing the team. Answers {ok, raw}.
func (r *Router) handleSalaryTeam(w http.ResponseWriter, req *http.Request) error {
	data, err := r.readBody(w, req)
	if err != nil {
		return err
	}
	payload, err := salary.DecodeTeamPayload(data)
	if err != nil {
		return err
	}
	raw, err := r.Salary.AnalyzeTeam(req.Context(), caller(req), payload)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "raw": raw})
	return nil
}

// POST /api/salary-employee
func (r *Router) handleSalaryEmployee(w http.ResponseWriter, req *http.Request) error {
	var e salary.Employee
	if err := r.decodeJSON(w, req, &e); err != nil {
		return err
	}
	sanitizeEmployee(&e)
	if err := middleware.ValidateStruct(e); err != nil {
		return err
	}

	a, err := r.Salary.AnalyzeEmployee(req.Context(), caller(req), e)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "analysis": a, "employee": e})
	return nil
}

// POST /api/salary-text
// Body: {"text": "..."}
func (r *Router) handleSalaryText(w http.ResponseWriter, req *http.Request) error {
	var body salary.TextRequest
	if err := r.decodeJSON(w, req, &body); err != nil {
		return err
	}
	body.Text = middleware.SanitizeString(body.Text)
	if err := middleware.ValidateStruct(body); err != nil {
		return err
	}

	a, err := r.Salary.AnalyzeTeamText(req.Context(), caller(req), body.Text)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "analysis": a})
	return nil
}

func sanitizeEmployee(e *salary.Employee) {
	for _, s := range []*string{&e.Name, &e.Position, &e.Skills, &e.Education, &e.Department, &e.Location, &e.Tasks} {
		*s = middleware.SanitizeString(*s)
	}
}
