package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/middleware"
)

func owner(req *http.Request) string { return middleware.UsernameFrom(req.Context()) }

// GET /api/profile
func (r *Router) handleGetProfile(w http.ResponseWriter, req *http.Request) error {
	fields, err := r.Workspace.Profile(req.Context(), owner(req))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, fields)
	return nil
}

// PUT /api/profile
// Body: {"company": "...", ...} with only the seven profile keys.
func (r *Router) handlePutProfile(w http.ResponseWriter, req *http.Request) error {
	var fields map[string]string
	if err := r.decodeJSON(w, req, &fields); err != nil {
		return err
	}
	if err := r.Workspace.SaveProfile(req.Context(), owner(req), fields); err != nil {
		return err
	}
	return r.handleGetProfile(w, req)
}

// GET /api/clients
func (r *Router) handleListClients(w http.ResponseWriter, req *http.Request) error {
	list, err := r.Workspace.Clients(req.Context(), owner(req))
	if err != nil {
		return err
	}
	if list == nil {
		list = []workspace.Client{}
	}
	middleware.WriteJSON(w, http.StatusOK, list)
	return nil
}

// PUT /api/clients
// Body: a profile. Saving an existing company replaces it.
func (r *Router) handleSaveClient(w http.ResponseWriter, req *http.Request) error {
	var p negotiation.Profile
	if err := r.decodeJSON(w, req, &p); err != nil {
		return err
	}
	c, err := r.Workspace.SaveClient(req.Context(), owner(req), p)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, c)
	return nil
}

// DELETE /api/clients/{id}
func (r *Router) handleDeleteClient(w http.ResponseWriter, req *http.Request) error {
	if err := r.Workspace.DeleteClient(req.Context(), owner(req), chi.URLParam(req, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /api/history
func (r *Router) handleListHistory(w http.ResponseWriter, req *http.Request) error {
	items, err := r.Workspace.History(req.Context(), owner(req))
	if err != nil {
		return err
	}
	if items == nil {
		items = []workspace.HistoryItem{}
	}
	middleware.WriteJSON(w, http.StatusOK, items)
	return nil
}

// POST /api/history
// Body: {"type": "neg|salary", "clientName": "...", "payload": <json>}
func (r *Router) handleAddHistory(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Type       workspace.ItemType `json:"type"`
		ClientName string             `json:"clientName"`
		Payload    json.RawMessage    `json:"payload"`
	}
	if err := r.decodeJSON(w, req, &body); err != nil {
		return err
	}
	item, err := r.Workspace.AddHistory(req.Context(), owner(req), body.Type, middleware.SanitizeString(body.ClientName), body.Payload)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusCreated, item)
	return nil
}

// DELETE /api/history
func (r *Router) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	if err := r.Workspace.ClearHistory(req.Context(), owner(req)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
