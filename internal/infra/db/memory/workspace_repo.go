package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
)

type userSpace struct {
	profile negotiation.Profile
	clients []workspace.Client
	history []workspace.HistoryItem
}

// WorkspaceRepository keeps everything in process memory.
type WorkspaceRepository struct {
	mu    sync.RWMutex
	users map[string]*userSpace
}

func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{users: make(map[string]*userSpace)}
}

func (r *WorkspaceRepository) space(owner string) *userSpace {
	u, ok := r.users[owner]
	if !ok {
		u = &userSpace{}
		r.users[owner] = u
	}
	return u
}

func (r *WorkspaceRepository) SaveProfile(_ context.Context, owner string, p negotiation.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.space(owner).profile = p
	return nil
}

func (r *WorkspaceRepository) GetProfile(_ context.Context, owner string) (negotiation.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[owner]; ok {
		return u.profile, nil
	}
	return negotiation.Profile{}, nil
}

func (r *WorkspaceRepository) UpsertClient(_ context.Context, c workspace.Client) (workspace.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.space(c.Owner)
	var saved workspace.Client
	u.clients, saved = workspace.Upsert(u.clients, c)
	return saved, nil
}

func (r *WorkspaceRepository) ListClients(_ context.Context, owner string) ([]workspace.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[owner]
	if !ok {
		return []workspace.Client{}, nil
	}
	return append([]workspace.Client{}, u.clients...), nil
}

func (r *WorkspaceRepository) DeleteClient(_ context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[owner]
	if !ok {
		return workspace.ErrNotFound
	}
	for i, c := range u.clients {
		if c.ID == id {
			u.clients = append(u.clients[:i], u.clients[i+1:]...)
			return nil
		}
	}
	return workspace.ErrNotFound
}

func (r *WorkspaceRepository) AddHistory(_ context.Context, item workspace.HistoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.space(item.Owner)
	u.history = workspace.Prepend(u.history, item)
	return nil
}

func (r *WorkspaceRepository) ListHistory(_ context.Context, owner string) ([]workspace.HistoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[owner]
	if !ok {
		return []workspace.HistoryItem{}, nil
	}
	return append([]workspace.HistoryItem{}, u.history...), nil
}

func (r *WorkspaceRepository) ClearHistory(_ context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[owner]; ok {
		u.history = nil
	}
	return nil
}
