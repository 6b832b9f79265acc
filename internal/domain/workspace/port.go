package workspace

import (
	"context"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
)

// Repository persists per-user workspace data. Implementations must keep
// history ordered newest first and capped at MaxHistory.
type Repository interface {
	SaveProfile(ctx context.Context, owner string, p negotiation.Profile) error
	// GetProfile returns the zero Profile when nothing was saved.
	GetProfile(ctx context.Context, owner string) (negotiation.Profile, error)

	UpsertClient(ctx context.Context, c Client) (Client, error)
	ListClients(ctx context.Context, owner string) ([]Client, error)
	DeleteClient(ctx context.Context, owner, id string) error

	AddHistory(ctx context.Context, item HistoryItem) error
	ListHistory(ctx context.Context, owner string) ([]HistoryItem, error)
	ClearHistory(ctx context.Context, owner string) error
}
