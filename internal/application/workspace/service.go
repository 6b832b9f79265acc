package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	domain "github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrCompanyMissing = errors.New("company is required to save a client")
	ErrInvalidItem    = errors.New("invalid history item")
)

// Service implements use-cases untuk workspace: profile form, saved clients
// and analysis history of one user.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

func NewService(repo domain.Repository, clock application.Clock) *Service {
	return &Service{Repo: repo, Clock: clock}
}

// SaveProfile stores the per-field form values.
func (s *Service) SaveProfile(ctx context.Context, owner string, fields map[string]string) error {
	p, err := negotiation.ProfileFromFields(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return s.Repo.SaveProfile(ctx, owner, p)
}

// Profile returns every field, empty ones included.
func (s *Service) Profile(ctx context.Context, owner string) (map[string]string, error) {
	p, err := s.Repo.GetProfile(ctx, owner)
	if err != nil {
		return nil, err
	}
	return p.Fields(), nil
}

// SaveClient upserts by company name. Re-saving an existing company keeps
// its ID and replaces the profile.
func (s *Service) SaveClient(ctx context.Context, owner string, p negotiation.Profile) (domain.Client, error) {
	p.Company = strings.TrimSpace(p.Company)
	if p.Company == "" {
		return domain.Client{}, ErrCompanyMissing
	}
	return s.Repo.UpsertClient(ctx, domain.Client{
		ID:        uuid.NewString(),
		Owner:     owner,
		Profile:   p,
		UpdatedAt: s.Clock.Now(),
	})
}

func (s *Service) Clients(ctx context.Context, owner string) ([]domain.Client, error) {
	return s.Repo.ListClients(ctx, owner)
}

func (s *Service) DeleteClient(ctx context.Context, owner, id string) error {
	return s.Repo.DeleteClient(ctx, owner, id)
}

// AddHistory validates and stores an item built by the browser.
func (s *Service) AddHistory(ctx context.Context, owner string, typ domain.ItemType, clientName string, payload json.RawMessage) (domain.HistoryItem, error) {
	if !typ.Valid() {
		return domain.HistoryItem{}, fmt.Errorf("%w: type must be neg or salary", ErrInvalidItem)
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return domain.HistoryItem{}, fmt.Errorf("%w: payload must be JSON", ErrInvalidItem)
	}
	item := domain.HistoryItem{
		ID:         uuid.NewString(),
		Owner:      owner,
		Type:       typ,
		ClientName: strings.TrimSpace(clientName),
		Payload:    payload,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Repo.AddHistory(ctx, item); err != nil {
		return domain.HistoryItem{}, err
	}
	return item, nil
}

// Record appends the result of a finished analysis. A payload that is
// already JSON text is stored as is, anything else is marshalled.
func (s *Service) Record(ctx context.Context, owner string, typ domain.ItemType, clientName string, payload any) error {
	var raw json.RawMessage
	switch v := payload.(type) {
	case string:
		if json.Valid([]byte(v)) {
			raw = json.RawMessage(v)
		} else {
			b, _ := json.Marshal(v)
			raw = b
		}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		raw = b
	}
	_, err := s.AddHistory(ctx, owner, typ, clientName, raw)
	return err
}

func (s *Service) History(ctx context.Context, owner string) ([]domain.HistoryItem, error) {
	return s.Repo.ListHistory(ctx, owner)
}

func (s *Service) ClearHistory(ctx context.Context, owner string) error {
	return s.Repo.ClearHistory(ctx, owner)
}
