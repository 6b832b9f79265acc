// Package analysis runs streamed negotiation analyses.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/ai/prompt"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/storage"
)

var ErrEmptyInput = errors.New("please enter text to analyze")

// Recorder stores finished analyses in the user's history.
type Recorder interface {
	Record(ctx context.Context, owner string, typ workspace.ItemType, clientName string, payload any) error
}

// Archive keeps uploads and transcripts outside the process.
type Archive interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type Upload struct {
	Name string
	Data []byte
}

type Input struct {
	Caller  application.Caller
	Profile negotiation.Profile
	Text    string
	Upload  *Upload
}

type Service struct {
	AI          ai.Client
	Quota       *quota.Budget // nil when quota is disabled
	History     Recorder      // optional
	Archive     Archive       // optional
	Log         *logger.Logger
	Clock       application.Clock
	Model       string
	Temperature float64
	MaxTokens   int
}

// Stream validates the input, charges the quota and opens the upstream
// stream bound to ctx. Cancelling ctx aborts the model call.
func (s *Service) Stream(ctx context.Context, in Input) (*Run, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return nil, ErrEmptyInput
	}
	if _, err := s.Quota.Charge(ctx, in.Caller.IP, quota.EstimateTokens(utf8.RuneCountInString(in.Text))); err != nil {
		return nil, err
	}

	req := ai.Request{
		Operation:   ai.OpNegotiation,
		System:      prompt.NegotiationSystem(),
		User:        prompt.NegotiationUser(in.Profile, in.Text),
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}
	start := s.Clock.Now()
	st, err := s.AI.Stream(ctx, req)
	if err != nil {
		s.Log.AI(s.AI.Name(), s.Model, ai.OpNegotiation, 0, s.Clock.Now().Sub(start), err)
		return nil, fmt.Errorf("open analysis stream: %w", err)
	}
	return &Run{Stream: st, in: in, start: start, prompt: len(req.System) + len(req.User)}, nil
}

// Run is an open analysis. It collects the deltas it hands out so the
// complete answer is available once the stream ends.
type Run struct {
	ai.Stream
	in     Input
	start  time.Time
	prompt int
	out    strings.Builder
}

func (r *Run) Next() bool {
	if !r.Stream.Next() {
		return false
	}
	r.out.WriteString(r.Stream.Delta())
	return true
}

func (r *Run) Output() string { return r.out.String() }

// Finish logs the call and, for a completed run, stores the history entry
// and the archive copies. Callers pass a context that outlives the request.
func (s *Service) Finish(ctx context.Context, r *Run) {
	output := r.Output()
	streamErr := r.Err()
	s.Log.AI(s.AI.Name(), s.Model, ai.OpNegotiation,
		int(quota.EstimateTokens(r.prompt+len(output))), s.Clock.Now().Sub(r.start), streamErr)
	if streamErr != nil || output == "" {
		return
	}

	var payload any = output
	if res, err := negotiation.Parse(output); err == nil {
		payload = res
	} else {
		s.Log.Warn("negotiation output is not a valid analysis", zap.Error(err))
	}

	if s.History != nil {
		if err := s.History.Record(ctx, r.in.Caller.User, workspace.TypeNegotiation, r.in.Profile.Company, payload); err != nil {
			s.Log.Error("failed to record analysis history", zap.Error(err))
		}
	}
	if s.Archive != nil {
		s.archive(ctx, r, output)
	}
}

func (s *Service) archive(ctx context.Context, r *Run, output string) {
	now := s.Clock.Now()
	id := uuid.New()
	if up := r.in.Upload; up != nil {
		key := storage.ObjectKey(r.in.Caller.User, up.Name, now, id)
		if _, err := s.Archive.Put(ctx, key, storage.ContentTypeFor(up.Name), up.Data); err != nil {
			s.Log.Error("failed to archive upload", zap.String("key", key), zap.Error(err))
		}
	}
	key := storage.ObjectKey(r.in.Caller.User, "analysis.json", now, id)
	if _, err := s.Archive.Put(ctx, key, "application/json", []byte(output)); err != nil {
		s.Log.Error("failed to archive analysis", zap.String("key", key), zap.Error(err))
	}
}
