// Package salary runs the three compensation analyses. Without an AI
// credential (Demo) every use case answers from local computation so the
// HTTP contract does not change.
package salary

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
	domain "github.com/bryanwahyu/teampulse-turbo/internal/domain/salary"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/ai/prompt"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
)

type Recorder interface {
	Record(ctx context.Context, owner string, typ workspace.ItemType, clientName string, payload any) error
}

type Service struct {
	AI          ai.Client
	Demo        bool
	Quota       *quota.Budget // nil when quota is disabled
	History     Recorder      // optional
	Log         *logger.Logger
	Clock       application.Clock
	Model       string
	Temperature float64
	MaxTokens   int

	randMu sync.Mutex
	Rand   *rand.Rand
}

// AnalyzeTeam returns the model's raw text for a team payload. The text is
// checked against the team report shape but returned even when it does not
// match, since the browser parses it itself.
func (s *Service) AnalyzeTeam(ctx context.Context, c application.Caller, payload map[string]any) (string, error) {
	if payload == nil {
		return "", domain.ErrNotObject
	}
	var raw string
	if s.Demo {
		s.randMu.Lock()
		if s.Rand == nil {
			s.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		report := domain.DemoTeamReport(payload, s.Rand)
		s.randMu.Unlock()
		b, err := json.Marshal(report)
		if err != nil {
			return "", err
		}
		raw = string(b)
	} else {
		out, err := s.complete(ctx, c, ai.Request{
			Operation: ai.OpSalary,
			System:    prompt.SalarySystem(),
			User:      prompt.SalaryUser(payload),
		})
		if err != nil {
			return "", err
		}
		raw = out
		if _, err := domain.ParseTeamReport(raw); err != nil {
			s.Log.Warn("team report does not match the expected shape", zap.Error(err))
		}
	}
	s.record(ctx, c, teamName(payload), raw)
	return raw, nil
}

// AnalyzeEmployee falls back to the local analysis when the model answer
// cannot be parsed. Upstream failures are returned.
func (s *Service) AnalyzeEmployee(ctx context.Context, c application.Caller, e domain.Employee) (*domain.EmployeeAnalysis, error) {
	var a *domain.EmployeeAnalysis
	if s.Demo {
		a = domain.FallbackEmployeeAnalysis(e)
	} else {
		out, err := s.complete(ctx, c, ai.Request{
			Operation: ai.OpEmployee,
			System:    prompt.EmployeeSystem(),
			User:      prompt.EmployeeUser(e),
			JSON:      true,
		})
		if err != nil {
			return nil, err
		}
		a, err = domain.ParseEmployeeAnalysis(out, e)
		if err != nil {
			s.Log.Warn("employee analysis unparseable, using local analysis",
				zap.String("employee", e.Name), zap.Error(err))
			a = domain.FallbackEmployeeAnalysis(e)
		}
	}
	s.record(ctx, c, e.Name, a)
	return a, nil
}

// AnalyzeTeamText reports ai.ErrUnparseable when the model answer does not
// have the team analysis shape.
func (s *Service) AnalyzeTeamText(ctx context.Context, c application.Caller, text string) (*domain.TeamTextAnalysis, error) {
	var a *domain.TeamTextAnalysis
	if s.Demo {
		a = domain.DemoTeamTextAnalysis()
	} else {
		out, err := s.complete(ctx, c, ai.Request{
			Operation: ai.OpTeamText,
			System:    prompt.TeamTextSystem(),
			User:      prompt.TeamTextUser(strings.TrimSpace(text)),
			JSON:      true,
		})
		if err != nil {
			return nil, err
		}
		a, err = domain.ParseTeamTextAnalysis(out)
		if err != nil {
			s.Log.Warn("team text analysis unparseable", zap.Error(err))
			return nil, err
		}
	}
	s.record(ctx, c, "team", a)
	return a, nil
}

func (s *Service) complete(ctx context.Context, c application.Caller, req ai.Request) (string, error) {
	if _, err := s.Quota.Charge(ctx, c.IP, quota.SalaryCost); err != nil {
		return "", err
	}
	req.Model = s.Model
	req.Temperature = s.Temperature
	req.MaxTokens = s.MaxTokens

	start := s.Clock.Now()
	out, err := s.AI.Complete(ctx, req)
	s.Log.AI(s.AI.Name(), s.Model, req.Operation, out.Usage.Total(), s.Clock.Now().Sub(start), err)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (s *Service) record(ctx context.Context, c application.Caller, name string, payload any) {
	if s.History == nil || c.User == "" {
		return
	}
	if err := s.History.Record(ctx, c.User, workspace.TypeSalary, name, payload); err != nil {
		s.Log.Error("failed to record salary history", zap.Error(err))
	}
}

// teamName uses payload["team"] or payload["name"] when present.
func teamName(payload map[string]any) string {
	for _, k := range []string{"team", "name", "company"} {
		if v, ok := payload[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return "team"
}
