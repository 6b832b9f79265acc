package salary

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
	domain "github.com/bryanwahyu/teampulse-turbo/internal/domain/salary"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/cache/memory"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
)

type fakeAI struct {
	text  string
	err   error
	calls []ai.Request
}

func (f *fakeAI) Name() string { return "fake" }
func (f *fakeAI) Complete(_ context.Context, req ai.Request) (ai.Completion, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return ai.Completion{}, f.err
	}
	return ai.Completion{Text: f.text, Usage: ai.Usage{PromptTokens: 10, CompletionTokens: 5}}, nil
}
func (f *fakeAI) Stream(context.Context, ai.Request) (ai.Stream, error) { return nil, ai.ErrUnavailable }

type fakeRecorder struct{ names []string }

func (r *fakeRecorder) Record(_ context.Context, _ string, typ workspace.ItemType, name string, _ any) error {
	if typ != workspace.TypeSalary {
		panic("unexpected type " + typ)
	}
	r.names = append(r.names, name)
	return nil
}

var (
	now    = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	caller = application.Caller{IP: "10.1.1.1", User: "admin"}
)

func newService(f *fakeAI, demo bool) (*Service, *fakeRecorder) {
	rec := &fakeRecorder{}
	return &Service{
		AI:      f,
		Demo:    demo,
		History: rec,
		Log:     logger.Nop(),
		Clock:   application.FixedClock(now),
		Model:   "gpt-4o",
		Rand:    rand.New(rand.NewPCG(1, 2)),
	}, rec
}

func ptr[T any](v T) *T { return &v }

var employee = domain.Employee{Name: "Olha", Position: "Designer", Salary: 50000, Competency: ptr(9), TaskComplexity: ptr(3)}

func TestAnalyzeEmployee(t *testing.T) {
	t.Run("model answer", func(t *testing.T) {
		f := &fakeAI{text: "```json\n" + `{"employee_analysis":{"salary_fairness":6,"market_position":"at_market"},"action_plan":["a"],"confidence":80}` + "\n```"}
		s, rec := newService(f, false)

		a, err := s.AnalyzeEmployee(context.Background(), caller, employee)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceAI, a.Source)
		assert.Equal(t, "at_market", a.EmployeeAnalysis.MarketPosition)
		assert.InDelta(t, 0.8, a.Confidence, 1e-9)
		assert.Equal(t, domain.StatusOverqualified, a.CompetencyAlignment.Status)
		assert.Equal(t, []string{"Olha"}, rec.names)

		require.Len(t, f.calls, 1)
		assert.Equal(t, ai.OpEmployee, f.calls[0].Operation)
		assert.True(t, f.calls[0].JSON)
		assert.Contains(t, f.calls[0].User, `"name": "Olha"`)
	})

	t.Run("unparseable falls back", func(t *testing.T) {
		s, _ := newService(&fakeAI{text: "Sorry, I cannot help with that."}, false)
		a, err := s.AnalyzeEmployee(context.Background(), caller, employee)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceFallback, a.Source)
	})

	t.Run("upstream failure", func(t *testing.T) {
		s, rec := newService(&fakeAI{err: ai.Classify("fake", 500, "", "boom", nil)}, false)
		_, err := s.AnalyzeEmployee(context.Background(), caller, employee)
		assert.ErrorIs(t, err, ai.ErrUnavailable)
		assert.Empty(t, rec.names)
	})

	t.Run("demo", func(t *testing.T) {
		f := &fakeAI{}
		s, _ := newService(f, true)
		a, err := s.AnalyzeEmployee(context.Background(), caller, employee)
		require.NoError(t, err)
		assert.Equal(t, domain.FallbackEmployeeAnalysis(employee), a)
		assert.Empty(t, f.calls)
	})
}

func TestAnalyzeTeamText(t *testing.T) {
	t.Run("parsed", func(t *testing.T) {
		s, _ := newService(&fakeAI{text: `{"overall_efficiency":6,"cost_effectiveness":5,"strengths":["x"]}`}, false)
		a, err := s.AnalyzeTeamText(context.Background(), caller, "Team of five engineers and one PM.")
		require.NoError(t, err)
		assert.Equal(t, 6.0, a.OverallEfficiency)
	})

	t.Run("unparseable", func(t *testing.T) {
		s, rec := newService(&fakeAI{text: "no json here"}, false)
		_, err := s.AnalyzeTeamText(context.Background(), caller, "Team of five engineers and one PM.")
		assert.ErrorIs(t, err, ai.ErrUnparseable)
		assert.Empty(t, rec.names)
	})

	t.Run("demo", func(t *testing.T) {
		s, _ := newService(&fakeAI{}, true)
		a, err := s.AnalyzeTeamText(context.Background(), caller, "Team of five engineers and one PM.")
		require.NoError(t, err)
		assert.NotEmpty(t, a.Recommendations)
	})
}

func TestAnalyzeTeam(t *testing.T) {
	payload := map[string]any{"team": "Core", "employees": []any{map[string]any{"name": "A"}, map[string]any{}}}

	t.Run("raw text is passed through", func(t *testing.T) {
		s, rec := newService(&fakeAI{text: "not the expected shape"}, false)
		raw, err := s.AnalyzeTeam(context.Background(), caller, payload)
		require.NoError(t, err)
		assert.Equal(t, "not the expected shape", raw)
		assert.Equal(t, []string{"Core"}, rec.names)
	})

	t.Run("demo", func(t *testing.T) {
		s, _ := newService(&fakeAI{}, true)
		raw, err := s.AnalyzeTeam(context.Background(), caller, payload)
		require.NoError(t, err)

		var report domain.TeamReport
		require.NoError(t, json.Unmarshal([]byte(raw), &report))
		require.Len(t, report.PerEmployee, 2)
		assert.Equal(t, "A", report.PerEmployee[0].Name)
		assert.Equal(t, "Employee 2", report.PerEmployee[1].Name)
	})

	t.Run("nil payload", func(t *testing.T) {
		s, _ := newService(&fakeAI{}, true)
		_, err := s.AnalyzeTeam(context.Background(), caller, nil)
		assert.ErrorIs(t, err, domain.ErrNotObject)
	})
}

func TestQuotaChargesFlatCost(t *testing.T) {
	f := &fakeAI{text: `{"overall_efficiency":6,"cost_effectiveness":5,"strengths":["x"]}`}
	s, _ := newService(f, false)
	s.Quota = &quota.Budget{
		Service: quota.ServiceSalary,
		Store:   memory.NewQuotaStore(func() time.Time { return now }),
		Limit:   2 * quota.SalaryCost,
		Window:  24 * time.Hour,
		Now:     func() time.Time { return now },
	}

	for range 2 {
		_, err := s.AnalyzeTeamText(context.Background(), caller, "Team of five engineers and one PM.")
		require.NoError(t, err)
	}
	_, err := s.AnalyzeTeamText(context.Background(), caller, "Team of five engineers and one PM.")
	assert.ErrorIs(t, err, quota.ErrExceeded)
	assert.Len(t, f.calls, 2)
}
