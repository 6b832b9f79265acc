package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/cache/memory"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
)

type sliceStream struct {
	parts []string
	cur   string
	err   error
}

func (s *sliceStream) Next() bool {
	if len(s.parts) == 0 {
		return false
	}
	s.cur, s.parts = s.parts[0], s.parts[1:]
	return true
}
func (s *sliceStream) Delta() string { return s.cur }
func (s *sliceStream) Err() error    { return s.err }
func (s *sliceStream) Close() error  { return nil }

type fakeAI struct {
	parts   []string
	openErr error
	midErr  error
	got     ai.Request
}

func (f *fakeAI) Name() string { return "fake" }
func (f *fakeAI) Complete(context.Context, ai.Request) (ai.Completion, error) {
	return ai.Completion{}, errors.New("not used")
}
func (f *fakeAI) Stream(_ context.Context, req ai.Request) (ai.Stream, error) {
	f.got = req
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &sliceStream{parts: append([]string{}, f.parts...), err: f.midErr}, nil
}

type recorded struct {
	owner, client string
	typ           workspace.ItemType
	payload       any
}

type fakeRecorder struct{ items []recorded }

func (r *fakeRecorder) Record(_ context.Context, owner string, typ workspace.ItemType, client string, payload any) error {
	r.items = append(r.items, recorded{owner, client, typ, payload})
	return nil
}

type fakeArchive struct {
	mu   sync.Mutex
	keys []string
}

func (a *fakeArchive) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return "http://minio/" + key, nil
}

var now = time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

func newService(client ai.Client) *Service {
	return &Service{AI: client, Log: logger.Nop(), Clock: application.FixedClock(now), Model: "gpt-4o", Temperature: 0.2}
}

func drain(r *Run) {
	for r.Next() {
	}
}

func TestStream_EmptyInput(t *testing.T) {
	f := &fakeAI{}
	s := newService(f)
	for _, text := range []string{"", "   \n\t "} {
		_, err := s.Stream(context.Background(), Input{Text: text})
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Empty(t, f.got.User, "upstream must not be called")
}

func TestStream_BuildsRequestAndCollectsOutput(t *testing.T) {
	f := &fakeAI{parts: []string{`{"summary":`, `"fine"}`}}
	rec := &fakeRecorder{}
	arc := &fakeArchive{}
	s := newService(f)
	s.History = rec
	s.Archive = arc

	in := Input{
		Caller:  application.Caller{IP: "10.0.0.1", User: "admin"},
		Profile: negotiation.Profile{Company: "Acme"},
		Text:    "  We need a discount.  ",
		Upload:  &Upload{Name: "call.txt", Data: []byte("We need a discount.")},
	}
	run, err := s.Stream(context.Background(), in)
	require.NoError(t, err)

	var got []string
	for run.Next() {
		got = append(got, run.Delta())
	}
	assert.Equal(t, []string{`{"summary":`, `"fine"}`}, got)
	assert.Equal(t, `{"summary":"fine"}`, run.Output())

	assert.Equal(t, ai.OpNegotiation, f.got.Operation)
	assert.Equal(t, "gpt-4o", f.got.Model)
	assert.Contains(t, f.got.User, "<<<TEXT_START>>>\nWe need a discount.\n<<<TEXT_END>>>")
	assert.Contains(t, f.got.User, `"company": "Acme"`)

	s.Finish(context.Background(), run)
	require.Len(t, rec.items, 1)
	assert.Equal(t, "admin", rec.items[0].owner)
	assert.Equal(t, "Acme", rec.items[0].client)
	assert.Equal(t, workspace.TypeNegotiation, rec.items[0].typ)
	res, ok := rec.items[0].payload.(*negotiation.Result)
	require.True(t, ok)
	assert.Equal(t, "fine", res.Summary)

	require.Len(t, arc.keys, 2)
	assert.True(t, strings.HasPrefix(arc.keys[0], "admin/2026-03-03/"))
	assert.True(t, strings.HasSuffix(arc.keys[0], "-call.txt"))
	assert.True(t, strings.HasSuffix(arc.keys[1], "-analysis.json"))
}

func TestFinish_SkipsFailedRuns(t *testing.T) {
	f := &fakeAI{parts: []string{"partial"}, midErr: ai.ErrUnavailable}
	rec := &fakeRecorder{}
	s := newService(f)
	s.History = rec

	run, err := s.Stream(context.Background(), Input{Text: "hello"})
	require.NoError(t, err)
	drain(run)
	s.Finish(context.Background(), run)
	assert.Empty(t, rec.items)
}

func TestStream_OpenError(t *testing.T) {
	s := newService(&fakeAI{openErr: ai.Classify("fake", 503, "", "down", nil)})
	_, err := s.Stream(context.Background(), Input{Text: "hello"})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestStream_Quota(t *testing.T) {
	s := newService(&fakeAI{parts: []string{"{}"}})
	s.Quota = &quota.Budget{
		Service: quota.ServiceNegotiation,
		Store:   memory.NewQuotaStore(func() time.Time { return now }),
		Limit:   10,
		Window:  12 * time.Hour,
		Now:     func() time.Time { return now },
	}
	caller := application.Caller{IP: "1.2.3.4"}

	_, err := s.Stream(context.Background(), Input{Caller: caller, Text: strings.Repeat("a", 40)})
	require.NoError(t, err)

	_, err = s.Stream(context.Background(), Input{Caller: caller, Text: "abcd"})
	assert.ErrorIs(t, err, quota.ErrExceeded)
	assert.EqualError(t, err, "limit reached, try again in ~720 min")

	_, err = s.Stream(context.Background(), Input{Caller: application.Caller{IP: "5.6.7.8"}, Text: "abcd"})
	assert.NoError(t, err)
}
