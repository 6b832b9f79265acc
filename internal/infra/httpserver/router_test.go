package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/application/analysis"
	appauth "github.com/bryanwahyu/teampulse-turbo/internal/application/auth"
	appsalary "github.com/bryanwahyu/teampulse-turbo/internal/application/salary"
	appworkspace "github.com/bryanwahyu/teampulse-turbo/internal/application/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/ai/demo"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/cache/memory"
	dbmemory "github.com/bryanwahyu/teampulse-turbo/internal/infra/db/memory"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
)

const cookieName = "tp_session"

type harness struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
	ws     *appworkspace.Service
}

type options func(*Deps, *Options)

func withAI(c ai.Client) options {
	return func(d *Deps, _ *Options) { d.Analysis.AI = c }
}

func newHarness(t *testing.T, opts ...options) *harness {
	t.Helper()
	clock := application.SystemClock{}
	log := logger.Nop()

	ws := appworkspace.NewService(dbmemory.NewWorkspaceRepository(), clock)
	demoAI := demo.NewClient()
	demoAI.ChunkSize = 16

	deps := Deps{
		Auth: &appauth.Service{
			Sessions: memory.NewSessionStore(time.Now),
			Username: "admin",
			Password: "secret",
			Secret:   []byte("test-secret"),
			TTL:      time.Hour,
			Clock:    clock,
		},
		Analysis:  &analysis.Service{AI: demoAI, History: ws, Log: log, Clock: clock},
		Salary:    &appsalary.Service{AI: demoAI, Demo: true, History: ws, Log: log, Clock: clock},
		Workspace: ws,
		Log:       log,
		Static: fstest.MapFS{
			"index.html":  {Data: []byte("<html>app</html>")},
			"login.html":  {Data: []byte("<html>login</html>")},
			"css/app.css": {Data: []byte("body{}")},
		},
	}
	o := Options{
		Version:     "1.1.0",
		CookieName:  cookieName,
		BodyLimit:   1 << 20,
		UploadLimit: 2 << 20,
	}
	for _, fn := range opts {
		fn(&deps, &o)
	}
	return &harness{t: t, h: NewRouter(deps, o), ws: ws}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	req.RemoteAddr = "192.0.2.1:4000"
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func (h *harness) json(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return h.do(req)
}

func (h *harness) login() *harness {
	h.t.Helper()
	rec := h.json(http.MethodPost, "/login", `{"username":"admin","password":"secret"}`)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			h.cookie = c
		}
	}
	require.NotNil(h.t, h.cookie)
	return h
}

func (h *harness) analyze(fields map[string]string, fileName string, file []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(h.t, err)
		_, err = fw.Write(file)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

type sseEvent struct {
	name string
	data string
}

func parseSSE(body string) []sseEvent {
	var out []sseEvent
	for _, frame := range strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(frame, "\n") {
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				ev.name = v
			}
			if v, ok := strings.CutPrefix(line, "data: "); ok {
				ev.data = v
			}
		}
		out = append(out, ev)
	}
	return out
}

func TestHealthIsPublic(t *testing.T) {
	rec := newHarness(t).do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.1.0", body["version"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestLivezIsPublic(t *testing.T) {
	rec := newHarness(t).do(httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthGate(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodPost, "/api/salary", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", decode(t, rec)["error"])

	rec = h.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	// an asset-looking id does not open the api
	rec = h.json(http.MethodDelete, "/api/clients/abc.js", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// static assets and the login page stay reachable
	assert.Equal(t, http.StatusOK, h.do(httptest.NewRequest(http.MethodGet, "/css/app.css", nil)).Code)
	rec = h.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "login")
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodPost, "/login", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid username or password", decode(t, rec)["error"])

	form := url.Values{"username": {"admin"}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = h.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?error=1", rec.Header().Get("Location"))

	form.Set("password", "secret")
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = h.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t).login()
	assert.Equal(t, http.StatusOK, h.do(httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	rec := h.do(httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// the old cookie no longer works even if the browser kept it
	assert.Equal(t, http.StatusUnauthorized, h.json(http.MethodGet, "/api/history", "").Code)
}

func TestStaticAfterLogin(t *testing.T) {
	h := newHarness(t).login()
	rec := h.do(httptest.NewRequest(http.MethodGet, "/some/page", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>app</html>", rec.Body.String())

	rec = h.do(httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze_EmptyInputRejectedBeforeStream(t *testing.T) {
	h := newHarness(t).login()
	rec := h.analyze(map[string]string{"text": "   \n\t ", "profile": `{"company":"Acme"}`}, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Header().Get("Content-Type"), "event-stream")
	assert.Equal(t, "please enter text to analyze", decode(t, rec)["error"])
}

func TestAnalyze_Validation(t *testing.T) {
	h := newHarness(t).login()

	rec := h.analyze(map[string]string{"text": "too short"}, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "text must be 10–10000 characters", body["error"])
	assert.Equal(t, []any{map[string]any{"field": "text", "message": "text must be 10–10000 characters"}}, body["details"])

	rec = h.analyze(map[string]string{"text": "long enough transcript", "profile": "{not json"}, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid profile JSON", decode(t, rec)["error"])

	rec = h.analyze(nil, "deal.pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported file type, use .txt or .docx", decode(t, rec)["error"])
}

func TestAnalyze_Streams(t *testing.T) {
	h := newHarness(t).login()
	text := "The price is too high. We will think about it."
	rec := h.analyze(map[string]string{"text": text, "profile": `{"company":"Acme"}`}, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	events := parseSSE(rec.Body.String())
	require.Greater(t, len(events), 2)
	last := events[len(events)-1]
	assert.Equal(t, sseEvent{name: "done", data: "{}"}, last)

	var full strings.Builder
	for _, ev := range events[:len(events)-1] {
		assert.Empty(t, ev.name)
		var d struct{ Chunk string }
		require.NoError(t, json.Unmarshal([]byte(ev.data), &d))
		full.WriteString(d.Chunk)
	}
	res, err := negotiation.Parse(full.String())
	require.NoError(t, err)
	require.Len(t, res.Biases, 1)
	assert.Equal(t, negotiation.TextSpan{Start: 0, End: 22}, res.Biases[0].TextSpan)

	items, err := h.ws.History(context.Background(), "admin")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, workspace.TypeNegotiation, items[0].Type)
	assert.Equal(t, "Acme", items[0].ClientName)
}

func TestAnalyze_JSONBody(t *testing.T) {
	text := "The price is too high. We will think about it."
	for name, profile := range map[string]string{
		"profile object": `{"company":"Acme"}`,
		"profile string": `"{\"company\":\"Acme\"}"`,
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t).login()
			rec := h.json(http.MethodPost, "/api/analyze", fmt.Sprintf(`{"text":%q,"profile":%s}`, text, profile))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
			events := parseSSE(rec.Body.String())
			assert.Equal(t, "done", events[len(events)-1].name)

			items, err := h.ws.History(context.Background(), "admin")
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Acme", items[0].ClientName)
		})
	}

	h := newHarness(t).login()
	rec := h.json(http.MethodPost, "/api/analyze", `{"text":"long enough transcript","profile":"{nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid profile JSON", decode(t, rec)["error"])

	rec = h.json(http.MethodPost, "/api/analyze", `{"text":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text must be 10–10000 characters", decode(t, rec)["error"])

	rec = h.json(http.MethodPost, "/api/analyze", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "please enter text to analyze", decode(t, rec)["error"])

	rec = h.json(http.MethodPost, "/api/analyze", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON", decode(t, rec)["error"])
}

func TestAnalyze_TextFile(t *testing.T) {
	h := newHarness(t).login()
	rec := h.analyze(map[string]string{"text": ""}, "call.txt", []byte("\xef\xbb\xbfHello there. Short one."))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: done")
}

type brokenAI struct {
	openErr error
	midErr  error
}

type failingStream struct {
	sent bool
	err  error
}

func (s *failingStream) Next() bool {
	if s.sent {
		return false
	}
	s.sent = true
	return true
}
func (s *failingStream) Delta() string { return `{"summary":` }
func (s *failingStream) Err() error    { return s.err }
func (s *failingStream) Close() error  { return nil }

func (b brokenAI) Name() string { return "broken" }
func (b brokenAI) Complete(context.Context, ai.Request) (ai.Completion, error) {
	return ai.Completion{}, b.openErr
}
func (b brokenAI) Stream(context.Context, ai.Request) (ai.Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return &failingStream{err: b.midErr}, nil
}

func TestAnalyze_UpstreamFailures(t *testing.T) {
	upstream := ai.Classify("openai", 500, "", "server error", errors.New("boom"))

	h := newHarness(t, withAI(brokenAI{openErr: upstream})).login()
	rec := h.analyze(map[string]string{"text": "long enough transcript"}, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "AI service unavailable", decode(t, rec)["error"])

	h = newHarness(t, withAI(brokenAI{midErr: upstream})).login()
	rec = h.analyze(map[string]string{"text": "long enough transcript"}, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := parseSSE(rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, sseEvent{data: `{"chunk":"{\"summary\":"}`}, events[0])
	assert.Equal(t, sseEvent{name: "error", data: `{"error":"AI service unavailable"}`}, events[1])

	// nothing is recorded for a failed stream
	items, err := h.ws.History(context.Background(), "admin")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalyze_Quota(t *testing.T) {
	budget := &quota.Budget{Service: "negotiation", Store: memory.NewQuotaStore(time.Now), Limit: 3, Window: time.Hour}
	h := newHarness(t, func(d *Deps, _ *Options) { d.Analysis.Quota = budget }).login()

	rec := h.analyze(map[string]string{"text": "a transcript that is long enough to cost tokens"}, "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "limit reached, try again in ~")
}

func TestSalaryEmployee(t *testing.T) {
	h := newHarness(t).login()

	rec := h.json(http.MethodPost, "/api/salary-employee", `{"name":"Ann","position":"Engineer","salary":500}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "salary must be 1000–1000000", body["error"])

	rec = h.json(http.MethodPost, "/api/salary-employee",
		`{"name":"Ann","position":"Engineer","salary":60000,"competency":9,"taskComplexity":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Ann", body["employee"].(map[string]any)["name"])
	align := body["analysis"].(map[string]any)["competency_alignment"].(map[string]any)
	assert.Equal(t, "overqualified", align["status"])

	rec = h.json(http.MethodPost, "/api/salary-employee", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON", decode(t, rec)["error"])
}

func TestSalaryTeam(t *testing.T) {
	h := newHarness(t).login()

	for _, payload := range []string{`[1,2]`, `"team"`, `42`, `null`} {
		rec := h.json(http.MethodPost, "/api/salary", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.JSONEq(t, `{"ok":false,"error":"invalid data, JSON object expected."}`, rec.Body.String(), payload)
	}

	rec := h.json(http.MethodPost, "/api/salary", `{"team":"Platform","employees":[{"name":"Ann","salary":50000}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(body["raw"].(string)), &report))
	assert.Contains(t, report, "team_summary")

	items, err := h.ws.History(context.Background(), "admin")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Platform", items[0].ClientName)
}

func TestSalaryText(t *testing.T) {
	h := newHarness(t).login()

	rec := h.json(http.MethodPost, "/api/salary-text", `{"text":"tiny"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text must be 20–15000 characters", decode(t, rec)["error"])

	rec = h.json(http.MethodPost, "/api/salary-text", `{"text":"Five backend engineers and two designers, mostly senior."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["analysis"], "overall_efficiency")
}

type unparseableAI struct{ brokenAI }

func (unparseableAI) Complete(context.Context, ai.Request) (ai.Completion, error) {
	return ai.Completion{Text: "I cannot answer in JSON today."}, nil
}

func TestSalaryText_UnparseableIs502(t *testing.T) {
	h := newHarness(t, func(d *Deps, _ *Options) {
		d.Salary.AI = unparseableAI{}
		d.Salary.Demo = false
	}).login()
	rec := h.json(http.MethodPost, "/api/salary-text", `{"text":"Five backend engineers and two designers, mostly senior."}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"AI response could not be parsed"}`, rec.Body.String())
}

func TestHighlight(t *testing.T) {
	h := newHarness(t).login()
	result := `{"summary":"x","biases":[{"name":"Anchoring","text_span":{"start":4,"end":9}}],` +
		`"manipulations":[{"type":"Pressure","text_span":{"start":5,"end":5}}]}`
	body := fmt.Sprintf(`{"text":"The <price> is high","result":%q}`, result)

	rec := h.json(http.MethodPost, "/api/highlight", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, `The <mark class="bias" title="Anchoring">&lt;pric</mark>e&gt; is high`, out["html"])
	assert.Len(t, out["spans"], 1)

	rec = h.json(http.MethodPost, "/api/highlight", `{"text":"x","result":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	h := newHarness(t).login()
	fields := `{"company":"Acme","negotiator":"Bo","sector":"Retail","goal":"Close","criteria":"Price","constraints":"Q3","notes":"multi\nline"}`

	rec := h.json(http.MethodPut, "/api/profile", fields)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fields, rec.Body.String())

	rec = h.json(http.MethodGet, "/api/profile", "")
	assert.JSONEq(t, fields, rec.Body.String())

	rec = h.json(http.MethodPut, "/api/profile", `{"company":"Acme","budget":"1M"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClients(t *testing.T) {
	h := newHarness(t).login()

	first := decode(t, h.json(http.MethodPut, "/api/clients", `{"company":"Acme","goal":"a"}`))
	second := decode(t, h.json(http.MethodPut, "/api/clients", `{"company":" acme ","goal":"b"}`))
	assert.Equal(t, first["id"], second["id"])

	var list []map[string]any
	require.NoError(t, json.Unmarshal(h.json(http.MethodGet, "/api/clients", "").Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0]["profile"].(map[string]any)["goal"])

	rec := h.json(http.MethodPut, "/api/clients", `{"company":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := first["id"].(string)
	assert.Equal(t, http.StatusNoContent, h.json(http.MethodDelete, "/api/clients/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, h.json(http.MethodDelete, "/api/clients/"+id, "").Code)
}

func TestHistoryCappedNewestFirst(t *testing.T) {
	h := newHarness(t).login()
	for i := 0; i < workspace.MaxHistory+5; i++ {
		rec := h.json(http.MethodPost, "/api/history", fmt.Sprintf(`{"type":"neg","clientName":"c%d","payload":{"n":%d}}`, i, i))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var items []map[string]any
	require.NoError(t, json.Unmarshal(h.json(http.MethodGet, "/api/history", "").Body.Bytes(), &items))
	require.Len(t, items, workspace.MaxHistory)
	assert.Equal(t, fmt.Sprintf("c%d", workspace.MaxHistory+4), items[0]["clientName"])

	rec := h.json(http.MethodPost, "/api/history", `{"type":"other","payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent, h.json(http.MethodDelete, "/api/history", "").Code)
	assert.JSONEq(t, `[]`, h.json(http.MethodGet, "/api/history", "").Body.String())
}
