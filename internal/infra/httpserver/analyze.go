package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bryanwahyu/teampulse-turbo/internal/application/analysis"
	domai "github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/textextract"
	"github.com/bryanwahyu/teampulse-turbo/internal/middleware"
)

// multipartMemory is how much of an upload is kept in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// analyzeText constrains a typed transcript. Uploaded files are not bound
// by it.
type analyzeText struct {
	Text string `json:"text" validate:"min=10,max=10000" msg:"text must be 10–10000 characters"`
}

// POST /api/analyze
// Multipart: file? (.txt/.docx), text?, profile (JSON).
// JSON: {"text": "...", "profile": {...} or its JSON text}. Answers with SSE.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	in := analysis.Input{Caller: caller(req)}
	var err error
	if isJSON(req) {
		err = r.analyzeInputJSON(w, req, &in)
	} else {
		err = r.analyzeInputMultipart(w, req, &in)
		if req.MultipartForm != nil {
			defer req.MultipartForm.RemoveAll()
		}
	}
	if err != nil {
		return err
	}

	run, err := r.Analysis.Stream(req.Context(), in)
	if err != nil {
		return err
	}
	defer run.Close()

	done := middleware.StreamOpened()
	streamErr := r.streamRun(w, req, run)
	done(streamErr)

	// the history entry and archive copy must survive the client leaving
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), r.opts.FinishTimeout)
	defer cancel()
	r.Analysis.Finish(ctx, run)
	return nil
}

func (r *Router) analyzeInputMultipart(w http.ResponseWriter, req *http.Request, in *analysis.Input) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.UploadLimit)
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return badRequest("invalid multipart form")
	}

	if raw := req.FormValue("profile"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Profile); err != nil {
			return badRequest("invalid profile JSON")
		}
	}

	upload, err := readUpload(req)
	if err != nil {
		return err
	}
	if upload != nil {
		text, err := textextract.FromFile(upload.Name, upload.Data)
		if err != nil {
			return err
		}
		in.Upload = upload
		in.Text = text
		return nil
	}
	return setTypedText(in, req.FormValue("text"))
}

func (r *Router) analyzeInputJSON(w http.ResponseWriter, req *http.Request, in *analysis.Input) error {
	var body struct {
		Text    string          `json:"text"`
		Profile json.RawMessage `json:"profile"`
	}
	if err := r.decodeJSON(w, req, &body); err != nil {
		return err
	}
	if err := decodeProfile(body.Profile, &in.Profile); err != nil {
		return badRequest("invalid profile JSON")
	}
	return setTypedText(in, body.Text)
}

// decodeProfile accepts the profile as an object or as a string holding
// the object, which is what the multipart form sends.
func decodeProfile(raw json.RawMessage, p *negotiation.Profile) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s == "" {
			return nil
		}
		raw = json.RawMessage(s)
	}
	return json.Unmarshal(raw, p)
}

// setTypedText sanitizes pasted text and checks its length. Empty text is
// left for the service to reject.
func setTypedText(in *analysis.Input, text string) error {
	in.Text = middleware.SanitizeString(text)
	if in.Text == "" {
		return nil
	}
	return middleware.ValidateStruct(analyzeText{Text: in.Text})
}

func readUpload(req *http.Request) (*analysis.Upload, error) {
	f, hdr, err := req.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("invalid file upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &analysis.Upload{Name: hdr.Filename, Data: data}, nil
}

// streamRun forwards every delta as an SSE message and ends with a done or
// error event. Headers are committed on entry, so failures from here on can
// only be reported in-band.
func (r *Router) streamRun(w http.ResponseWriter, req *http.Request, run *analysis.Run) error {
	sse, err := newSSEWriter(w)
	if err != nil {
		return err
	}
	for run.Next() {
		if err := sse.Data(map[string]string{"chunk": run.Delta()}); err != nil {
			return err
		}
	}
	if err := run.Err(); err != nil {
		if req.Context().Err() != nil {
			// client left, nobody to tell
			return err
		}
		msg := "analysis failed"
		if domai.IsUpstream(err) {
			msg = msgUnavailable
		}
		r.Log.Error("analysis stream failed", zap.String("user", middleware.UsernameFrom(req.Context())), zap.Error(err))
		_ = sse.Event("error", map[string]string{"error": msg})
		return err
	}
	return sse.Event("done", struct{}{})
}

// POST /api/highlight
// Body: {"text": "...", "result": <analysis object or its raw JSON text>}
func (r *Router) handleHighlight(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text   string          `json:"text"`
		Result json.RawMessage `json:"result"`
	}
	if err := r.decodeJSON(w, req, &body); err != nil {
		return err
	}
	raw := string(body.Result)
	var s string
	if json.Unmarshal(body.Result, &s) == nil {
		raw = s
	}
	res, err := negotiation.Parse(raw)
	if err != nil {
		return badRequest("result is not a valid analysis")
	}

	spans := negotiation.NormalizeSpans(res.Spans(), utf8.RuneCountInString(body.Text))
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"html":  negotiation.RenderHighlighted(body.Text, spans),
		"spans": spans,
	})
	return nil
}
