package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
)

const (
	providerName     = "anthropic"
	defaultModel     = sdk.ModelClaudeSonnet4_6
	defaultMaxTokens = 4096

	// jsonInstruction stands in for a response format switch, which the
	// Messages API does not have.
	jsonInstruction = "\n\nRespond with a single valid JSON object and nothing else."
)

type Client struct {
	sdk       sdk.Client
	Model     string
	MaxTokens int
	Timeout   time.Duration // Complete only
}

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(opts Options) *Client {
	ro := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		ro = append(ro, option.WithHTTPClient(opts.HTTPClient))
	}
	return &Client{sdk: sdk.NewClient(ro...), Model: opts.Model, MaxTokens: opts.MaxTokens, Timeout: opts.Timeout}
}

func (c *Client) Name() string { return providerName }

func (c *Client) params(req ai.Request) sdk.MessageNewParams {
	model := req.Model
	if model == "" {
		model = c.Model
	}
	if model == "" {
		model = string(defaultModel)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	system := req.System
	if req.JSON {
		system += jsonInstruction
	}

	p := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.User)),
		},
	}
	if req.Temperature > 0 {
		p.Temperature = sdk.Float(req.Temperature)
	}
	return p
}

func (c *Client) Complete(ctx context.Context, req ai.Request) (ai.Completion, error) {
	callCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	msg, err := c.sdk.Messages.New(callCtx, c.params(req))
	if err != nil {
		return ai.Completion{}, fmt.Errorf("failed to create message: %w", classify(ctx, err))
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return ai.Completion{
		Text:  b.String(),
		Model: string(msg.Model),
		Usage: ai.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// Stream opens the SSE connection eagerly so that HTTP level failures
// surface here, before the caller commits to a streaming response.
func (c *Client) Stream(ctx context.Context, req ai.Request) (ai.Stream, error) {
	s := c.sdk.Messages.NewStreaming(ctx, c.params(req))
	st := &stream{ctx: ctx, s: s}
	if !st.advance() && st.err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open message stream: %w", st.err)
	}
	st.primed = true
	return st, nil
}

type stream struct {
	ctx    context.Context
	s      *ssestream.Stream[sdk.MessageStreamEventUnion]
	delta  string
	err    error
	primed bool
	done   bool
}

// advance moves to the next text delta.
func (st *stream) advance() bool {
	for !st.done && st.s.Next() {
		switch ev := st.s.Current().AsAny().(type) {
		case sdk.ContentBlockDeltaEvent:
			if td, ok := ev.Delta.AsAny().(sdk.TextDelta); ok && td.Text != "" {
				st.delta = td.Text
				return true
			}
		case sdk.MessageStopEvent:
			st.done = true
		}
	}
	st.done = true
	if err := st.s.Err(); err != nil {
		st.err = classify(st.ctx, err)
	}
	return false
}

func (st *stream) Next() bool {
	if st.primed {
		st.primed = false
		return st.delta != ""
	}
	st.delta = ""
	return st.advance()
}

func (st *stream) Delta() string { return st.delta }
func (st *stream) Err() error    { return st.err }

func (st *stream) Close() error {
	st.done = true
	return st.s.Close()
}

// classify passes the error through untouched once the caller's context
// is done. Everything else, a Complete deadline included, is upstream.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.StatusCode == http.StatusTooManyRequests {
			code = "rate_limit_exceeded"
		}
		return ai.Classify(providerName, apiErr.StatusCode, code, "", err)
	}
	return ai.Classify(providerName, 0, "", "", err)
}
