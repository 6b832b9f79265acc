package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
)

const (
	providerName     = "openai"
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4096
)

type Client struct {
	*openai.Client
	Model     string
	MaxTokens int
	// Timeout bounds Complete. Streams are bounded only by their context.
	Timeout time.Duration
}

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return &Client{
		Client:    openai.NewClientWithConfig(cfg),
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
		Timeout:   opts.Timeout,
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) request(req ai.Request) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.Model
	}
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	out := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.JSON {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens;
	// they also reject a custom temperature.
	if isReasoningModel(model) {
		out.MaxCompletionTokens = maxTokens
	} else {
		out.MaxTokens = maxTokens
		out.Temperature = float32(req.Temperature)
	}
	return out
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func (c *Client) Complete(ctx context.Context, req ai.Request) (ai.Completion, error) {
	r := c.request(req)
	callCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	resp, err := c.CreateChatCompletion(callCtx, r)
	if err != nil {
		return ai.Completion{}, fmt.Errorf("failed to create chat completion: %w", classify(ctx, err))
	}
	if len(resp.Choices) == 0 {
		return ai.Completion{}, fmt.Errorf("failed to create chat completion: %w",
			ai.Classify(providerName, 0, "", "empty choices", nil))
	}
	return ai.Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (c *Client) Stream(ctx context.Context, req ai.Request) (ai.Stream, error) {
	r := c.request(req)
	r.Stream = true
	s, err := c.CreateChatCompletionStream(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat completion stream: %w", classify(ctx, err))
	}
	return &stream{ctx: ctx, s: s}, nil
}

type stream struct {
	ctx   context.Context
	s     *openai.ChatCompletionStream
	delta string
	err   error
	done  bool
}

func (s *stream) Next() bool {
	for !s.done {
		resp, err := s.s.Recv()
		if errors.Is(err, io.EOF) {
			s.done = true
			return false
		}
		if err != nil {
			s.err = classify(s.ctx, err)
			s.done = true
			return false
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		s.delta = resp.Choices[0].Delta.Content
		return true
	}
	return false
}

func (s *stream) Delta() string { return s.delta }
func (s *stream) Err() error    { return s.err }

func (s *stream) Close() error {
	s.done = true
	return s.s.Close()
}

// classify maps an SDK error onto the ai sentinels. When the caller's own
// context ended the error is returned as is; any other failure, an internal
// deadline included, counts as the provider being unavailable.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		if apiErr.Type == "insufficient_quota" {
			code = apiErr.Type
		}
		return ai.Classify(providerName, apiErr.HTTPStatusCode, code, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return ai.Classify(providerName, reqErr.HTTPStatusCode, "", "", err)
	}
	return ai.Classify(providerName, 0, "", "", err)
}
