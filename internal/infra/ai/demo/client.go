// Package demo is the AI client used when no provider credential is
// configured. It answers with canned payloads so the HTTP contract stays the
// same as with a real provider.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/salary"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/ai/prompt"
)

const (
	providerName = "demo"
	modelName    = "demo"

	// DefaultChunkSize is the number of runes per streamed delta.
	DefaultChunkSize = 48
)

type Client struct {
	ChunkSize int
	// Delay between deltas, so the UI shows a progressive stream.
	Delay time.Duration
	Rand  *rand.Rand
}

func NewClient() *Client {
	return &Client{
		ChunkSize: DefaultChunkSize,
		Rand:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Complete(ctx context.Context, req ai.Request) (ai.Completion, error) {
	if err := ctx.Err(); err != nil {
		return ai.Completion{}, err
	}
	text, err := c.payload(req)
	if err != nil {
		return ai.Completion{}, err
	}
	return ai.Completion{
		Text:  text,
		Model: modelName,
		Usage: ai.Usage{PromptTokens: estimate(req.System + req.User), CompletionTokens: estimate(text)},
	}, nil
}

func (c *Client) Stream(ctx context.Context, req ai.Request) (ai.Stream, error) {
	text, err := c.payload(req)
	if err != nil {
		return nil, err
	}
	size := c.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &stream{ctx: ctx, chunks: chunk(text, size), delay: c.Delay}, nil
}

func (c *Client) payload(req ai.Request) (string, error) {
	var v any
	switch req.Operation {
	case ai.OpNegotiation:
		v = NegotiationResult(transcript(req.User))
	case ai.OpSalary:
		v = salary.DemoTeamReport(nil, c.Rand)
	case ai.OpTeamText:
		v = salary.DemoTeamTextAnalysis()
	default:
		return "", fmt.Errorf("%w: demo mode has no %q payload", ai.ErrUnavailable, req.Operation)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NegotiationResult is the canned analysis. The first sentence of text is
// flagged so that highlighting can be tried out without a provider.
func NegotiationResult(text string) negotiation.Result {
	r := negotiation.Result{
		Summary: "Demo analysis: no AI provider is configured, so this result is a fixed example.",
		ClientProfile: negotiation.ClientProfile{
			Needs:          []string{"Predictable pricing", "Fast onboarding"},
			Concerns:       []string{"Budget overrun"},
			Priorities:     []string{"Cost", "Timeline", "Quality"},
			AuthorityLevel: "influencer",
		},
		Opportunities: []string{"Offer a pilot phase with a fixed price"},
		Risks:         []string{"Decision maker is not present in the conversation"},
		NegotiationStrategy: negotiation.Strategy{
			Overall:        "Anchor on value, trade concessions only for commitments",
			OpeningTactics: []string{"Summarise the client's goals in their own words"},
			Closing:        []string{"Propose a concrete next meeting with the decision maker"},
		},
		CollaborationEase: negotiation.CollaborationEase{
			Label:   "neutral",
			Score:   60,
			Reasons: []string{"Open about constraints", "Pushes hard on price"},
		},
		NextBestActions: []negotiation.Action{{
			Action:          "Send a written summary with two pricing options",
			Priority:        "high",
			Timeline:        "within 24 hours",
			ExpectedOutcome: "Client compares options instead of haggling on one price",
		}},
		Confidence: 0.5,
	}
	if excerpt, end := firstSentence(text); end > 0 {
		r.Biases = []negotiation.Bias{{
			Name: "Anchoring",
			Evidence: negotiation.Evidence{
				EvidenceExcerpt: excerpt,
				TextSpan:        negotiation.TextSpan{Start: 0, End: end},
			},
			Severity:   "medium",
			Mitigation: "Restate the value before discussing numbers",
		}}
	}
	return r
}

// transcript returns the text between the prompt markers, or "" when the
// user prompt has none.
func transcript(user string) string {
	_, rest, ok := strings.Cut(user, prompt.TextStart+"\n")
	if !ok {
		return ""
	}
	text, _, ok := strings.Cut(rest, "\n"+prompt.TextEnd)
	if !ok {
		return ""
	}
	return text
}

// firstSentence returns the first sentence of text and its end in runes.
func firstSentence(text string) (string, int) {
	n := 0
	for i, r := range text {
		n++
		if r == '.' || r == '!' || r == '?' || r == '\n' || n == 120 {
			return text[:i+utf8.RuneLen(r)], n
		}
	}
	return text, n
}

func estimate(s string) int { return (utf8.RuneCountInString(s) + 3) / 4 }

// chunk splits s into pieces of at most size runes.
func chunk(s string, size int) []string {
	var out []string
	for len(s) > 0 {
		i, n := 0, 0
		for i < len(s) && n < size {
			_, w := utf8.DecodeRuneInString(s[i:])
			i += w
			n++
		}
		out = append(out, s[:i])
		s = s[i:]
	}
	return out
}

type stream struct {
	ctx    context.Context
	chunks []string
	delay  time.Duration
	cur    string
	err    error
	closed bool
}

func (s *stream) Next() bool {
	if s.closed || s.err != nil || len(s.chunks) == 0 {
		return false
	}
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-s.ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	s.cur, s.chunks = s.chunks[0], s.chunks[1:]
	return true
}

func (s *stream) Delta() string { return s.cur }
func (s *stream) Err() error    { return s.err }

func (s *stream) Close() error {
	s.closed = true
	return nil
}
