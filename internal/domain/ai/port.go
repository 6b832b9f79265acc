package ai

import "context"

// Operations name the kind of analysis a request belongs to.
const (
	OpNegotiation = "negotiation"
	OpSalary      = "salary"
	OpEmployee    = "employee"
	OpTeamText    = "team_text"
)

// Request is one system+user prompt pair sent to the model.
type Request struct {
	Operation   string // negotiation | salary | employee | team_text, used for logs and demo payloads
	System      string
	User        string
	Model       string // empty means the client default
	Temperature float64
	MaxTokens   int
	JSON        bool // ask the provider for a JSON object response
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Stream is a pull-based sequence of text deltas. The consumer drives the
// pace: nothing is read from upstream until Next is called. Close releases
// the upstream connection and is safe to call more than once.
type Stream interface {
	Next() bool
	Delta() string
	Err() error
	Close() error
}

type Client interface {
	Complete(ctx context.Context, req Request) (Completion, error)
	// Stream opens a streaming completion bound to ctx. Cancelling ctx aborts
	// the upstream call.
	Stream(ctx context.Context, req Request) (Stream, error)
	Name() string
}
