package workspace

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
)

// MaxHistory is the number of analyses kept per user.
const MaxHistory = 50

var ErrNotFound = errors.New("not found")

type ItemType string

const (
	TypeNegotiation ItemType = "neg"
	TypeSalary      ItemType = "salary"
)

func (t ItemType) Valid() bool { return t == TypeNegotiation || t == TypeSalary }

// Client is a saved negotiation counterpart, unique per owner by company.
type Client struct {
	ID        string              `json:"id"`
	Owner     string              `json:"-"`
	Profile   negotiation.Profile `json:"profile"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type HistoryItem struct {
	ID         string          `json:"id"`
	Owner      string          `json:"-"`
	Type       ItemType        `json:"type"`
	ClientName string          `json:"clientName"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Prepend puts item at index 0 and truncates the list to MaxHistory.
func Prepend(list []HistoryItem, item HistoryItem) []HistoryItem {
	out := make([]HistoryItem, 0, min(len(list)+1, MaxHistory))
	out = append(out, item)
	for _, it := range list {
		if len(out) == MaxHistory {
			break
		}
		out = append(out, it)
	}
	return out
}

// Upsert replaces the client with the same company key, keeping its ID, or
// appends c. Last write wins.
func Upsert(list []Client, c Client) ([]Client, Client) {
	key := c.Profile.Key()
	for i := range list {
		if list[i].Profile.Key() == key {
			c.ID = list[i].ID
			list[i] = c
			return list, c
		}
	}
	return append(list, c), c
}
