// Package events publishes the outcome of committed game operations.
package events

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SubjectPrefix prefixes every subject, e.g. "farkle.roll".
const SubjectPrefix = "farkle"

// Event describes one committed lifecycle call.
type Event struct {
	Type      string // start, roll, stop, unfarkle, boosts
	SessionID string
	PlayerID  string
	Mode      string
	Message   string
	Points    int
	Won       int64
	WonGame   int64
	Jackpot   int64
	GameOver  bool
	Version   int64
	At        time.Time
}

// Publisher delivers events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Subject returns the subject an event is published on.
func Subject(e Event) string {
	return SubjectPrefix + "." + e.Type
}

// Payload encodes an event as a JSON object.
func Payload(e Event) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"type":      e.Type,
		"sessionId": e.SessionID,
		"playerId":  e.PlayerID,
		"mode":      e.Mode,
		"message":   e.Message,
		"points":    e.Points,
		"won":       e.Won,
		"wonGame":   e.WonGame,
		"jackpot":   e.Jackpot,
		"gameOver":  e.GameOver,
		"version":   e.Version,
		"at":        e.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return protojson.Marshal(st)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
