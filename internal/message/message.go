// Package message defines the clipmind IPC protocol.
//
// All messages are newline-delimited JSON; each message is exactly one line:
// <json>\n. Clipboard text travels as plain JSON strings — the protocol
// carries classified text events, never binary clipboard data.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/clipmind/clipmind/internal/event"
	"github.com/clipmind/clipmind/internal/history"
	"github.com/clipmind/clipmind/internal/monitor"
)

// Type identifies the kind of message.
type Type string

const (
	// TypeStatus requests daemon status; answered with TypeStatusResponse.
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"

	// TypeRecent requests retained history; answered with TypeRecentResponse.
	TypeRecent         Type = "RECENT"
	TypeRecentResponse Type = "RECENT_RESPONSE"

	// TypeWatch subscribes the connection to the live change stream; the
	// daemon then sends one TypeChange message per accepted change and a
	// TypeLagged notice whenever the connection fell behind.
	TypeWatch  Type = "WATCH"
	TypeChange Type = "CHANGE"
	TypeLagged Type = "LAGGED"

	TypeError Type = "ERROR"
)

// Message is the top-level wire envelope.
type Message struct {
	// Always present
	Type Type `json:"type"`

	// RECENT — maximum number of entries wanted; 0 means all retained.
	Limit int `json:"limit,omitempty"`

	// CHANGE
	Change *event.Change `json:"change,omitempty"`

	// LAGGED — number of changes this connection missed.
	Skipped uint64 `json:"skipped,omitempty"`

	// RECENT_RESPONSE
	Entries []history.Entry `json:"entries,omitempty"`

	// STATUS_RESPONSE
	Stats   *monitor.Stats `json:"stats,omitempty"`
	Source  string         `json:"source,omitempty"`
	Version string         `json:"version,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}
