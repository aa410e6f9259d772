// Package event defines the value types produced by the clipboard pipeline:
// the classified ChangeEvent and the Change envelope delivered to consumers.
package event

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// ContentType is the semantic category assigned to clipboard text.
// Exactly one type is assigned per event; see classify for the rule order.
type ContentType string

const (
	TypeURL       ContentType = "url"
	TypeEmail     ContentType = "email"
	TypePhone     ContentType = "phone"
	TypeFinancial ContentType = "financial"
	TypeDateTime  ContentType = "datetime"
	TypeCode      ContentType = "code"
	TypeAddress   ContentType = "address"
	TypePlainText ContentType = "plaintext"
)

// ChangeEvent is an immutable record of one accepted clipboard change.
type ChangeEvent struct {
	// Content is the raw clipboard text, UTF-8.
	Content string `json:"content"`

	// ContentType is the classifier's verdict.
	ContentType ContentType `json:"content_type"`

	// Timestamp is the capture time, set at creation.
	Timestamp time.Time `json:"timestamp"`

	// SourceApp is the best-effort originating application; empty when unknown.
	SourceApp string `json:"source_app,omitempty"`

	// ContentHash is a stable non-cryptographic fingerprint of Content,
	// used for deduplication and identity.
	ContentHash string `json:"content_hash"`

	// ContentLength is the byte length of Content. Length filters in the
	// monitor use the same measure.
	ContentLength int `json:"content_length"`
}

// Change is the envelope published on the event bus.
type Change struct {
	Event ChangeEvent `json:"event"`

	// IsDuplicate is reserved for downstream consumers. The worker filters
	// duplicates before emission, so it is always false today.
	IsDuplicate bool `json:"is_duplicate"`

	// DetectionTimeMS is the wall time in milliseconds from pulse acceptance
	// to read+classify completion, including any retry backoff.
	DetectionTimeMS int64 `json:"detection_time_ms"`
}

// New builds a ChangeEvent for content, stamping the current time and
// computing the fingerprint. sourceApp may be empty.
func New(content string, contentType ContentType, sourceApp string) ChangeEvent {
	return ChangeEvent{
		Content:       content,
		ContentType:   contentType,
		Timestamp:     time.Now(),
		SourceApp:     sourceApp,
		ContentHash:   Fingerprint(content),
		ContentLength: len(content),
	}
}

// Fingerprint returns the stable content hash used for dedup and identity.
// Two equal strings always fingerprint identically.
func Fingerprint(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:16])
}
