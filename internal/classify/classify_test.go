package classify

import (
	"testing"

	"github.com/clipmind/clipmind/internal/event"
)

func TestDetectURL(t *testing.T) {
	cases := map[string]event.ContentType{
		"https://github.com/microsoft/vscode": event.TypeURL,
		"http://example.com":                  event.TypeURL,
		"ftp://files.example.com":             event.TypeURL,
		"example.com/path":                    event.TypeURL,
		"not a url":                           event.TypePlainText,
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetectEmail(t *testing.T) {
	cases := map[string]event.ContentType{
		"test@example.com":     event.TypeEmail,
		"user.name@domain.org": event.TypeEmail,
		"not an email":         event.TypePlainText,
		"@incomplete":          event.TypePlainText,
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetectPhone(t *testing.T) {
	cases := map[string]event.ContentType{
		"+886912345678":      event.TypePhone,
		"0912-345-678":       event.TypePhone,
		"(02) 1234-5678":     event.TypePhone,
		"123":                event.TypePlainText, // too few digits
		"123456789012345678": event.TypePlainText, // too many
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetectFinancial(t *testing.T) {
	cases := map[string]event.ContentType{
		"$100":          event.TypeFinancial,
		"NT$1000":       event.TypeFinancial,
		"€50":           event.TypeFinancial,
		"100 USD":       event.TypeFinancial,
		"1,234.56 EUR":  event.TypeFinancial,
		"no money here": event.TypePlainText,
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetectDateTime(t *testing.T) {
	cases := map[string]event.ContentType{
		"2024-01-15": event.TypeDateTime,
		"2024/01/15": event.TypeDateTime,
		"15-01-2024": event.TypeDateTime,
		"01/15/2024": event.TypeDateTime,
		"14:30":      event.TypeDateTime,
		"14:30:59":   event.TypeDateTime,
		"not a date": event.TypePlainText,
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetectCode(t *testing.T) {
	cases := map[string]event.ContentType{
		"def hello():\n    print('Hello')":  event.TypeCode,
		"function test() { return 42; }":    event.TypeCode,
		"#include <stdio.h>":                event.TypeCode,
		"SELECT * FROM users":               event.TypeCode,
		"just text":                         event.TypePlainText,
		"f(1)\ng(2)\nh(3)\ni(4)\nj(5)\n":    event.TypeCode, // dense parens over 5 lines
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetectAddress(t *testing.T) {
	cases := map[string]event.ContentType{
		"台北市信義區信義路五段7號": event.TypeAddress,
		"Suite 200, 1 Main Street": event.TypeAddress,
		"short st":                 event.TypePlainText,
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

// Rule precedence is a contract: a bare time is datetime, never phone, and a
// date wins over phone even though both are digit-heavy.
func TestDetectPrecedence(t *testing.T) {
	if got := Detect("14:30"); got != event.TypeDateTime {
		t.Errorf("Detect(14:30) = %v, want datetime", got)
	}
	if got := Detect("2024-01-15"); got != event.TypeDateTime {
		t.Errorf("Detect(2024-01-15) = %v, want datetime", got)
	}
	if got := Detect("https://a.com"); got != event.TypeURL {
		t.Errorf("Detect(https://a.com) = %v, want url", got)
	}
}

func TestDetectIdempotent(t *testing.T) {
	inputs := []string{"https://a.com", "user@example.com", "$100", "hello world"}
	for _, in := range inputs {
		first := Detect(in)
		for range 10 {
			if got := Detect(in); got != first {
				t.Fatalf("Detect(%q) unstable: %v then %v", in, first, got)
			}
		}
	}
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent("https://example.com", "browser")

	if ev.ContentType != event.TypeURL {
		t.Errorf("ContentType = %v, want url", ev.ContentType)
	}
	if ev.Content != "https://example.com" {
		t.Errorf("Content = %q", ev.Content)
	}
	if ev.SourceApp != "browser" {
		t.Errorf("SourceApp = %q, want browser", ev.SourceApp)
	}
	if ev.ContentLength != len("https://example.com") {
		t.Errorf("ContentLength = %d", ev.ContentLength)
	}
	if ev.ContentHash == "" {
		t.Error("ContentHash is empty")
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}
