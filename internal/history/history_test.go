package history

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/clipmind/clipmind/internal/bus"
	"github.com/clipmind/clipmind/internal/event"
)

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Add(event.New(fmt.Sprintf("item-%d", i), event.TypePlainText, ""))
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	got := s.Recent(0)
	want := []string{"item-4", "item-3", "item-2"}
	for i, w := range want {
		if got[i].Event.Content != w {
			t.Errorf("Recent[%d] = %q, want %q", i, got[i].Event.Content, w)
		}
	}
}

func TestRecentLimit(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 4; i++ {
		s.Add(event.New(fmt.Sprintf("item-%d", i), event.TypePlainText, ""))
	}

	got := s.Recent(2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Event.Content != "item-3" || got[1].Event.Content != "item-2" {
		t.Errorf("Recent(2) = %q, %q", got[0].Event.Content, got[1].Event.Content)
	}
}

func TestClear(t *testing.T) {
	s := NewStore(10)
	s.Add(event.New("x", event.TypePlainText, ""))
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Len after Clear = %d", s.Len())
	}
}

func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	if got := Preview("short", 100); got != "short" {
		t.Errorf("Preview(short) = %q", got)
	}

	long := strings.Repeat("a", 150)
	got := Preview(long, 100)
	if got != strings.Repeat("a", 100)+"…" {
		t.Errorf("Preview truncated wrong: %d bytes", len(got))
	}

	// Multibyte content must not be split mid-rune. "台" is 3 bytes; a
	// 4-byte budget cuts back to the first complete rune.
	got = Preview("台北市", 4)
	if got != "台…" {
		t.Errorf("Preview(台北市, 4) = %q", got)
	}
}

func TestRecordConsumesStream(t *testing.T) {
	b := bus.New(8)
	s := NewStore(10)

	sub := b.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Record(context.Background(), sub)
	}()

	for _, c := range []string{"one", "two"} {
		b.Publish(&event.Change{Event: event.New(c, event.TypePlainText, "")})
	}
	b.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record did not exit on stream close")
	}

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if got := s.Recent(1)[0].Event.Content; got != "two" {
		t.Errorf("newest = %q, want two", got)
	}
}

func TestRecordSurvivesLag(t *testing.T) {
	b := bus.New(2)
	s := NewStore(10)
	sub := b.Subscribe()

	// Overflow the subscriber before the recorder starts draining.
	for i := 0; i < 6; i++ {
		b.Publish(&event.Change{Event: event.New(fmt.Sprintf("n-%d", i), event.TypePlainText, "")})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Record(context.Background(), sub)
	}()
	b.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record did not exit")
	}

	// The two retained events made it in despite the lag report.
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}
