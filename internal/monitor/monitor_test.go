package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clipmind/clipmind/internal/bus"
	"github.com/clipmind/clipmind/internal/clip"
	"github.com/clipmind/clipmind/internal/event"
)

// fakeObserver lets tests inject pulses directly.
type fakeObserver struct {
	mu       sync.Mutex
	pulse    chan<- struct{}
	startErr error
	starts   int
	stops    int
}

func (f *fakeObserver) Name() string { return "fake" }

func (f *fakeObserver) Start(pulse chan<- struct{}) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulse = pulse
	f.starts++
	return nil
}

func (f *fakeObserver) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulse = nil
	f.stops++
}

// Pulse mimics a native notification: one non-blocking send.
func (f *fakeObserver) Pulse() {
	f.mu.Lock()
	pulse := f.pulse
	f.mu.Unlock()
	if pulse == nil {
		return
	}
	select {
	case pulse <- struct{}{}:
	default:
	}
}

// fakeReader serves canned content after an optional number of failures.
type fakeReader struct {
	mu            sync.Mutex
	content       string
	failRemaining int
	reads         int
}

func (r *fakeReader) ReadText() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.failRemaining > 0 {
		r.failRemaining--
		return "", clip.ErrUnavailable
	}
	return r.content, nil
}

func (r *fakeReader) set(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
}

func (r *fakeReader) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Debounce = 20 * time.Millisecond
	cfg.RetryInitialDelay = time.Millisecond
	return cfg
}

func recvOne(t *testing.T, sub *bus.Subscription) *event.Change {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := sub.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	return c
}

func expectNone(t *testing.T, sub *bus.Subscription, wait time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	c, err := sub.Recv(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Recv = %v, %v; want deadline exceeded", c, err)
	}
}

func TestStartStopRestart(t *testing.T) {
	obs := &fakeObserver{}
	m := New(testConfig(), WithObserver(obs), WithReader(&fakeReader{}))

	if m.IsRunning() {
		t.Fatal("new monitor reports running")
	}

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.IsRunning() {
		t.Fatal("monitor not running after Start")
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if m.IsRunning() {
		t.Fatal("monitor running after Stop")
	}
	if obs.stops != 1 {
		t.Fatalf("observer stops = %d, want 1", obs.stops)
	}

	// The subscriber observes end of stream once the worker winds down.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := sub.Recv(ctx); !errors.Is(err, bus.ErrClosed) {
		t.Fatalf("Recv after stop = %v, want ErrClosed", err)
	}

	if err := m.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("second Stop = %v, want ErrNotRunning", err)
	}

	// Restart behaves like a first start.
	if _, err := m.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer m.Stop()
	if obs.starts != 2 {
		t.Fatalf("observer starts = %d, want 2", obs.starts)
	}
}

func TestDoubleStartRejected(t *testing.T) {
	m := New(testConfig(), WithObserver(&fakeObserver{}), WithReader(&fakeReader{}))
	if _, err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	if _, err := m.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start = %v, want ErrAlreadyRunning", err)
	}
}

func TestRegistrationFailureIsFatal(t *testing.T) {
	obs := &fakeObserver{startErr: errors.New("no display")}
	m := New(testConfig(), WithObserver(obs), WithReader(&fakeReader{}))

	if _, err := m.Start(); err == nil {
		t.Fatal("Start succeeded despite registration failure")
	}
	if m.IsRunning() {
		t.Fatal("monitor running after failed Start")
	}

	// Recovering the platform recovers the monitor.
	obs.startErr = nil
	if _, err := m.Start(); err != nil {
		t.Fatalf("Start after recovery: %v", err)
	}
	m.Stop()
}

func TestEmitsClassifiedChange(t *testing.T) {
	obs := &fakeObserver{}
	reader := &fakeReader{content: "https://github.com/microsoft/vscode"}
	m := New(testConfig(), WithObserver(obs), WithReader(reader))

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	obs.Pulse()
	c := recvOne(t, sub)

	if c.Event.Content != "https://github.com/microsoft/vscode" {
		t.Errorf("Content = %q", c.Event.Content)
	}
	if c.Event.ContentType != event.TypeURL {
		t.Errorf("ContentType = %v, want url", c.Event.ContentType)
	}
	if c.Event.ContentHash != event.Fingerprint(c.Event.Content) {
		t.Error("ContentHash does not match content")
	}
	if c.Event.ContentLength != len(c.Event.Content) {
		t.Errorf("ContentLength = %d", c.Event.ContentLength)
	}
	if c.IsDuplicate {
		t.Error("IsDuplicate = true on an accepted change")
	}
	if c.DetectionTimeMS < 0 {
		t.Errorf("DetectionTimeMS = %d", c.DetectionTimeMS)
	}
}

func TestDuplicateSuppression(t *testing.T) {
	obs := &fakeObserver{}
	reader := &fakeReader{content: "same old text"}
	m := New(testConfig(), WithObserver(obs), WithReader(reader))

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	obs.Pulse()
	recvOne(t, sub)

	// Identical content again: filtered, nothing emitted.
	time.Sleep(50 * time.Millisecond)
	obs.Pulse()
	expectNone(t, sub, 300*time.Millisecond)

	// New content passes.
	reader.set("something new")
	obs.Pulse()
	if c := recvOne(t, sub); c.Event.Content != "something new" {
		t.Errorf("Content = %q", c.Event.Content)
	}
}

func TestLengthAndEmptyFilters(t *testing.T) {
	cfg := testConfig()
	cfg.MaxContentLength = 10

	obs := &fakeObserver{}
	reader := &fakeReader{content: "     "} // whitespace only
	m := New(cfg, WithObserver(obs), WithReader(reader))

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	obs.Pulse()
	expectNone(t, sub, 300*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	reader.set("this is longer than ten bytes")
	obs.Pulse()
	expectNone(t, sub, 300*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	reader.set("fits")
	obs.Pulse()
	if c := recvOne(t, sub); c.Event.Content != "fits" {
		t.Errorf("Content = %q", c.Event.Content)
	}

	stats := m.Stats()
	if stats.Filtered != 2 {
		t.Errorf("Filtered = %d, want 2", stats.Filtered)
	}
}

func TestIgnoreShortContent(t *testing.T) {
	cfg := testConfig()
	cfg.IgnoreShortContent = true

	obs := &fakeObserver{}
	reader := &fakeReader{content: " a "}
	m := New(cfg, WithObserver(obs), WithReader(reader))

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	obs.Pulse()
	expectNone(t, sub, 300*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	reader.set("ab")
	obs.Pulse()
	if c := recvOne(t, sub); c.Event.Content != "ab" {
		t.Errorf("Content = %q", c.Event.Content)
	}
}

func TestRetryThenSuccess(t *testing.T) {
	obs := &fakeObserver{}
	reader := &fakeReader{content: "recovered", failRemaining: 3}
	m := New(testConfig(), WithObserver(obs), WithReader(reader))

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	obs.Pulse()
	c := recvOne(t, sub)

	if c.Event.Content != "recovered" {
		t.Errorf("Content = %q", c.Event.Content)
	}
	if got := reader.readCount(); got != 4 {
		t.Errorf("reads = %d, want 4 (3 failures + 1 success)", got)
	}
	// Backoff slept 1+2+4 ms before the successful attempt.
	if c.DetectionTimeMS < 5 {
		t.Errorf("DetectionTimeMS = %d, want cumulative backoff reflected", c.DetectionTimeMS)
	}
	expectNone(t, sub, 100*time.Millisecond) // exactly one event
}

func TestRetryExhaustionSkipsCycle(t *testing.T) {
	cfg := testConfig()
	cfg.RetryMax = 2

	obs := &fakeObserver{}
	reader := &fakeReader{content: "never seen", failRemaining: 100}
	m := New(cfg, WithObserver(obs), WithReader(reader))

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	obs.Pulse()
	expectNone(t, sub, 300*time.Millisecond)

	stats := m.Stats()
	if stats.ReadFailures != 1 {
		t.Errorf("ReadFailures = %d, want 1", stats.ReadFailures)
	}
	if stats.Emitted != 0 {
		t.Errorf("Emitted = %d, want 0", stats.Emitted)
	}
}

func TestDebounceCollapsesBursts(t *testing.T) {
	cfg := testConfig()
	cfg.Debounce = 100 * time.Millisecond
	cfg.IgnoreDuplicates = false

	obs := &fakeObserver{}
	reader := &fakeReader{content: "burst"}
	m := New(cfg, WithObserver(obs), WithReader(reader))

	if _, err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	for i := 0; i < 5; i++ {
		obs.Pulse()
	}
	time.Sleep(400 * time.Millisecond)

	// First pulse reads immediately; the rest coalesce into at most one
	// further debounced read.
	if got := reader.readCount(); got < 1 || got > 2 {
		t.Errorf("reads = %d, want 1 or 2 for a 5-pulse burst", got)
	}
}

func TestRestartResetsDedupState(t *testing.T) {
	obs := &fakeObserver{}
	reader := &fakeReader{content: "carried over"}
	m := New(testConfig(), WithObserver(obs), WithReader(reader))

	sub, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	obs.Pulse()
	recvOne(t, sub)
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// Same content after a restart is not a duplicate: sessions are fresh.
	sub, err = m.Start()
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer m.Stop()

	obs.Pulse()
	if c := recvOne(t, sub); c.Event.Content != "carried over" {
		t.Errorf("Content = %q", c.Event.Content)
	}
}

// gatedObserver blocks inside Start until released, exposing the window
// between the supervisor handing out the pulse channel and registration
// completing.
type gatedObserver struct {
	fakeObserver
	entered chan struct{}
	release chan struct{}
}

func newGatedObserver() *gatedObserver {
	return &gatedObserver{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *gatedObserver) Start(pulse chan<- struct{}) error {
	g.entered <- struct{}{}
	<-g.release
	return g.fakeObserver.Start(pulse)
}

func TestStopWaitsForInFlightStart(t *testing.T) {
	obs := newGatedObserver()
	m := New(testConfig(), WithObserver(obs), WithReader(&fakeReader{}))

	startErr := make(chan error, 1)
	go func() {
		_, err := m.Start()
		startErr <- err
	}()
	<-obs.entered // registration in flight

	stopErr := make(chan error, 1)
	go func() { stopErr <- m.Stop() }()

	// Stop must not tear anything down while registration is in flight.
	select {
	case err := <-stopErr:
		t.Fatalf("Stop returned %v during registration", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(obs.release)
	if err := <-startErr; err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := <-stopErr; err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// A late native notification after teardown is dropped, not a crash.
	obs.Pulse()

	if m.IsRunning() {
		t.Fatal("monitor running after Stop")
	}
	if obs.stops != 1 {
		t.Fatalf("observer stops = %d, want 1", obs.stops)
	}
}

func TestSubscribeRequiresRunning(t *testing.T) {
	m := New(testConfig(), WithObserver(&fakeObserver{}), WithReader(&fakeReader{}))
	if _, err := m.Subscribe(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Subscribe = %v, want ErrNotRunning", err)
	}

	if _, err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	sub, err := m.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	sub.Close()
}
