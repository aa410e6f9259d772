// Package monitor owns the clipboard monitoring session: the platform
// observer that signals changes, the single worker goroutine that reads and
// classifies them, and the bus that fans accepted changes out to consumers.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clipmind/clipmind/internal/bus"
	"github.com/clipmind/clipmind/internal/clip"
)

var (
	// ErrAlreadyRunning is returned by Start on a running monitor.
	ErrAlreadyRunning = errors.New("monitor: already running")

	// ErrNotRunning is returned by Stop and Subscribe on a stopped monitor.
	ErrNotRunning = errors.New("monitor: not running")
)

// Monitor supervises one monitoring session at a time. The zero value is not
// usable; construct with New. Safe for concurrent use.
type Monitor struct {
	cfg         Config
	newObserver func() clip.Observer
	newReader   func() (clip.Reader, error)

	// lifecycle serializes Start and Stop end to end, so observer
	// registration and teardown never interleave. mu only guards the
	// state fields and is never held across observer calls.
	lifecycle sync.Mutex

	mu        sync.Mutex
	running   bool
	observer  clip.Observer
	pulse     chan struct{}
	bus       *bus.Bus
	startedAt time.Time
	counters  *counters
}

// Option adjusts a Monitor at construction, mainly to inject fake platform
// capabilities in tests.
type Option func(*Monitor)

// WithObserver replaces the platform observer.
func WithObserver(o clip.Observer) Option {
	return func(m *Monitor) { m.newObserver = func() clip.Observer { return o } }
}

// WithReader replaces the clipboard reader.
func WithReader(r clip.Reader) Option {
	return func(m *Monitor) { m.newReader = func() (clip.Reader, error) { return r, nil } }
}

// New returns a stopped Monitor with the given configuration.
func New(cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:         cfg,
		newObserver: clip.NewObserver,
		newReader:   clip.NewReader,
		counters:    &counters{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a monitoring session and returns a subscription to its change
// stream. It fails with ErrAlreadyRunning on a running monitor, or with the
// platform registration error, in which case nothing is left running.
// Each session starts fresh: new bus, new dedup state, new counters.
func (m *Monitor) Start() (*bus.Subscription, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil, ErrAlreadyRunning
	}

	reader, err := m.newReader()
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("monitor: %w", err)
	}

	observer := m.newObserver()
	pulse := make(chan struct{}, 1)
	b := bus.New(m.cfg.BusCapacity)
	c := &counters{}

	m.running = true
	m.observer = observer
	m.pulse = pulse
	m.bus = b
	m.startedAt = time.Now()
	m.counters = c
	m.mu.Unlock()

	// Worker first, observer second: once registration succeeds every pulse
	// has a receiver.
	go m.runWorker(pulse, reader, b, c)

	if err := observer.Start(pulse); err != nil {
		m.mu.Lock()
		m.running = false
		m.observer = nil
		m.pulse = nil
		m.bus = nil
		m.mu.Unlock()
		close(pulse) // winds the worker down; the worker closes the bus
		return nil, fmt.Errorf("monitor: %w", err)
	}

	sub := b.Subscribe()
	slog.Info("clipboard monitoring started",
		"observer", observer.Name(),
		"debounce", m.cfg.Debounce,
		"retry_max", m.cfg.RetryMax,
	)
	return sub, nil
}

// Stop ends the session. A Stop arriving while Start is still registering
// waits for registration to finish before tearing anything down, so the
// observer is never left live against a closed pulse channel.
// The running flag flips first, then the observer is
// torn down (bounded join of its event loop), then the pulse channel closes,
// which is the worker's only wake-up without a pulse: it exits and closes
// the bus so subscribers observe end of stream. Stop does not join the
// worker. A stopped monitor can be started again with fresh state.
func (m *Monitor) Stop() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNotRunning
	}
	m.running = false
	observer := m.observer
	pulse := m.pulse
	m.observer = nil
	m.pulse = nil
	m.bus = nil
	m.startedAt = time.Time{}
	m.mu.Unlock()

	observer.Stop()
	close(pulse)

	slog.Info("clipboard monitoring stopped")
	return nil
}

// IsRunning reports whether a session is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Subscribe attaches an additional consumer to the running session's stream.
func (m *Monitor) Subscribe() (*bus.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil, ErrNotRunning
	}
	return m.bus.Subscribe(), nil
}

// Stats is a point-in-time snapshot of the current or most recent session.
type Stats struct {
	Running      bool      `json:"running"`
	StartedAt    time.Time `json:"started_at,omitzero"`
	Pulses       uint64    `json:"pulses"`
	Emitted      uint64    `json:"emitted"`
	Filtered     uint64    `json:"filtered"`
	ReadFailures uint64    `json:"read_failures"`
	Subscribers  int       `json:"subscribers"`
}

// Stats returns session counters. After Stop they reflect the finished
// session until the next Start resets them.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{
		Running:      m.running,
		StartedAt:    m.startedAt,
		Pulses:       m.counters.pulses.Load(),
		Emitted:      m.counters.emitted.Load(),
		Filtered:     m.counters.filtered.Load(),
		ReadFailures: m.counters.readFailures.Load(),
	}
	if m.bus != nil {
		s.Subscribers = m.bus.Subscribers()
	}
	return s
}

// counters hold per-session tallies, written by the worker only.
type counters struct {
	pulses       atomic.Uint64
	emitted      atomic.Uint64
	filtered     atomic.Uint64
	readFailures atomic.Uint64
}
