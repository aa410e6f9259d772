//go:build !windows && !darwin && !linux

package clip

// stubObserver is the fallback for platforms without a clipboard
// notification mechanism. Start always fails; no degraded mode exists.
type stubObserver struct{}

// NewObserver returns an observer whose registration always fails.
func NewObserver() Observer {
	return stubObserver{}
}

func (stubObserver) Name() string { return "unsupported platform" }

func (stubObserver) Start(chan<- struct{}) error { return ErrUnsupported }

func (stubObserver) Stop() {}
