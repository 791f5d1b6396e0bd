package watchdog

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"
)

const (
	DEFAULT_STALE_AFTER = 5 * time.Second
	CHECK_INTERVAL      = 1 * time.Second
)

// Watchdog tracks named workers by their last heartbeat and logs when one
// goes quiet. The simulator's frame loop beats once per sweep; a stalled
// sweep (a handler stuck on a lock, usually) shows up here long before
// anyone notices entities freezing.
type Watchdog struct {
	log        zerolog.Logger
	staleAfter time.Duration
	mutex      deadlock.RWMutex
	beats      map[string]time.Time
	warned     map[string]bool
}

func New(logger zerolog.Logger) *Watchdog {
	return &Watchdog{
		log:        logger,
		staleAfter: DEFAULT_STALE_AFTER,
		beats:      make(map[string]time.Time),
		warned:     make(map[string]bool),
	}
}

// SetStaleAfter overrides the silence threshold.
func (w *Watchdog) SetStaleAfter(d time.Duration) {
	w.mutex.Lock()
	w.staleAfter = d
	w.mutex.Unlock()
}

// Beat records liveness for a named worker. Unknown names are registered on
// first beat.
func (w *Watchdog) Beat(name string) {
	w.mutex.Lock()
	if w.warned[name] {
		w.log.Info().Str("worker", name).Msg("worker recovered")
		w.warned[name] = false
	}
	w.beats[name] = time.Now()
	w.mutex.Unlock()
}

// Forget drops a worker from monitoring.
func (w *Watchdog) Forget(name string) {
	w.mutex.Lock()
	delete(w.beats, name)
	delete(w.warned, name)
	w.mutex.Unlock()
}

// Go runs fn on a new goroutine and monitors it: the worker is registered
// before fn starts and forgotten when fn returns.
func (w *Watchdog) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	w.Beat(name)
	go func() {
		defer w.Forget(name)
		fn(ctx)
	}()
}

// Watch polls heartbeats until ctx is done, logging each worker that has
// been silent past the threshold. It logs once per stall, not once per poll.
func (w *Watchdog) Watch(ctx context.Context) {
	ticker := time.NewTicker(CHECK_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.sweep(now)
		}
	}
}

func (w *Watchdog) sweep(now time.Time) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	for name, last := range w.beats {
		silent := now.Sub(last)
		if silent < w.staleAfter || w.warned[name] {
			continue
		}
		w.warned[name] = true
		w.log.Error().
			Str("worker", name).
			Dur("silent", silent).
			Msg("worker no longer healthy")
	}
}
