package watchdog

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSweepFlagsSilentWorkers(t *testing.T) {
	w := New(zerolog.Nop())
	w.SetStaleAfter(time.Second)

	w.Beat("physics")
	w.sweep(time.Now())
	if w.warned["physics"] {
		t.Error("fresh worker must not be flagged")
	}

	w.sweep(time.Now().Add(2 * time.Second))
	if !w.warned["physics"] {
		t.Error("silent worker must be flagged")
	}

	// One warning per stall; a later sweep does not re-flag.
	w.warned["physics"] = true
	w.sweep(time.Now().Add(4 * time.Second))

	// A beat clears the stall.
	w.Beat("physics")
	if w.warned["physics"] {
		t.Error("beat must clear the stall")
	}
}

func TestForget(t *testing.T) {
	w := New(zerolog.Nop())
	w.Beat("persist")
	w.Forget("persist")

	w.SetStaleAfter(time.Millisecond)
	w.sweep(time.Now().Add(time.Hour))
	if len(w.warned) != 0 {
		t.Error("forgotten workers are not monitored")
	}
}
