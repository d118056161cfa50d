// Package window computes leak-free data-fetch windows from a target
// datetime and a data source's offset/window configuration.
package window

import (
	"time"

	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// Descriptor bundles a data source's fetch configuration, mirroring the
// engine's configuration surface for data-source descriptors.
type Descriptor struct {
	Name           string
	DatetimeColumn string
	OffsetSeconds  int64
	WindowSeconds  int64
	SourcePath     string
	ModuleHint     string
}

// Calculate computes the closed fetch interval [start, end] for a target
// datetime T, given a source's offset_seconds and window_seconds:
//
//	end   := T - offset_seconds
//	start := end - window_seconds
//
// windowSeconds must be positive. offsetSeconds may be negative (the window
// shifts forward in that case). The interval is inclusive on both ends,
// matching bar-at-T OHLCV semantics.
//
// The window is shifted rather than the data timestamps, so a bar whose
// timestamp equals T but whose availability is delayed by offsetSeconds will
// not appear in the fetched frame when the engine is run at time T. This
// must hold identically in backtest and live.
func Calculate(target time.Time, offsetSeconds, windowSeconds int64) (start, end time.Time, err error) {
	if windowSeconds <= 0 {
		return time.Time{}, time.Time{}, errors.Newf(errors.ErrCodeInvalidWindow,
			"window_seconds must be positive, got %d", windowSeconds)
	}

	end = target.Add(-time.Duration(offsetSeconds) * time.Second)
	start = end.Add(-time.Duration(windowSeconds) * time.Second)

	return start, end, nil
}

// Contains reports whether datetime t falls within the closed interval
// [start, end].
func Contains(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
