// Package adjust moves cut ranges onto legal GOP boundaries.
package adjust

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gopcut/gopcut/internal/cutrange"
	"github.com/gopcut/gopcut/internal/frameindex"
)

// ErrInvalidRange is returned when an input range is empty or an adjusted
// range would have a non-positive length. The latter never happens on a
// consistent frame log, so it is surfaced rather than clamped.
var ErrInvalidRange = errors.New("range has non-positive length")

// EndMode selects how a range's end frame is adjusted.
type EndMode int

const (
	// FullGOP moves the end forward to the last Predicted frame before the
	// next Intra frame, keeping the whole trailing GOP.
	FullGOP EndMode = iota

	// ShortCut moves the end forward only to the nearest Predicted or Intra
	// frame at or after it.
	ShortCut
)

// String returns the mode's name.
func (m EndMode) String() string {
	switch m {
	case FullGOP:
		return "full-gop"
	case ShortCut:
		return "short-cut"
	default:
		return fmt.Sprintf("EndMode(%d)", int(m))
	}
}

// Config holds the boundary adjustment parameters. A Config is immutable
// once built and safe to share across goroutines.
type Config struct {
	// IFrameOffset is how many Intra frames to step back for the new start.
	// 1 targets the previous Intra frame (a start already on an Intra frame
	// stays put); 2 steps back one more, which helps with open-GOP codecs.
	IFrameOffset int

	// EndMode selects full-GOP or short-cut end adjustment
	EndMode EndMode

	// MergeRanges enables merging of adjusted ranges that overlap or sit
	// closer than MinGap frames apart
	MergeRanges bool

	// MinGap is the largest gap in frames that still triggers a merge
	MinGap int
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.IFrameOffset < 1 {
		return fmt.Errorf("i-frame offset must be at least 1, got %d", c.IFrameOffset)
	}
	if c.MinGap < 0 {
		return fmt.Errorf("minimum gap must not be negative, got %d", c.MinGap)
	}
	if c.EndMode != FullGOP && c.EndMode != ShortCut {
		return fmt.Errorf("unknown end mode %d", int(c.EndMode))
	}
	return nil
}

// Adjust moves a single range onto legal cut boundaries: the start back to
// the configured previous Intra frame, the end forward per the end mode.
// The adjusted range contains every frame of the original.
func Adjust(r cutrange.Range, cfg Config, ix *frameindex.Index) (cutrange.Range, error) {
	if err := cfg.Validate(); err != nil {
		return cutrange.Range{}, err
	}
	if !r.Valid() {
		return cutrange.Range{}, fmt.Errorf("frames %d-%d: %w", r.Start, r.End(), ErrInvalidRange)
	}

	newStart, err := ix.NthPreviousIntra(r.Start, cfg.IFrameOffset)
	if err != nil {
		return cutrange.Range{}, err
	}

	var newEnd int
	if cfg.EndMode == ShortCut {
		newEnd, err = ix.NextPredictedOrIntra(r.End())
	} else {
		newEnd, err = ix.LastPredictedBeforeNextIntra(r.End())
	}
	if err != nil {
		return cutrange.Range{}, err
	}

	length := newEnd - newStart + 1
	if length <= 0 {
		return cutrange.Range{}, fmt.Errorf("frames %d-%d adjusted to %d-%d: %w",
			r.Start, r.End(), newStart, newEnd, ErrInvalidRange)
	}

	return cutrange.Range{Start: newStart, Length: length}, nil
}

// Adjuster applies a fixed configuration to whole range lists.
type Adjuster struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Adjuster with a validated configuration.
func New(cfg Config, logger *slog.Logger) (*Adjuster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Adjuster{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Adjust moves a single range onto legal cut boundaries.
func (a *Adjuster) Adjust(r cutrange.Range, ix *frameindex.Index) (cutrange.Range, error) {
	return Adjust(r, a.cfg, ix)
}

// AdjustAll adjusts every range in input order, then merges the results when
// the configuration asks for it. A range that fails to adjust is logged and
// skipped; the rest of the list is still processed.
func (a *Adjuster) AdjustAll(ranges []cutrange.Range, ix *frameindex.Index) []cutrange.Range {
	adjusted := make([]cutrange.Range, 0, len(ranges))

	for _, r := range ranges {
		res, err := a.Adjust(r, ix)
		if err != nil {
			a.logger.Warn("skipping range",
				"start", r.Start, "length", r.Length, "error", err)
			continue
		}
		adjusted = append(adjusted, res)
	}

	if !a.cfg.MergeRanges {
		return adjusted
	}

	// Merge requires ascending start order. Input files normally list
	// ranges in order already; an out-of-order file gets sorted here
	// rather than silently merged wrong.
	if !cutrange.IsSorted(adjusted) {
		a.logger.Warn("adjusted ranges out of order, sorting before merge")
		cutrange.SortByStart(adjusted)
	}

	return cutrange.Merge(adjusted, a.cfg.MinGap)
}
