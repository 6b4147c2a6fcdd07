// Package timecode translates frame ranges into timestamp segments.
package timecode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gopcut/gopcut/internal/cutrange"
	"github.com/gopcut/gopcut/internal/frameindex"
)

// ErrMissingTimestamp is returned when a range's start frame carries no
// presentation time in the index.
var ErrMissingTimestamp = errors.New("no timestamp for frame")

// fallbackFrameDuration is assumed when the index holds a single timestamped
// frame and the inter-frame delta cannot be measured (0.04 s, ~25 fps).
const fallbackFrameDuration = 0.04

// Segment is a cut expressed in seconds. Start and Duration map directly to
// ffmpeg's -ss and -t arguments.
type Segment struct {
	// Start is the presentation time of the first frame
	Start float64

	// Duration is the segment length in seconds
	Duration float64
}

// End returns the exclusive end time of the segment.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// Shift moves the segment's boundaries forward by whole frames at the given
// rate: startFrames shifts the start, endFrames shifts the end. The shifts
// are independent, so the duration changes by their difference and can go
// negative; callers skip such segments. fps must be positive.
func (s Segment) Shift(startFrames, endFrames int, fps float64) Segment {
	start := s.Start + float64(startFrames)/fps
	end := s.End() + float64(endFrames)/fps
	return Segment{Start: start, Duration: end - start}
}

// ForRange translates a frame range into a segment using the timestamps in
// the index. The duration is the exact timestamp difference to the frame one
// past the range end, which stays correct under variable frame rate. When the
// range runs past the last timestamped frame, the boundary time is
// extrapolated from the last measured inter-frame delta; that tail estimate
// is an approximation, not log data.
func ForRange(r cutrange.Range, ix *frameindex.Index) (Segment, error) {
	start, ok := ix.PTSOf(r.Start)
	if !ok {
		return Segment{}, fmt.Errorf("start frame %d: %w", r.Start, ErrMissingTimestamp)
	}

	boundary := r.Start + r.Length
	if end, ok := ix.PTSOf(boundary); ok {
		return Segment{Start: start, Duration: end - start}, nil
	}

	// The boundary frame is not in the log. Walk back to the two highest
	// timestamped frames and extend the last known delta over the missing
	// frames.
	last, prev := -1, -1
	frames := ix.Frames()
	for i := len(frames) - 1; i >= 0; i-- {
		if _, ok := ix.PTSOf(frames[i]); !ok {
			continue
		}
		if last < 0 {
			last = frames[i]
			continue
		}
		prev = frames[i]
		break
	}

	lastPTS, _ := ix.PTSOf(last)

	delta := fallbackFrameDuration
	if prev >= 0 {
		prevPTS, _ := ix.PTSOf(prev)
		delta = lastPTS - prevPTS
	}

	missing := boundary - last
	estimatedEnd := lastPTS + delta*float64(missing)

	return Segment{Start: start, Duration: estimatedEnd - start}, nil
}

// ForRangeAtRate translates a frame range into a segment using a fixed frame
// rate for the duration. The start still comes from the log timestamp; only
// the duration is frame arithmetic (Length / fps).
func ForRangeAtRate(r cutrange.Range, ix *frameindex.Index, fps float64) (Segment, error) {
	if fps <= 0 {
		return Segment{}, fmt.Errorf("frame rate must be positive, got %g", fps)
	}

	start, ok := ix.PTSOf(r.Start)
	if !ok {
		return Segment{}, fmt.Errorf("start frame %d: %w", r.Start, ErrMissingTimestamp)
	}

	return Segment{Start: start, Duration: float64(r.Length) / fps}, nil
}

// FormatHMS renders seconds as HH:MM:SS.mmm.
func FormatHMS(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := int(math.Mod(seconds, 60))
	millis := int(math.Mod(seconds, 1) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// WriteInfo renders the human-readable cut report for a range list: one line
// per range with its timestamps, frame numbers and length, then the total.
// Ranges whose timestamps cannot be resolved get an error line and are left
// out of the total.
func WriteInfo(w io.Writer, ranges []cutrange.Range, ix *frameindex.Index) error {
	// Frame columns are padded to the widest entry so the Length column
	// lines up.
	maxFramesText := 0
	for _, r := range ranges {
		if n := len(framesText(r)); n > maxFramesText {
			maxFramesText = n
		}
	}

	totalDuration := 0.0
	totalFrames := 0

	for _, r := range ranges {
		seg, err := ForRange(r, ix)
		if err != nil {
			if _, werr := fmt.Fprintf(w, "Error finding timestamps for frames %d-%d\n", r.Start, r.End()); werr != nil {
				return werr
			}
			continue
		}

		_, err = fmt.Fprintf(w, "%s - %s %-*s    Length: %s (%d frames)\n",
			FormatHMS(seg.Start), FormatHMS(seg.End()),
			maxFramesText, framesText(r),
			FormatHMS(seg.Duration), r.Length)
		if err != nil {
			return err
		}

		totalDuration += seg.Duration
		totalFrames += r.Length
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("-", 80)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total Length: %s (%d frames)\n", FormatHMS(totalDuration), totalFrames); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "fps = VFR (Calculated from Log)")
	return err
}

func framesText(r cutrange.Range) string {
	return fmt.Sprintf("(Frames %d - %d)", r.Start, r.End())
}
