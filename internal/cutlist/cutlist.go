// Package cutlist reads and writes the downstream cut list formats.
package cutlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gopcut/gopcut/internal/cutrange"
	"github.com/gopcut/gopcut/internal/timecode"
)

var (
	segmentPattern = regexp.MustCompile(`start_time=([\d.]+),duration=([\d.]+)`)
	fpsPattern     = regexp.MustCompile(`#\s*fps=([\d.]+)`)
)

// Cutlist is a timecode cut list: the segments to keep, in list order, plus
// the frame rate they were computed with.
type Cutlist struct {
	// FPS is the frame rate recorded in the header. Zero means the segment
	// durations were derived from per-frame timestamps (VFR) rather than
	// frame arithmetic.
	FPS float64

	// Segments are the cuts in list order
	Segments []timecode.Segment
}

// IsVFR reports whether the cut list carries no fixed frame rate.
func (c Cutlist) IsVFR() bool {
	return c.FPS <= 0
}

// Write renders the cut list: a frame rate header comment, then one
// start_time/duration line per segment with six-decimal precision.
func Write(w io.Writer, cl Cutlist) error {
	if cl.IsVFR() {
		if _, err := fmt.Fprintln(w, "# fps=VFR"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "# fps=%.6f\n", cl.FPS); err != nil {
			return err
		}
	}

	for _, seg := range cl.Segments {
		if _, err := fmt.Fprintf(w, "start_time=%.6f,duration=%.6f\n", seg.Start, seg.Duration); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the cut list to a file.
func WriteFile(path string, cl Cutlist) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(f, cl); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Parse reads a cut list. Lines that match neither the fps header nor the
// segment format are skipped, so comments and stray text are harmless. An
// empty segment list is not an error; callers decide how to treat it.
func Parse(r io.Reader) (Cutlist, error) {
	var cl Cutlist

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if m := segmentPattern.FindStringSubmatch(line); m != nil {
			start, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			dur, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			cl.Segments = append(cl.Segments, timecode.Segment{Start: start, Duration: dur})
			continue
		}

		if m := fpsPattern.FindStringSubmatch(line); m != nil {
			if fps, err := strconv.ParseFloat(m[1], 64); err == nil {
				cl.FPS = fps
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return Cutlist{}, fmt.Errorf("failed to read cut list: %w", err)
	}
	return cl, nil
}

// ParseFile opens and parses a cut list file.
func ParseFile(path string) (Cutlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return Cutlist{}, fmt.Errorf("failed to open cut list: %w", err)
	}
	defer f.Close()

	cl, err := Parse(f)
	if err != nil {
		return Cutlist{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cl, nil
}

// FormatParts renders ranges as an mkvmerge split-parts expression: inclusive
// S-E frame pairs joined by commas. With join enabled every part after the
// first gets a + prefix, which makes mkvmerge append the parts into one
// output file.
func FormatParts(ranges []cutrange.Range, join bool) string {
	parts := make([]string, 0, len(ranges))
	for i, r := range ranges {
		part := fmt.Sprintf("%d-%d", r.Start, r.End())
		if join && i > 0 {
			part = "+" + part
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ",")
}

// BatchEntry pairs a script name with its ranges for the batch parts file.
type BatchEntry struct {
	// Name is the script file name shown in the output
	Name string

	// Ranges are the script's adjusted selections
	Ranges []cutrange.Range
}

// WriteBatch renders the multi-script parts file: a quoted script name, its
// parts expression, and a blank line per entry.
func WriteBatch(w io.Writer, entries []BatchEntry, join bool) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%q\n%s\n\n", e.Name, FormatParts(e.Ranges, join)); err != nil {
			return err
		}
	}
	return nil
}
