// Package framelog parses ffmpeg showinfo frame logs.
package framelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gopcut/gopcut/internal/frameindex"
)

// ErrMalformedLog is returned when a log yields no frame records at all.
var ErrMalformedLog = errors.New("no showinfo frame records found")

// Only lines emitted by the showinfo filter carry frame information. The
// rest of ffmpeg's stderr (codec banners, progress lines) is ignored.
const showinfoMarker = "Parsed_showinfo"

var (
	typePattern     = regexp.MustCompile(`n:\s*(\d+).*type:(\w)`)
	ptsPattern      = regexp.MustCompile(`n:\s*(\d+).*?pts_time:([\d.]+)`)
	durationPattern = regexp.MustCompile(`duration_time:([\d.]+)`)
)

// Parse reads a showinfo log and builds a frame index from it. Lines without
// the showinfo marker are skipped, as are marker lines that carry no frame
// fields (the filter's init and summary output). A log that produces zero
// records returns ErrMalformedLog.
func Parse(r io.Reader) (*frameindex.Index, error) {
	var records []frameindex.Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, showinfoMarker) {
			continue
		}

		m := typePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		frame, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		rec := frameindex.Record{
			Frame: frame,
			Type:  frameindex.ParsePictureType(m[2][0]),
		}

		if pm := ptsPattern.FindStringSubmatch(line); pm != nil {
			if pts, err := strconv.ParseFloat(pm[2], 64); err == nil {
				rec.PTS = pts
				rec.HasPTS = true
			}
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrMalformedLog
	}

	return frameindex.New(records), nil
}

// ParseFile opens and parses a showinfo log file.
func ParseFile(path string) (*frameindex.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	ix, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return ix, nil
}

// VFRResult classifies a log's frame rate mode.
type VFRResult struct {
	// Variable is true when the log shows more than one distinct frame duration
	Variable bool

	// Durations holds the distinct duration_time values seen, ascending
	Durations []float64
}

// DetectVFR scans a showinfo log for duration_time values. Durations are
// rounded to six decimals before comparison; more than one distinct value
// means the stream uses a variable frame rate.
func DetectVFR(r io.Reader) (VFRResult, error) {
	seen := make(map[float64]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, showinfoMarker) {
			continue
		}

		m := durationPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		dur, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		seen[math.Round(dur*1e6)/1e6] = true
	}

	if err := scanner.Err(); err != nil {
		return VFRResult{}, fmt.Errorf("failed to read log: %w", err)
	}

	durations := make([]float64, 0, len(seen))
	for d := range seen {
		durations = append(durations, d)
	}
	sort.Float64s(durations)

	return VFRResult{
		Variable:  len(durations) > 1,
		Durations: durations,
	}, nil
}

// DetectVFRFile opens and scans a showinfo log file for frame rate mode.
func DetectVFRFile(path string) (VFRResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return VFRResult{}, fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	res, err := DetectVFR(f)
	if err != nil {
		return VFRResult{}, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return res, nil
}

// VFREntry pairs a frame log name with its detection result.
type VFREntry struct {
	Name   string
	Result VFRResult
}

// WriteVFRReport renders the VFR_info.txt report: one block per log with its
// distinct frame durations, then a summary that flags duration-based cut
// lists as suspect when any log shows a variable frame rate.
func WriteVFRReport(w io.Writer, entries []VFREntry) error {
	var lines []string
	anyVFR := false

	for _, e := range entries {
		status := "Constant frame rate"
		if e.Result.Variable {
			status = "VFR detected"
			anyVFR = true
		}
		lines = append(lines, fmt.Sprintf("%s: %s", e.Name, status))
		for _, d := range e.Result.Durations {
			lines = append(lines, fmt.Sprintf("    duration_time: %s", strconv.FormatFloat(d, 'f', -1, 64)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "# Summary")
	if anyVFR {
		lines = append(lines, "WARNING: One or more videos appear to use Variable Frame Rate (VFR).")
		lines = append(lines, "Ensure duration-based cutlists are accurate for these.")
	} else {
		lines = append(lines, "Frame rate mode for all videos: Constant")
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}
