// Package vdscript reads and rewrites VirtualDub script files.
package vdscript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gopcut/gopcut/internal/cutrange"
)

const (
	addRangePrefix = "VirtualDub.subset.AddRange"
	setRangePrefix = "VirtualDub.video.SetRange"
)

var addRangePattern = regexp.MustCompile(`AddRange\((\d+),\s*(\d+)\)`)

// Script is a parsed VirtualDub script. Every input line is kept verbatim so
// a rewrite preserves whatever else the script sets up (source file, audio
// settings, compression options).
type Script struct {
	lines  []string
	ranges []cutrange.Range
}

// Parse reads a VirtualDub script. Cut selections come from
// VirtualDub.subset.AddRange(start,length); lines, in file order. A script
// without selections parses fine; callers decide whether that is worth
// reporting.
func Parse(r io.Reader) (*Script, error) {
	s := &Script{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		s.lines = append(s.lines, line)

		if !strings.HasPrefix(line, addRangePrefix) {
			continue
		}
		m := addRangePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		length, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		s.ranges = append(s.ranges, cutrange.Range{Start: start, Length: length})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	return s, nil
}

// ParseFile opens and parses a VirtualDub script file.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// Ranges returns the cut selections in file order. The returned slice is a
// copy.
func (s *Script) Ranges() []cutrange.Range {
	ranges := make([]cutrange.Range, len(s.ranges))
	copy(ranges, s.ranges)
	return ranges
}

// WriteAdjusted writes the script back with its selections replaced. All
// non-selection lines are kept in their original order, the new AddRange
// lines follow, and the single SetRange terminator closes the file. The
// layout matches what VirtualDub itself writes, so the output loads in
// VirtualDub and VirtualDub2.
func (s *Script) WriteAdjusted(w io.Writer, ranges []cutrange.Range) error {
	for _, line := range s.lines {
		if strings.HasPrefix(line, addRangePrefix) || strings.HasPrefix(line, setRangePrefix) {
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	for _, r := range ranges {
		if _, err := fmt.Fprintf(w, "VirtualDub.subset.AddRange(%d,%d);\n", r.Start, r.Length); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "VirtualDub.video.SetRange();")
	return err
}

// WriteAdjustedFile writes the adjusted script to a file.
func (s *Script) WriteAdjustedFile(path string, ranges []cutrange.Range) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := s.WriteAdjusted(f, ranges); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

