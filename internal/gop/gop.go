// Package gop measures starting GOP sizes for cut ranges.
package gop

import (
	"fmt"
	"io"

	"github.com/gopcut/gopcut/internal/cutrange"
	"github.com/gopcut/gopcut/internal/frameindex"
)

// Report holds the starting GOP size of each analyzed range. Smallest is the
// number of frames a downstream keyframe-snapping tool may shift any segment
// start forward without crossing into the next GOP.
type Report struct {
	// Sizes lists the starting GOP size per range, in input order
	Sizes []int

	// Smallest is the minimum of Sizes, 0 when no ranges were analyzed
	Smallest int
}

// Analyze computes the starting GOP size of each range: the distance from the
// range start to the first Intra frame strictly after it (and still inside
// the range), or the full range length when the range spans no further Intra
// frame. Ranges are expected to be the original pre-adjustment selections.
func Analyze(ranges []cutrange.Range, ix *frameindex.Index) Report {
	var rep Report

	for i, r := range ranges {
		size := r.Length
		for f := r.Start + 1; f <= r.End(); f++ {
			if ix.TypeOf(f) == frameindex.Intra {
				size = f - r.Start
				break
			}
		}
		rep.Sizes = append(rep.Sizes, size)
		if i == 0 || size < rep.Smallest {
			rep.Smallest = size
		}
	}

	return rep
}

// WriteReport renders a single-script GOP report: one size per line, a
// separator, and the smallest value.
func WriteReport(w io.Writer, rep Report) error {
	if len(rep.Sizes) == 0 {
		_, err := fmt.Fprintln(w, "No ranges available.")
		return err
	}

	for _, size := range rep.Sizes {
		if _, err := fmt.Fprintf(w, "%d\n", size); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "---------------------------------------"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Smallest starting GOP: %d frames\n", rep.Smallest)
	return err
}

// BatchEntry pairs a script name with its GOP report.
type BatchEntry struct {
	// Name is the script file name shown in the report
	Name string

	// Report is the script's analysis result
	Report Report
}

// WriteBatchReport renders a multi-script GOP report: a section per script
// with its sizes and smallest value, then the overall smallest across all
// scripts. Entries without sizes are left out.
func WriteBatchReport(w io.Writer, entries []BatchEntry) error {
	smallestOverall := 0
	smallestName := ""
	haveOverall := false

	for _, e := range entries {
		if len(e.Report.Sizes) == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "Name: %q\n", e.Name); err != nil {
			return err
		}
		for _, size := range e.Report.Sizes {
			if _, err := fmt.Fprintf(w, "%d\n", size); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\nSmallest starting GOP: %d frames\n", e.Report.Smallest); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "---------------------------------"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}

		if !haveOverall || e.Report.Smallest < smallestOverall {
			smallestOverall = e.Report.Smallest
			smallestName = e.Name
			haveOverall = true
		}
	}

	if !haveOverall {
		return nil
	}

	if _, err := fmt.Fprintln(w, "--------------------------------------------------"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "--------------------------------------------------"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Smallest starting GOP in all vdscripts: %d frames (%q)\n",
		smallestOverall, smallestName)
	return err
}
