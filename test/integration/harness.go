// Package integration provides integration testing utilities for gopcut.
package integration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gopcut/gopcut/internal/adjust"
	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/cutlist"
	"github.com/gopcut/gopcut/internal/cutrange"
	"github.com/gopcut/gopcut/internal/framelog"
	"github.com/gopcut/gopcut/internal/timecode"
	"github.com/gopcut/gopcut/internal/vdscript"
)

// testFrameDuration is the per-frame duration used for constant-rate
// fixtures. 1/16 s is exactly representable in a float64, so every derived
// timestamp, duration and report value is reproducible down to the last
// digit.
const testFrameDuration = 0.0625

// TestHarness manages a working directory of videos, frame logs and scripts
// and drives the pipeline steps over it.
type TestHarness struct {
	t      *testing.T
	Dir    string
	logger *slog.Logger
}

// NewTestHarness creates a new test harness rooted in a fresh temp directory.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	return &TestHarness{
		t:   t,
		Dir: t.TempDir(),
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError, // Only show errors in tests
		})),
	}
}

// Path resolves a file name inside the harness directory.
func (h *TestHarness) Path(name string) string {
	return filepath.Join(h.Dir, name)
}

// CreateVideo writes a placeholder video file and returns its path. The
// pipeline never decodes it; only its name matters.
func (h *TestHarness) CreateVideo(name string) string {
	h.t.Helper()

	path := h.Path(name)
	if err := os.WriteFile(path, []byte("fake video data"), 0o644); err != nil {
		h.t.Fatalf("failed to write test video: %v", err)
	}
	return path
}

// CreateFrameLog writes a constant-rate showinfo frame log for the video.
// layout gives one picture type character per frame, frame n gets
// pts n/16 s.
func (h *TestHarness) CreateFrameLog(video, layout string) string {
	h.t.Helper()

	durations := make([]float64, len(layout))
	for i := range durations {
		durations[i] = testFrameDuration
	}
	return h.createFrameLog(video, layout, durations)
}

// CreateVFRFrameLog writes a showinfo frame log whose per-frame durations
// cycle through the given values, producing a variable-rate timeline.
func (h *TestHarness) CreateVFRFrameLog(video, layout string, cycle []float64) string {
	h.t.Helper()

	if len(cycle) == 0 {
		h.t.Fatal("CreateVFRFrameLog needs at least one duration")
	}

	durations := make([]float64, len(layout))
	for i := range durations {
		durations[i] = cycle[i%len(cycle)]
	}
	return h.createFrameLog(video, layout, durations)
}

func (h *TestHarness) createFrameLog(video, layout string, durations []float64) string {
	h.t.Helper()

	var b strings.Builder
	b.WriteString("ffmpeg version 6.0 Copyright (c) 2000-2023 the FFmpeg developers\n")
	b.WriteString("Input #0, matroska,webm, from 'input.mkv':\n")

	pts := 0.0
	for i := 0; i < len(layout); i++ {
		fmt.Fprintf(&b, "[Parsed_showinfo_0 @ 0x5555] n:%4d pts_time:%.6f duration_time:%.6f type:%c\n",
			i, pts, durations[i], layout[i])
		pts += durations[i]
	}
	b.WriteString("[out#0/null @ 0x6666] video:1234kB audio:0kB\n")

	path := batch.FrameLogForVideo(h.Path(video))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		h.t.Fatalf("failed to write test frame log: %v", err)
	}
	return path
}

// CreateScript writes a VirtualDub script selecting the given ranges of the
// video.
func (h *TestHarness) CreateScript(video string, ranges []cutrange.Range) string {
	h.t.Helper()

	var b strings.Builder
	fmt.Fprintf(&b, "VirtualDub.Open(U%q,\"\",0);\n", video)
	b.WriteString("VirtualDub.subset.Clear();\n")
	for _, r := range ranges {
		fmt.Fprintf(&b, "VirtualDub.subset.AddRange(%d,%d);\n", r.Start, r.Length)
	}
	b.WriteString("VirtualDub.video.SetRange();\n")

	path := h.Path(video) + batch.ScriptSuffix
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		h.t.Fatalf("failed to write test script: %v", err)
	}
	return path
}

// AdjustAll runs boundary adjustment over every script in the harness
// directory and returns the per-script results.
func (h *TestHarness) AdjustAll(cfg adjust.Config, jobs int) []batch.Result {
	h.t.Helper()

	runner, err := batch.NewRunner(cfg, jobs, h.logger)
	if err != nil {
		h.t.Fatalf("failed to create batch runner: %v", err)
	}

	results, err := runner.AdjustDir(context.Background(), h.Dir)
	if err != nil {
		h.t.Fatalf("failed to adjust directory: %v", err)
	}
	return results
}

// GenerateCutlists translates every adjusted script in the harness directory
// into a cut list file. fps zero derives durations from the log timestamps,
// a positive fps uses frame arithmetic. Returns the cut list paths written.
func (h *TestHarness) GenerateCutlists(fps float64) []string {
	h.t.Helper()

	units, err := batch.DiscoverAdjusted(h.Dir)
	if err != nil {
		h.t.Fatalf("failed to discover adjusted scripts: %v", err)
	}

	var written []string
	for _, unit := range units {
		ix, err := framelog.ParseFile(unit.FrameLog)
		if err != nil {
			h.t.Fatalf("failed to parse frame log %s: %v", unit.FrameLog, err)
		}
		script, err := vdscript.ParseFile(unit.Script)
		if err != nil {
			h.t.Fatalf("failed to parse script %s: %v", unit.Script, err)
		}

		cl := cutlist.Cutlist{FPS: fps}
		for _, r := range script.Ranges() {
			var seg timecode.Segment
			if fps > 0 {
				seg, err = timecode.ForRangeAtRate(r, ix, fps)
			} else {
				seg, err = timecode.ForRange(r, ix)
			}
			if err != nil {
				h.t.Fatalf("failed to translate range %d-%d: %v", r.Start, r.End(), err)
			}
			cl.Segments = append(cl.Segments, seg)
		}

		path := batch.CutlistFor(unit.Script)
		if err := cutlist.WriteFile(path, cl); err != nil {
			h.t.Fatalf("failed to write cut list %s: %v", path, err)
		}
		written = append(written, path)
	}
	return written
}

// AdjustedRanges parses an adjusted script file and returns its selections.
func (h *TestHarness) AdjustedRanges(path string) []cutrange.Range {
	h.t.Helper()

	script, err := vdscript.ParseFile(path)
	if err != nil {
		h.t.Fatalf("failed to parse adjusted script: %v", err)
	}
	return script.Ranges()
}

// ReadFile reads a file in the harness directory and returns its content.
func (h *TestHarness) ReadFile(name string) string {
	h.t.Helper()

	data, err := os.ReadFile(h.Path(name))
	if err != nil {
		h.t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}
