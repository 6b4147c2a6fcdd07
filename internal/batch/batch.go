// Package batch ties the per-video file conventions together and runs whole
// directories of scripts through boundary adjustment.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gopcut/gopcut/internal/adjust"
	"github.com/gopcut/gopcut/internal/framelog"
	"github.com/gopcut/gopcut/internal/vdscript"
)

// ErrNoFrameLog marks a script that has no matching frame log next to it.
var ErrNoFrameLog = errors.New("no matching frame log")

// File naming conventions shared by the whole toolchain. A video
// "show.mkv" pairs with "show.mkv.vdscript", "show.mkv_frame_log.txt",
// "show.mkv_adjusted.vdscript" and "show.mkv.cutlist.txt".
const (
	ScriptSuffix   = ".vdscript"
	AdjustedSuffix = "_adjusted.vdscript"
	FrameLogSuffix = "_frame_log.txt"
	CutlistSuffix  = ".cutlist.txt"
	InfoSuffix     = "_info.txt"

	// GopReportName, VFRReportName and PartsFileName are the per-directory
	// report files.
	GopReportName = "gop_info.txt"
	VFRReportName = "VFR_info.txt"
	PartsFileName = "batch_cutlist.txt"
)

// VideoName returns the video filename a script refers to, stripping either
// script suffix.
func VideoName(script string) string {
	if strings.HasSuffix(script, AdjustedSuffix) {
		return strings.TrimSuffix(script, AdjustedSuffix)
	}
	return strings.TrimSuffix(script, ScriptSuffix)
}

// FrameLogFor returns the frame log path matching a script.
func FrameLogFor(script string) string {
	return VideoName(script) + FrameLogSuffix
}

// FrameLogForVideo returns the frame log path for a video file.
func FrameLogForVideo(video string) string {
	return video + FrameLogSuffix
}

// AdjustedFor returns the adjusted output path for a raw script.
func AdjustedFor(script string) string {
	return VideoName(script) + AdjustedSuffix
}

// CutlistFor returns the cut list path for a script or video.
func CutlistFor(script string) string {
	return VideoName(script) + CutlistSuffix
}

// VideoForCutlist returns the video path a cut list belongs to.
func VideoForCutlist(cutlist string) string {
	return strings.TrimSuffix(cutlist, CutlistSuffix)
}

// InfoFor returns the info report path for a script. The report is named
// after the full script name, so raw and adjusted scripts get distinct
// reports.
func InfoFor(script string) string {
	return strings.TrimSuffix(script, ScriptSuffix) + InfoSuffix
}

// Unit is one script with its derived file locations.
type Unit struct {
	// Script is the vdscript path
	Script string

	// FrameLog is the expected frame log path
	FrameLog string

	// Video is the video filename the script refers to
	Video string
}

func unitFor(path string) Unit {
	return Unit{
		Script:   path,
		FrameLog: FrameLogFor(path),
		Video:    filepath.Base(VideoName(path)),
	}
}

// DiscoverScripts lists the raw scripts in a directory, in name order.
// Already-adjusted scripts are left out so a rerun never adjusts its own
// output.
func DiscoverScripts(dir string) ([]Unit, error) {
	return discover(dir, func(name string) bool {
		return strings.HasSuffix(name, ScriptSuffix) && !strings.HasSuffix(name, AdjustedSuffix)
	})
}

// DiscoverAdjusted lists the adjusted scripts in a directory, in name order.
func DiscoverAdjusted(dir string) ([]Unit, error) {
	return discover(dir, func(name string) bool {
		return strings.HasSuffix(name, AdjustedSuffix)
	})
}

// DiscoverFrameLogs lists the frame logs in a directory, in name order.
func DiscoverFrameLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var logs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FrameLogSuffix) {
			continue
		}
		logs = append(logs, filepath.Join(dir, e.Name()))
	}
	return logs, nil
}

// DiscoverCutlists lists the cut lists in a directory, in name order.
func DiscoverCutlists(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var lists []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CutlistSuffix) {
			continue
		}
		lists = append(lists, filepath.Join(dir, e.Name()))
	}
	return lists, nil
}

func discover(dir string, match func(string) bool) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var units []Unit
	for _, e := range entries {
		if e.IsDir() || !match(e.Name()) {
			continue
		}
		units = append(units, unitFor(filepath.Join(dir, e.Name())))
	}
	return units, nil
}

// Result is the outcome for one script in a batch run.
type Result struct {
	// JobID identifies the job in log output
	JobID string

	// Script is the processed script path
	Script string

	// Adjusted is the written output path, empty when the script was skipped
	Adjusted string

	// Ranges is the number of ranges in the written output
	Ranges int

	// Err is the reason the script was skipped, nil on success
	Err error
}

// Runner adjusts directories of scripts with bounded parallelism. Videos are
// independent of each other, so scripts run concurrently; within one script,
// ranges keep their file order.
type Runner struct {
	adjuster *adjust.Adjuster
	jobs     int
	logger   *slog.Logger
}

// NewRunner creates a Runner. jobs caps how many scripts are processed at
// once and must be at least 1.
func NewRunner(cfg adjust.Config, jobs int, logger *slog.Logger) (*Runner, error) {
	if jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1, got %d", jobs)
	}

	adjuster, err := adjust.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Runner{
		adjuster: adjuster,
		jobs:     jobs,
		logger:   logger,
	}, nil
}

// AdjustDir adjusts every raw script in dir that has a matching frame log.
// A script that cannot be processed is reported in its Result and does not
// stop the others. The returned error covers directory-level failures and
// context cancellation only.
func (r *Runner) AdjustDir(ctx context.Context, dir string) ([]Result, error) {
	units, err := DiscoverScripts(dir)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)

	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.adjustUnit(unit)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) adjustUnit(unit Unit) Result {
	res := Result{
		JobID:  uuid.NewString(),
		Script: unit.Script,
	}
	logger := r.logger.With("job", res.JobID, "script", filepath.Base(unit.Script))

	if _, err := os.Stat(unit.FrameLog); err != nil {
		logger.Warn("skipping script", "error", ErrNoFrameLog, "framelog", unit.FrameLog)
		res.Err = fmt.Errorf("%s: %w", unit.FrameLog, ErrNoFrameLog)
		return res
	}

	ix, err := framelog.ParseFile(unit.FrameLog)
	if err != nil {
		logger.Warn("skipping script", "error", err)
		res.Err = err
		return res
	}

	script, err := vdscript.ParseFile(unit.Script)
	if err != nil {
		logger.Warn("skipping script", "error", err)
		res.Err = err
		return res
	}

	adjusted := r.adjuster.AdjustAll(script.Ranges(), ix)

	out := AdjustedFor(unit.Script)
	if err := script.WriteAdjustedFile(out, adjusted); err != nil {
		logger.Warn("skipping script", "error", err)
		res.Err = err
		return res
	}

	logger.Info("adjusted script", "output", filepath.Base(out), "ranges", len(adjusted))
	res.Adjusted = out
	res.Ranges = len(adjusted)
	return res
}
