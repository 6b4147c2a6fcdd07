package main

import (
	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/cutlist"
	"github.com/gopcut/gopcut/internal/framelog"
	"github.com/gopcut/gopcut/internal/timecode"
	"github.com/gopcut/gopcut/internal/vdscript"
)

var cutlistFPS float64

var cutlistCmd = &cobra.Command{
	Use:   "cutlist [dir]",
	Short: "Translate adjusted selections into timecode cut lists",
	Long: `For every <video>_adjusted.vdscript with a matching frame log, write
<video>.cutlist.txt: one start_time/duration pair per selected range, the
format the cut command consumes.

Start times always come from the frame log's timestamps. Durations are
measured from the log too, which stays exact for variable frame rate videos;
pass --fps to compute them as length/fps instead when you know the exact
constant rate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)

		units, err := batch.DiscoverAdjusted(dir)
		if err != nil {
			return err
		}
		if len(units) == 0 {
			logger.Warn("no adjusted vdscript files found", "dir", dir)
			return nil
		}

		written := 0
		for _, unit := range units {
			ix, err := framelog.ParseFile(unit.FrameLog)
			if err != nil {
				logger.Warn("skipping script", "script", unit.Script, "error", err)
				continue
			}

			script, err := vdscript.ParseFile(unit.Script)
			if err != nil {
				logger.Warn("skipping script", "script", unit.Script, "error", err)
				continue
			}

			ranges := script.Ranges()
			if len(ranges) == 0 {
				logger.Warn("no selections in script", "script", unit.Script)
				continue
			}

			cl := cutlist.Cutlist{FPS: cutlistFPS}
			for _, r := range ranges {
				var seg timecode.Segment
				var segErr error
				if cutlistFPS > 0 {
					seg, segErr = timecode.ForRangeAtRate(r, ix, cutlistFPS)
				} else {
					seg, segErr = timecode.ForRange(r, ix)
				}
				if segErr != nil {
					logger.Warn("skipping segment",
						"script", unit.Script,
						"startFrame", r.Start,
						"error", segErr,
					)
					continue
				}
				cl.Segments = append(cl.Segments, seg)
			}
			if len(cl.Segments) == 0 {
				logger.Warn("no segments generated", "script", unit.Script)
				continue
			}

			out := batch.CutlistFor(unit.Script)
			if err := cutlist.WriteFile(out, cl); err != nil {
				logger.Warn("failed to write cut list", "path", out, "error", err)
				continue
			}
			logger.Info("wrote cut list", "path", out, "segments", len(cl.Segments))
			written++
		}

		logger.Info("cut list generation complete", "scripts", len(units), "written", written)
		return nil
	},
}

func init() {
	cutlistCmd.Flags().Float64Var(&cutlistFPS, "fps", 0, "Exact constant frame rate for duration arithmetic (default: measure from the log)")

	rootCmd.AddCommand(cutlistCmd)
}
