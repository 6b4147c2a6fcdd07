package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/cutrange"
	"github.com/gopcut/gopcut/internal/frameindex"
	"github.com/gopcut/gopcut/internal/framelog"
	"github.com/gopcut/gopcut/internal/timecode"
	"github.com/gopcut/gopcut/internal/vdscript"
)

var infoCmd = &cobra.Command{
	Use:   "info [dir]",
	Short: "Write human-readable timecode reports for vdscript selections",
	Long: `For every .vdscript (raw and adjusted) with a matching frame log, write
<script>_info.txt: each selection's start and end as HH:MM:SS.mmm timecodes
taken from the log's own timestamps, with per-range and total lengths. The
timestamps stay exact for variable frame rate videos.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)

		raw, err := batch.DiscoverScripts(dir)
		if err != nil {
			return err
		}
		adjusted, err := batch.DiscoverAdjusted(dir)
		if err != nil {
			return err
		}

		units := append(raw, adjusted...)
		if len(units) == 0 {
			logger.Warn("no vdscript files found", "dir", dir)
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

			out := batch.InfoFor(unit.Script)
			if err := writeInfoReport(out, ranges, ix); err != nil {
				logger.Warn("failed to write info report", "path", out, "error", err)
				continue
			}
			logger.Info("wrote info report", "path", out, "ranges", len(ranges))
			written++
		}

		logger.Info("info reports complete", "scripts", len(units), "written", written)
		return nil
	},
}

func writeInfoReport(path string, ranges []cutrange.Range, ix *frameindex.Index) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := timecode.WriteInfo(f, ranges, ix); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
