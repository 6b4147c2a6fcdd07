package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/framelog"
	"github.com/gopcut/gopcut/internal/gop"
	"github.com/gopcut/gopcut/internal/vdscript"
)

var gopinfoScript string

var gopinfoCmd = &cobra.Command{
	Use:   "gopinfo [dir]",
	Short: "Report the starting GOP size of every adjusted range",
	Long: `Measure how many frames each adjusted range keeps before its first
following I frame and write the results to gop_info.txt. The smallest value
is the least tolerance any cut has for tools that drop the first GOP of a
segment, such as LosslessCut project conversion.

By default every adjusted script in the directory goes into one combined
report; --script analyzes a single vdscript instead.

Run this on adjusted scripts; raw selections have no boundary guarantees to
measure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if gopinfoScript != "" {
			return runGopinfoScript(gopinfoScript)
		}

		dir := dirArg(args)

		units, err := batch.DiscoverAdjusted(dir)
		if err != nil {
			return err
		}
		if len(units) == 0 {
			logger.Warn("no adjusted vdscript files found", "dir", dir)
			return nil
		}

		var entries []gop.BatchEntry
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

			entries = append(entries, gop.BatchEntry{
				Name:   filepath.Base(unit.Script),
				Report: gop.Analyze(script.Ranges(), ix),
			})
		}
		if len(entries) == 0 {
			logger.Warn("no scripts analyzed")
			return nil
		}

		out := filepath.Join(dir, batch.GopReportName)
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := gop.WriteBatchReport(f, entries); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		logger.Info("wrote GOP report", "path", out, "scripts", len(entries))
		return nil
	},
}

// runGopinfoScript writes a single-script report next to the script.
func runGopinfoScript(path string) error {
	ix, err := framelog.ParseFile(batch.FrameLogFor(path))
	if err != nil {
		return err
	}
	script, err := vdscript.ParseFile(path)
	if err != nil {
		return err
	}

	rep := gop.Analyze(script.Ranges(), ix)

	out := filepath.Join(filepath.Dir(path), batch.GopReportName)
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := gop.WriteReport(f, rep); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info("wrote GOP report", "path", out, "ranges", len(rep.Sizes), "smallest", rep.Smallest)
	return nil
}

func init() {
	gopinfoCmd.Flags().StringVar(&gopinfoScript, "script", "", "Analyze a single vdscript instead of the whole directory")
	rootCmd.AddCommand(gopinfoCmd)
}
