package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/framelog"
)

var vfrCmd = &cobra.Command{
	Use:   "vfr [dir]",
	Short: "Detect variable frame rate videos from their frame logs",
	Long: `Classify every frame log in the directory as constant or variable frame
rate by counting its distinct frame durations, and write the findings to
VFR_info.txt. Duration-based cut lists are only exact for constant rate
videos; for VFR videos generate cut lists without --fps so durations are
measured from the log.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)

		logs, err := batch.DiscoverFrameLogs(dir)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			logger.Warn("no frame logs found", "dir", dir)
			return nil
		}

		var entries []framelog.VFREntry
		for _, path := range logs {
			res, err := framelog.DetectVFRFile(path)
			if err != nil {
				logger.Warn("skipping log", "path", path, "error", err)
				continue
			}
			entries = append(entries, framelog.VFREntry{
				Name:   filepath.Base(path),
				Result: res,
			})
		}
		if len(entries) == 0 {
			logger.Warn("no frame logs scanned")
			return nil
		}

		out := filepath.Join(dir, batch.VFRReportName)
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := framelog.WriteVFRReport(f, entries); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		logger.Info("wrote VFR report", "path", out, "logs", len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vfrCmd)
}
