package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/cutlist"
	"github.com/gopcut/gopcut/internal/vdscript"
)

var partsJoin bool

var partsCmd = &cobra.Command{
	Use:   "parts [dir]",
	Short: "Render adjusted selections as mkvmerge split parts",
	Long: `Translate every adjusted vdscript in the directory into an mkvmerge
--split parts:frames expression and collect them in batch_cutlist.txt.
Parts use inclusive start-end frame pairs; with --join every part after
the first gets a + prefix, which makes mkvmerge append the parts into a
single output file.`,
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

		var entries []cutlist.BatchEntry
		for _, unit := range units {
			script, err := vdscript.ParseFile(unit.Script)
			if err != nil {
				logger.Warn("skipping script", "script", unit.Script, "error", err)
				continue
			}
			entries = append(entries, cutlist.BatchEntry{
				Name:   filepath.Base(unit.Script),
				Ranges: script.Ranges(),
			})
		}
		if len(entries) == 0 {
			logger.Warn("no scripts parsed")
			return nil
		}

		out := filepath.Join(dir, batch.PartsFileName)
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create parts file: %w", err)
		}
		if err := cutlist.WriteBatch(f, entries, partsJoin); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write parts file: %w", err)
		}

		logger.Info("wrote mkvmerge parts", "path", out, "scripts", len(entries))
		return nil
	},
}

func init() {
	partsCmd.Flags().BoolVar(&partsJoin, "join", false, "Prefix parts with + so mkvmerge appends them into one file")
	rootCmd.AddCommand(partsCmd)
}
