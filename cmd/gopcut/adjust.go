package main

import (
	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/adjust"
	"github.com/gopcut/gopcut/internal/batch"
)

var (
	adjustOffset   int
	adjustMerge    bool
	adjustMinGap   int
	adjustShortCut bool
	adjustJobs     int
)

var adjustCmd = &cobra.Command{
	Use:   "adjust [dir]",
	Short: "Snap vdscript selections to legal GOP boundaries",
	Long: `Adjust every .vdscript in the directory that has a matching
<video>_frame_log.txt: range starts move back to an I frame, range ends move
to a P frame, so a stream-copy cut keeps every selected frame. The result is
written next to the input as <video>_adjusted.vdscript.

By default each range is extended to the end of its closing GOP. With
--short-cut the range ends at the nearest following P or I frame instead,
trading some safety margin for a tighter cut.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)

		mode := adjust.FullGOP
		if adjustShortCut {
			mode = adjust.ShortCut
		}

		cfg := adjust.Config{
			IFrameOffset: adjustOffset,
			EndMode:      mode,
			MergeRanges:  adjustMerge,
			MinGap:       adjustMinGap,
		}

		runner, err := batch.NewRunner(cfg, adjustJobs, logger)
		if err != nil {
			return err
		}

		results, err := runner.AdjustDir(cmd.Context(), dir)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			logger.Warn("no vdscript files found", "dir", dir)
			return nil
		}

		adjusted := 0
		for _, res := range results {
			if res.Err == nil {
				adjusted++
			}
		}
		logger.Info("adjust complete",
			"scripts", len(results),
			"adjusted", adjusted,
			"skipped", len(results)-adjusted,
		)
		return nil
	},
}

func init() {
	adjustCmd.Flags().IntVar(&adjustOffset, "offset", 1, "Nth I frame at or before each range start to cut in on")
	adjustCmd.Flags().BoolVar(&adjustMerge, "merge", true, "Merge adjusted ranges closer than --min-gap frames")
	adjustCmd.Flags().IntVar(&adjustMinGap, "min-gap", 100, "Smallest frame gap kept between adjusted ranges")
	adjustCmd.Flags().BoolVar(&adjustShortCut, "short-cut", false, "End ranges at the next P/I frame instead of the end of the GOP")
	adjustCmd.Flags().IntVar(&adjustJobs, "jobs", 4, "Scripts to process in parallel")

	rootCmd.AddCommand(adjustCmd)
}
