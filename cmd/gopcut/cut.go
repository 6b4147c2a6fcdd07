package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/cutlist"
	"github.com/gopcut/gopcut/internal/ffmpeg"
)

var (
	cutStartShift int
	cutEndShift   int
	cutFPS        float64
	cutScript     bool
	cutPlaylist   bool
)

// cutJob is one stream-copy invocation.
type cutJob struct {
	args []string
	out  string
}

// videoPlaylist collects a video's part entries for the optional m3u8.
type videoPlaylist struct {
	dir   string
	parts []cutlist.Part
}

var cutCmd = &cobra.Command{
	Use:   "cut [dir]",
	Short: "Stream-copy the cut list segments into part files",
	Long: `Execute every <video>.cutlist.txt in the directory as lossless ffmpeg
stream copies. Each video gets a subdirectory named after its stem, holding
one <stem>_part_NNN file per segment.

--start-shift and --end-shift nudge every segment by whole frames, converted
to seconds with --fps (or the cut list's own frame rate). A segment whose
shifted duration turns negative is skipped with a warning.

With --script nothing is executed; the commands are written to
run_ffmpeg_cuts.sh for inspection instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dirArg(args)

		lists, err := batch.DiscoverCutlists(dir)
		if err != nil {
			return err
		}
		if len(lists) == 0 {
			logger.Warn("no cut list files found", "dir", dir)
			return nil
		}

		shifting := cutStartShift != 0 || cutEndShift != 0

		var jobs []cutJob
		var playlists []videoPlaylist

		for _, path := range lists {
			video := batch.VideoForCutlist(path)
			if _, err := os.Stat(video); err != nil {
				logger.Warn("video not found for cut list, skipping", "cutlist", path, "video", video)
				continue
			}

			cl, err := cutlist.ParseFile(path)
			if err != nil {
				logger.Warn("skipping cut list", "path", path, "error", err)
				continue
			}
			if len(cl.Segments) == 0 {
				logger.Warn("no segments in cut list", "path", path)
				continue
			}

			fps := cutFPS
			if fps <= 0 {
				fps = cl.FPS
			}
			if shifting && fps <= 0 {
				return fmt.Errorf("--start-shift/--end-shift need --fps (cut list %s carries no frame rate)", path)
			}

			outDir := ffmpeg.PartDir(video)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			var parts []cutlist.Part
			for i, seg := range cl.Segments {
				if shifting {
					seg = seg.Shift(cutStartShift, cutEndShift, fps)
				}
				if seg.Duration < 0 {
					logger.Warn("skipping segment with negative duration", "video", video, "segment", i+1)
					continue
				}

				// Part numbers follow the segment position, so a skipped
				// segment leaves a gap instead of renumbering the rest.
				out := ffmpeg.PartPath(video, i+1)
				jobs = append(jobs, cutJob{args: ffmpeg.CutArgs(video, out, seg), out: out})
				parts = append(parts, cutlist.Part{URI: filepath.Base(out), Duration: seg.Duration})
			}

			if cutPlaylist && len(parts) > 0 {
				playlists = append(playlists, videoPlaylist{dir: outDir, parts: parts})
			}
		}

		if len(jobs) == 0 {
			logger.Warn("no cuts to run")
			return nil
		}

		if cutScript {
			if err := writeCutScript(filepath.Join(dir, "run_ffmpeg_cuts.sh"), jobs); err != nil {
				return err
			}
		} else {
			if err := runCuts(cmd, jobs); err != nil {
				return err
			}
		}

		for _, p := range playlists {
			content, err := cutlist.Playlist(p.parts)
			if err != nil {
				logger.Warn("failed to build playlist", "dir", p.dir, "error", err)
				continue
			}
			path := filepath.Join(p.dir, "playlist.m3u8")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				logger.Warn("failed to write playlist", "path", path, "error", err)
				continue
			}
			logger.Info("wrote playlist", "path", path, "parts", len(p.parts))
		}

		return nil
	},
}

func writeCutScript(path string, jobs []cutJob) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create cut script: %w", err)
	}

	argvs := make([][]string, len(jobs))
	for i, j := range jobs {
		argvs[i] = j.args
	}

	if err := ffmpeg.WriteScript(f, ffmpegBin, argvs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write cut script: %w", err)
	}

	logger.Info("wrote cut script", "path", path, "cuts", len(jobs))
	return nil
}

func runCuts(cmd *cobra.Command, jobs []cutJob) error {
	runner := ffmpeg.NewRunner(ffmpegBin, logger, verbose)
	if err := runner.Available(); err != nil {
		return err
	}

	bar := newProgressBar(len(jobs), "Cutting segments")

	done := 0
	for _, job := range jobs {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		logger.Debug("cutting", "output", job.out)
		if err := runner.Cut(cmd.Context(), job.args); err != nil {
			logger.Warn("cut failed", "output", job.out, "error", err)
			bar.Add(1)
			continue
		}
		done++
		bar.Add(1)
	}
	bar.Finish()
	fmt.Println()

	logger.Info("cutting complete", "cuts", len(jobs), "succeeded", done)
	return nil
}

func init() {
	cutCmd.Flags().IntVar(&cutStartShift, "start-shift", 0, "Frames to shift each segment start forward by")
	cutCmd.Flags().IntVar(&cutEndShift, "end-shift", 0, "Frames to shift each segment end forward by")
	cutCmd.Flags().Float64Var(&cutFPS, "fps", 0, "Frame rate for converting shifts to seconds (default: the cut list header)")
	cutCmd.Flags().BoolVar(&cutScript, "script", false, "Write run_ffmpeg_cuts.sh instead of running the cuts")
	cutCmd.Flags().BoolVar(&cutPlaylist, "playlist", false, "Write a VOD playlist.m3u8 next to each video's parts")

	rootCmd.AddCommand(cutCmd)
}
