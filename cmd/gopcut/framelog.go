package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/ffmpeg"
)

// videoExtensions lists the container formats frame logs are extracted for
// when scanning a directory.
var videoExtensions = map[string]bool{
	".avi":  true,
	".flv":  true,
	".m4v":  true,
	".mkv":  true,
	".mov":  true,
	".mp4":  true,
	".mpeg": true,
	".mpg":  true,
	".ts":   true,
	".webm": true,
	".wmv":  true,
}

var framelogCmd = &cobra.Command{
	Use:   "framelog [dir|videos...]",
	Short: "Extract showinfo frame logs from videos",
	Long: `Run ffmpeg's showinfo filter over each video and capture its stderr as
<video>_frame_log.txt. The log records every frame's picture type and
timestamp and is the input for all other commands.

Videos that already have a frame log are skipped; delete the log to extract
it again. This decodes the whole video, so expect it to take a while.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		videos, err := resolveVideos(args)
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			logger.Warn("no video files found")
			return nil
		}

		runner := ffmpeg.NewRunner(ffmpegBin, logger, verbose)
		if err := runner.Available(); err != nil {
			return err
		}

		bar := newProgressBar(len(videos), "Extracting frame logs")

		extracted := 0
		for _, video := range videos {
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			logPath := batch.FrameLogForVideo(video)
			if _, err := os.Stat(logPath); err == nil {
				logger.Info("frame log exists, skipping", "video", video)
				bar.Add(1)
				continue
			}

			logger.Debug("extracting frame log", "video", video)
			if err := runner.ExtractFrameLog(cmd.Context(), video, logPath); err != nil {
				logger.Warn("failed to extract frame log", "video", video, "error", err)
				bar.Add(1)
				continue
			}
			extracted++
			bar.Add(1)
		}
		bar.Finish()
		fmt.Println()

		logger.Info("frame log extraction complete", "videos", len(videos), "extracted", extracted)
		return nil
	},
}

// resolveVideos turns the argument list into video paths: no arguments scans
// the current directory, a single directory argument scans that directory,
// anything else is taken as explicit video files.
func resolveVideos(args []string) ([]string, error) {
	if len(args) == 0 {
		return scanVideos(".")
	}

	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return scanVideos(args[0])
		}
	}

	for _, v := range args {
		if _, err := os.Stat(v); err != nil {
			return nil, fmt.Errorf("failed to open video: %w", err)
		}
	}
	return args, nil
}

func scanVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var videos []string
	for _, e := range entries {
		if e.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		videos = append(videos, filepath.Join(dir, e.Name()))
	}
	return videos, nil
}

func newProgressBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func init() {
	rootCmd.AddCommand(framelogCmd)
}
