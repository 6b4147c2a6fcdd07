// The gopcut command adjusts video cut selections to legal GOP boundaries and
// drives lossless stream-copy cuts from them.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/ffmpeg"
)

const (
	version = "1.0.0"
)

var (
	verbose   bool
	ffmpegBin string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gopcut",
	Short: "Frame-accurate GOP boundary cutting for lossless video edits",
	Long: `gopcut snaps VirtualDub cut selections onto legal GOP boundaries so the
selected ranges survive a lossless stream-copy cut, then translates the
adjusted frames into timecode cut lists and runs the ffmpeg cuts.

A typical session, in a directory of videos and .vdscript selections:

  gopcut framelog .      extract showinfo frame logs with ffmpeg
  gopcut adjust .        snap selections to I/P frame boundaries
  gopcut cutlist .       translate adjusted frames into timecodes
  gopcut cut .           stream-copy the segments into part files
  gopcut preview <dir>   audition the parts in an HLS player`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}

		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&ffmpegBin, "ffmpeg", ffmpeg.DefaultBinary, "Path to the ffmpeg binary")
}

// dirArg resolves the optional directory argument most subcommands take.
func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
