package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gopcut/gopcut/internal/preview"
)

var previewPort int

var previewCmd = &cobra.Command{
	Use:   "preview <dir>",
	Short: "Serve a directory of cut parts for playback",
	Long: `Serve a video's part directory over HTTP as an HLS VOD playlist so the
finished edit can be auditioned in any HLS-capable player. Part durations
are read from the video's cut list when one is found next to the parts or
one directory up.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := preview.New(args[0], previewPort, logger)
		if err != nil {
			return err
		}

		logger.Info("preview ready",
			"url", fmt.Sprintf("http://localhost:%d/playlist.m3u8", previewPort),
			"health", fmt.Sprintf("http://localhost:%d/health", previewPort),
		)

		return srv.Start(cmd.Context())
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewPort, "port", 8080, "HTTP server port")

	rootCmd.AddCommand(previewCmd)
}
