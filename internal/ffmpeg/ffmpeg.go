// Package ffmpeg invokes the external ffmpeg binary for frame log extraction
// and stream-copy cutting.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/gopcut/gopcut/internal/timecode"
)

// DefaultBinary is used when no ffmpeg path is configured.
const DefaultBinary = "ffmpeg"

// Runner executes ffmpeg. The subprocess's stderr goes through an hclog
// logger so its output is either silenced or interleaved with the
// application's own logging, never dumped raw on the terminal.
type Runner struct {
	bin    string
	logger *slog.Logger
	hc     hclog.Logger
}

// NewRunner creates a Runner for the given binary path (empty means
// DefaultBinary on PATH). With verbose set, ffmpeg's own diagnostics are
// logged at debug level; otherwise they are dropped.
func NewRunner(bin string, logger *slog.Logger, verbose bool) *Runner {
	if bin == "" {
		bin = DefaultBinary
	}

	level := hclog.Off
	if verbose {
		level = hclog.Debug
	}

	return &Runner{
		bin:    bin,
		logger: logger,
		hc: hclog.New(&hclog.LoggerOptions{
			Name:   "ffmpeg",
			Level:  level,
			Output: os.Stderr,
		}),
	}
}

// Available reports whether the configured binary can be found.
func (r *Runner) Available() error {
	if _, err := exec.LookPath(r.bin); err != nil {
		return fmt.Errorf("ffmpeg not available: %w", err)
	}
	return nil
}

// ExtractArgs builds the argument list that produces a showinfo frame log on
// stderr: video only (audio stripped), decoded to the null muxer.
func ExtractArgs(video string) []string {
	return []string{
		"-nostdin",
		"-i", video,
		"-an",
		"-vf", "showinfo",
		"-f", "null", "-",
	}
}

// ExtractFrameLog runs ffmpeg's showinfo filter over the video and writes
// every stderr line to logPath. The resulting file is the frame log the rest
// of the toolchain consumes. Non-showinfo diagnostics are also forwarded to
// the runner's debug logging.
func (r *Runner) ExtractFrameLog(ctx context.Context, video, logPath string) error {
	out, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create frame log: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.bin, ExtractArgs(video)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}
	cmd.Stdout = io.Discard

	r.logger.Debug("extracting frame log", "video", video, "log", logPath)

	if err := cmd.Start(); err != nil {
		out.Close()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var writeErr error
	for scanner.Scan() {
		line := scanner.Text()
		if _, err := fmt.Fprintln(out, line); err != nil && writeErr == nil {
			writeErr = err
		}
		if !strings.Contains(line, "Parsed_showinfo") {
			r.hc.Debug(line)
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	closeErr := out.Close()

	switch {
	case waitErr != nil:
		return fmt.Errorf("ffmpeg showinfo run failed: %w", waitErr)
	case scanErr != nil:
		return fmt.Errorf("failed to read ffmpeg output: %w", scanErr)
	case writeErr != nil:
		return fmt.Errorf("failed to write frame log: %w", writeErr)
	case closeErr != nil:
		return fmt.Errorf("failed to close frame log: %w", closeErr)
	}
	return nil
}

// CutArgs builds the stream-copy cut argument list for one segment. -ss
// before -i keeps the output playable, -c copy avoids any re-encode, and
// -avoid_negative_ts make_zero keeps container timestamps sane at the cut
// point.
func CutArgs(in, out string, seg timecode.Segment) []string {
	return []string{
		"-nostdin",
		"-ss", fmt.Sprintf("%.6f", seg.Start),
		"-i", in,
		"-t", fmt.Sprintf("%.6f", seg.Duration),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-y", out,
	}
}

// Cut runs one prepared cut command.
func (r *Runner) Cut(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = r.hc.StandardWriter(&hclog.StandardLoggerOptions{
		ForceLevel: hclog.Debug,
	})

	r.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg cut failed: %w", err)
	}
	return nil
}

// PartDir returns the output directory for a video's cut parts: a sibling
// directory named after the video's stem.
func PartDir(video string) string {
	base := filepath.Base(video)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(video), stem)
}

// PartPath returns the output path for one cut part. index is 1-based; the
// file keeps the video's extension and lands in PartDir.
func PartPath(video string, index int) string {
	base := filepath.Base(video)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(PartDir(video), fmt.Sprintf("%s_part_%03d%s", stem, index, ext))
}

// WriteScript renders the cut commands as a shell script for users who want
// to inspect or edit the commands before running them. Every command ends
// with "|| true" so a cut that reports a non-fatal error does not stop the
// remaining cuts.
func WriteScript(w io.Writer, bin string, argvs [][]string) error {
	if bin == "" {
		bin = DefaultBinary
	}

	if _, err := fmt.Fprint(w, "#!/bin/sh\n# Lossless stream-copy cuts.\n\n"); err != nil {
		return err
	}

	for _, args := range argvs {
		parts := make([]string, 0, len(args)+1)
		parts = append(parts, shellQuote(bin))
		for _, a := range args {
			parts = append(parts, shellQuote(a))
		}
		if _, err := fmt.Fprintf(w, "%s || true\n", strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()`*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
