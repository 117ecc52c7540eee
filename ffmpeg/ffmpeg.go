// Package ffmpeg joins and measures audio files with the ffmpeg and ffprobe
// command line tools.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/speakloud"
)

var (
	_ speakloud.Concatenator   = (*Concatenator)(nil)
	_ speakloud.DurationProber = (*Prober)(nil)
)

// Concatenator merges segments with the ffmpeg concat demuxer, copying
// streams without re-encoding.
type Concatenator struct {
	// Bin is the ffmpeg executable. Defaults to "ffmpeg" on PATH.
	Bin string
}

// NewConcatenator creates a Concatenator using ffmpeg from PATH.
func NewConcatenator() *Concatenator {
	return &Concatenator{Bin: "ffmpeg"}
}

// Concat writes segments, sorted by index, into out.
func (c *Concatenator) Concat(ctx context.Context, segments []speakloud.Segment, out string) error {
	if len(segments) == 0 {
		return speakloud.Errorf(speakloud.ESYNTHESIS, "no segments to concatenate")
	}

	ordered := make([]speakloud.Segment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	listPath := filepath.Join(filepath.Dir(out), "concat.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(ordered)), 0o600); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", out}
	if _, err := run(ctx, c.Bin, args...); err != nil {
		return err
	}
	return nil
}

// ConcatList renders the concat demuxer input file for segments.
func ConcatList(segments []speakloud.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		// Single quotes inside a quoted path are written as '\''.
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(s.Path, "'", `'\''`))
	}
	return b.String()
}

// Prober reads audio durations with ffprobe.
type Prober struct {
	// Bin is the ffprobe executable. Defaults to "ffprobe" on PATH.
	Bin string
}

// NewProber creates a Prober using ffprobe from PATH.
func NewProber() *Prober {
	return &Prober{Bin: "ffprobe"}
}

// Duration returns the container duration of path in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := run(ctx, p.Bin, "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, speakloud.Errorf(speakloud.ESYNTHESIS, "parse duration %q: %v", strings.TrimSpace(out), err)
	}
	return d, nil
}

func run(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", speakloud.Errorf(speakloud.ESYNTHESIS, "%s cancelled: %v", filepath.Base(bin), ctx.Err())
	}
	if err != nil {
		return "", speakloud.Errorf(speakloud.ESYNTHESIS, "%s failed: %v: %s", filepath.Base(bin), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
