// Package transcode drives the ffmpeg binary for muxing and audio
// extraction.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/cpunion/ytd/progress"
)

// Audio settings for extracted tracks.
const (
	MuxAudioCodec = "aac"
	MP3Codec      = "libmp3lame"
	MP3Bitrate    = "192k"
)

// FFmpeg wraps one ffmpeg executable.
type FFmpeg struct {
	Path string
	Log  *log.Logger
}

// New returns an FFmpeg using path, or "ffmpeg" from PATH when empty.
func New(path string, logger *log.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &FFmpeg{Path: path, Log: logger}
}

// Merge muxes a video and an audio file into output, copying the video
// stream and re-encoding audio to AAC. audio may be empty when the video
// file already carries sound.
func (f *FFmpeg) Merge(ctx context.Context, video, audio, output string, task *progress.Task) error {
	if err := f.run(ctx, MergeArgs(video, audio, output), task); err != nil {
		return fmt.Errorf("ffmpeg merge failed: %w", err)
	}
	return nil
}

// ExtractMP3 converts input to a 192 kbps MP3 at output.
func (f *FFmpeg) ExtractMP3(ctx context.Context, input, output string, task *progress.Task) error {
	if err := f.run(ctx, MP3Args(input, output), task); err != nil {
		return fmt.Errorf("ffmpeg audio conversion failed: %w", err)
	}
	return nil
}

// MergeArgs builds the ffmpeg argument list for Merge.
func MergeArgs(video, audio, output string) []string {
	args := []string{"-y", "-i", video}
	if audio != "" {
		args = append(args, "-i", audio, "-map", "0:v:0", "-map", "1:a:0")
	}
	args = append(args,
		"-c:v", "copy",
		"-c:a", MuxAudioCodec,
		"-movflags", "+faststart",
	)
	return append(progressArgs(), append(args, output)...)
}

// MP3Args builds the ffmpeg argument list for ExtractMP3.
func MP3Args(input, output string) []string {
	args := []string{
		"-y", "-i", input,
		"-vn",
		"-c:a", MP3Codec,
		"-b:a", MP3Bitrate,
		output,
	}
	return append(progressArgs(), args...)
}

func progressArgs() []string {
	return []string{"-hide_banner", "-nostats", "-loglevel", "error", "-progress", "pipe:1"}
}

func (f *FFmpeg) run(ctx context.Context, args []string, task *progress.Task) error {
	f.Log.Printf("exec: %s %s", f.Path, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, f.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	parsed := make(chan error, 1)
	go func() {
		if task == nil {
			_, err := io.Copy(io.Discard, stdout)
			parsed <- err
			return
		}
		parsed <- progress.ParseFFmpeg(stdout, task)
	}()

	// The pipe must be drained before Wait closes it.
	perr := <-parsed
	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	if perr != nil {
		f.Log.Printf("reading ffmpeg progress: %v", perr)
	}
	return nil
}

// RemoveAll deletes intermediate files, ignoring ones already gone.
func RemoveAll(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
