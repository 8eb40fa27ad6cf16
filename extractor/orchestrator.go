package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Orchestrator runs one download into Dir and reports the outcome.
type Orchestrator struct {
	Backend Backend
	Dir     string
	Out     io.Writer
}

// Video downloads formatID merged with the best audio track.
func (o *Orchestrator) Video(ctx context.Context, url, formatID string) error {
	return o.download(ctx, url, formatID, false)
}

// Audio downloads formatID and converts it to MP3.
func (o *Orchestrator) Audio(ctx context.Context, url, formatID string) error {
	return o.download(ctx, url, formatID, true)
}

func (o *Orchestrator) download(ctx context.Context, url, formatID string, audio bool) error {
	label, done, failed := "format", "Download complete!", "Download failed"
	if audio {
		label, done, failed = "audio format", "Audio download complete!", "Audio download failed"
	}

	fail := func(err error) error {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(o.Out, "\n%s: %v\n", color.RedString(failed), err)
		}
		return &DownloadError{FormatID: formatID, Audio: audio, Err: err}
	}

	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fail(err)
	}

	fmt.Fprintf(o.Out, "\nDownloading %s %s to: %s\n", label, formatID, o.Dir)

	req := Request{URL: url, FormatID: formatID, Dir: o.Dir}
	var err error
	if audio {
		err = o.Backend.DownloadAudio(ctx, req)
	} else {
		err = o.Backend.DownloadVideo(ctx, req)
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return fail(err)
	}

	fmt.Fprintf(o.Out, "\n%s\n", color.GreenString(done))
	return nil
}
