package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cpunion/ytd/formats"
)

// Stopper is the status indicator shown while metadata is fetched.
type Stopper interface {
	Stop()
}

// Lister fetches metadata and prints the filtered format table.
type Lister struct {
	Backend Backend
	Out     io.Writer
}

// Video lists muxable video formats, best first. status is stopped before
// anything is printed and may be nil.
func (l *Lister) Video(ctx context.Context, url string, status Stopper) ([]formats.Format, error) {
	info, err := l.info(ctx, url, status, "formats")
	if err != nil {
		return nil, err
	}

	list := formats.VideoFormats(info.Formats)
	bestAudio, known := formats.BestAudioSize(info.Formats)

	formats.WriteHeader(l.Out, info)
	formats.WriteVideoTable(l.Out, list, bestAudio, known)
	l.reportEmpty(list)
	return list, nil
}

// Audio lists audio-only formats, highest bitrate first.
func (l *Lister) Audio(ctx context.Context, url string, status Stopper) ([]formats.Format, error) {
	info, err := l.info(ctx, url, status, "audio formats")
	if err != nil {
		return nil, err
	}

	list := formats.AudioFormats(info.Formats)

	formats.WriteHeader(l.Out, info)
	formats.WriteAudioTable(l.Out, list)
	l.reportEmpty(list)
	return list, nil
}

func (l *Lister) info(ctx context.Context, url string, status Stopper, what string) (*formats.Info, error) {
	info, err := l.Backend.Info(ctx, url)
	if status != nil {
		status.Stop()
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(l.Out, "\nError retrieving %s: %v\n", what, err)
		}
		return nil, &RetrievalError{URL: url, Err: err}
	}
	return info, nil
}

func (l *Lister) reportEmpty(list []formats.Format) {
	if len(list) == 0 {
		fmt.Fprintln(l.Out, "No matching formats found.")
	}
}
