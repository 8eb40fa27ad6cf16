// Package extractor resolves content URLs into format lists and performs
// downloads through a pluggable backend.
package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cpunion/ytd/formats"
)

// OutputTemplate names downloaded files after the content title.
const OutputTemplate = "%(title)s.%(ext)s"

// Fixed output settings.
const (
	MergeFormat  = "mp4"
	AudioFormat  = "mp3"
	AudioQuality = "192"
)

// Backend is the extraction collaborator.
type Backend interface {
	Name() string
	Info(ctx context.Context, url string) (*formats.Info, error)
	// DownloadVideo fetches the format plus the best audio and muxes them.
	DownloadVideo(ctx context.Context, req Request) error
	// DownloadAudio fetches an audio-only format and converts it to MP3.
	DownloadAudio(ctx context.Context, req Request) error
}

// Request identifies one download.
type Request struct {
	URL      string
	FormatID string
	Dir      string
}

// RetrievalError is a failed metadata query.
type RetrievalError struct {
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve formats for %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// DownloadError is a failed fetch, mux or transcode.
type DownloadError struct {
	FormatID string
	Audio    bool
	Err      error
}

func (e *DownloadError) Error() string {
	kind := "format"
	if e.Audio {
		kind = "audio format"
	}
	return fmt.Sprintf("download %s %s: %v", kind, e.FormatID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

const maxFilenameBytes = 200

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

func makeSafeFilename(filename string) string {
	safe := unsafeChars.ReplaceAllString(filename, "_")

	safe = strings.TrimSpace(safe)

	if safe == "" {
		safe = "video"
	}

	if len(safe) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(safe[cut]) {
			cut--
		}
		safe = safe[:cut]
	}

	return safe
}
