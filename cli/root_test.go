package cli

import (
	"io"
	"log"
	"testing"

	"github.com/cpunion/ytd/config"
	"github.com/cpunion/ytd/deps"
)

func TestNewBackend(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	tools := deps.Tools{Extractor: "/usr/bin/yt-dlp", FFmpeg: "/usr/bin/ffmpeg"}

	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendYtdlp, "ytdlp"},
		{config.BackendNative, "native"},
	}
	for _, tt := range tests {
		if got := newBackend(tt.backend, tools, io.Discard, logger).Name(); got != tt.want {
			t.Errorf("newBackend(%q).Name()=%q want=%q", tt.backend, got, tt.want)
		}
	}
}
