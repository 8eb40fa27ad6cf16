// Package deps locates and installs the external tools ytd drives: the
// yt-dlp extractor and the ffmpeg transcoder.
package deps

import (
	"fmt"
	"os"
	"os/exec"
)

// Tool names as they appear on PATH.
const (
	ToolYtdlp  = "yt-dlp"
	ToolFFmpeg = "ffmpeg"
)

var lookPath = exec.LookPath

// MissingDependencyError reports a required tool that could not be found.
type MissingDependencyError struct {
	Tool   string
	Remedy string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s is not installed or not in PATH", e.Tool)
}

// Tools holds resolved executable paths. Empty means not required.
type Tools struct {
	Extractor string
	FFmpeg    string
}

// FindExtractor returns the configured extractor if usable, else yt-dlp or
// youtube-dl from PATH.
func FindExtractor(configured string) (string, error) {
	if p, ok := resolve(configured); ok {
		return p, nil
	}
	for _, name := range []string{ToolYtdlp, "youtube-dl"} {
		if p, err := lookPath(name); err == nil {
			return p, nil
		}
	}
	return "", &MissingDependencyError{Tool: ToolYtdlp, Remedy: remedy(ToolYtdlp)}
}

// FindFFmpeg returns the configured ffmpeg if usable, else ffmpeg from PATH.
func FindFFmpeg(configured string) (string, error) {
	if p, ok := resolve(configured); ok {
		return p, nil
	}
	if p, err := lookPath(ToolFFmpeg); err == nil {
		return p, nil
	}
	return "", &MissingDependencyError{Tool: ToolFFmpeg, Remedy: remedy(ToolFFmpeg)}
}

// Check resolves what the given backend needs. The native backend only
// shells out to ffmpeg.
func Check(native bool, ytdlpPath, ffmpegPath string) (Tools, error) {
	var tools Tools
	var err error
	if !native {
		if tools.Extractor, err = FindExtractor(ytdlpPath); err != nil {
			return Tools{}, err
		}
	}
	if tools.FFmpeg, err = FindFFmpeg(ffmpegPath); err != nil {
		return Tools{}, err
	}
	return tools, nil
}

func resolve(configured string) (string, bool) {
	if configured == "" {
		return "", false
	}
	if fi, err := os.Stat(configured); err == nil && !fi.IsDir() {
		return configured, true
	}
	if p, err := lookPath(configured); err == nil {
		return p, true
	}
	return "", false
}

func remedy(tool string) string {
	switch tool {
	case ToolYtdlp:
		return "Install it with:\n" +
			"  ytd deps install\n" +
			"or manually:\n" +
			"  pip install yt-dlp"
	default:
		return "Install it with:\n" +
			"  ytd deps install\n" +
			"or manually:\n" +
			"  Download from: https://ffmpeg.org/download.html\n" +
			"  Or use: winget install ffmpeg | brew install ffmpeg | sudo apt install ffmpeg"
	}
}
