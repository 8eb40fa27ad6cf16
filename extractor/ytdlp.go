package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/cpunion/ytd/formats"
	"github.com/cpunion/ytd/progress"
)

const progressInterval = 200 * time.Millisecond

// Ytdlp drives an external yt-dlp executable.
type Ytdlp struct {
	// Executable overrides the yt-dlp found on PATH.
	Executable string
	// FFmpeg is passed as --ffmpeg-location when set.
	FFmpeg string
	Out    io.Writer
	Log    *log.Logger
}

func NewYtdlp(executable, ffmpeg string, out io.Writer, logger *log.Logger) *Ytdlp {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Ytdlp{Executable: executable, FFmpeg: ffmpeg, Out: out, Log: logger}
}

func (y *Ytdlp) Name() string { return "ytdlp" }

func (y *Ytdlp) command() *ytdlp.Command {
	dl := ytdlp.New().NoWarnings().NoPlaylist()
	if y.Executable != "" {
		dl = dl.SetExecutable(y.Executable)
	}
	return dl
}

func (y *Ytdlp) Info(ctx context.Context, url string) (*formats.Info, error) {
	res, err := y.command().Quiet().SkipDownload().PrintJSON().Run(ctx, url)
	if err != nil {
		return nil, runError(res, err)
	}
	return ParseInfo([]byte(res.Stdout))
}

func (y *Ytdlp) DownloadVideo(ctx context.Context, req Request) error {
	dl := y.command().
		Output(filepath.Join(req.Dir, OutputTemplate)).
		Format(req.FormatID + "+bestaudio/best").
		MergeOutputFormat(MergeFormat)
	return y.run(ctx, dl, req.URL, "Downloading", "--postprocessor-args", "Merger+ffmpeg_o:-c:v copy -c:a aac")
}

func (y *Ytdlp) DownloadAudio(ctx context.Context, req Request) error {
	dl := y.command().
		Output(filepath.Join(req.Dir, OutputTemplate)).
		Format(req.FormatID).
		ExtractAudio().
		AudioFormat(AudioFormat).
		AudioQuality(AudioQuality)
	return y.run(ctx, dl, req.URL, "Downloading audio")
}

func (y *Ytdlp) run(ctx context.Context, dl *ytdlp.Command, url, label string, extra ...string) error {
	task := progress.NewTask(y.Out, label, 0, progress.Bytes)
	dl.ProgressFunc(progressInterval, func(u ytdlp.ProgressUpdate) {
		task.Update(int64(u.DownloadedBytes), int64(u.TotalBytes))
	})

	args := extra
	if y.FFmpeg != "" {
		args = append(args, "--ffmpeg-location", y.FFmpeg)
	}
	args = append(args, url)
	y.Log.Printf("yt-dlp %s", strings.Join(args, " "))

	res, err := dl.Run(ctx, args...)
	task.Finish()
	if err != nil {
		return runError(res, err)
	}
	return nil
}

// runError adds the last line yt-dlp wrote to stderr, which is where it
// reports the actual failure.
func runError(res *ytdlp.Result, err error) error {
	if errors.Is(err, context.Canceled) || res == nil {
		return err
	}
	lines := strings.Split(strings.TrimSpace(res.Stderr), "\n")
	if msg := strings.TrimSpace(lines[len(lines)-1]); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

type ytdlpInfo struct {
	ID       string        `json:"id"`
	Title    *string       `json:"title"`
	Duration *float64      `json:"duration"`
	Formats  []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID   string   `json:"format_id"`
	Ext        *string  `json:"ext"`
	FormatNote *string  `json:"format_note"`
	VCodec     *string  `json:"vcodec"`
	ACodec     *string  `json:"acodec"`
	Height     *float64 `json:"height"`
	FPS        *float64 `json:"fps"`
	ABR        *float64 `json:"abr"`
	FileSize   *float64 `json:"filesize"`
}

// ParseInfo decodes the JSON document yt-dlp prints for one video. Fields
// that are null or missing stay at their zero value.
func ParseInfo(data []byte) (*formats.Info, error) {
	var raw ytdlpInfo
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	info := &formats.Info{
		ID:      raw.ID,
		Title:   deref(raw.Title),
		Formats: make([]formats.Format, 0, len(raw.Formats)),
	}
	if raw.Duration != nil && *raw.Duration > 0 {
		info.Duration = time.Duration(*raw.Duration * float64(time.Second))
	}

	for _, f := range raw.Formats {
		info.Formats = append(info.Formats, formats.Format{
			ID:     f.FormatID,
			Ext:    deref(f.Ext),
			Note:   deref(f.FormatNote),
			VCodec: deref(f.VCodec),
			ACodec: deref(f.ACodec),
			Height: int(derefFloat(f.Height)),
			FPS:    derefFloat(f.FPS),
			ABR:    derefFloat(f.ABR),
			Size:   int64(derefFloat(f.FileSize)),
		})
	}
	return info, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
