package extractor

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/cpunion/ytd/formats"
	"github.com/cpunion/ytd/progress"
	"github.com/cpunion/ytd/transcode"
)

// Native talks to YouTube directly and muxes with ffmpeg. It writes
// <title>_video.<ext> and <title>_audio.<ext> next to the final file and
// removes them once the output is complete.
type Native struct {
	Client *youtube.Client
	FFmpeg *transcode.FFmpeg
	Out    io.Writer
	Log    *log.Logger
}

func NewNative(ffmpeg *transcode.FFmpeg, out io.Writer, logger *log.Logger) *Native {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Native{
		Client: &youtube.Client{},
		FFmpeg: ffmpeg,
		Out:    out,
		Log:    logger,
	}
}

func (n *Native) Name() string { return "native" }

func (n *Native) Info(ctx context.Context, url string) (*formats.Info, error) {
	video, err := n.Client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}
	return videoInfo(video), nil
}

func (n *Native) DownloadVideo(ctx context.Context, req Request) error {
	video, err := n.Client.GetVideoContext(ctx, req.URL)
	if err != nil {
		return fmt.Errorf("failed to get video info: %w", err)
	}
	videoFormat, err := findFormat(video.Formats, req.FormatID)
	if err != nil {
		return err
	}

	base := filepath.Join(req.Dir, makeSafeFilename(video.Title))
	videoFilename := base + "_video." + extension(videoFormat.MimeType)
	if err := n.fetch(ctx, video, videoFormat, videoFilename, "Video"); err != nil {
		return err
	}

	var audioFilename string
	if videoFormat.AudioChannels == 0 {
		if audioFormat := bestAudio(video.Formats); audioFormat != nil {
			audioFilename = base + "_audio." + extension(audioFormat.MimeType)
			if err := n.fetch(ctx, video, audioFormat, audioFilename, "Audio"); err != nil {
				return err
			}
		}
	}

	outputFilename := base + "." + MergeFormat
	fmt.Fprintln(n.Out, "\nMerging video and audio...")
	task := progress.NewTask(n.Out, "Merging", int64(video.Duration), progress.Media)
	err = n.FFmpeg.Merge(ctx, videoFilename, audioFilename, outputFilename, task)
	task.Finish()
	if err != nil {
		return err
	}

	transcode.RemoveAll(videoFilename, audioFilename)
	n.Log.Printf("wrote %s", outputFilename)
	return nil
}

func (n *Native) DownloadAudio(ctx context.Context, req Request) error {
	video, err := n.Client.GetVideoContext(ctx, req.URL)
	if err != nil {
		return fmt.Errorf("failed to get video info: %w", err)
	}
	audioFormat, err := findFormat(video.Formats, req.FormatID)
	if err != nil {
		return err
	}

	base := filepath.Join(req.Dir, makeSafeFilename(video.Title))
	audioFilename := base + "_audio." + extension(audioFormat.MimeType)
	if err := n.fetch(ctx, video, audioFormat, audioFilename, "Audio"); err != nil {
		return err
	}

	outputFilename := base + "." + AudioFormat
	task := progress.NewTask(n.Out, "Converting", int64(video.Duration), progress.Media)
	err = n.FFmpeg.ExtractMP3(ctx, audioFilename, outputFilename, task)
	task.Finish()
	if err != nil {
		return err
	}

	transcode.RemoveAll(audioFilename)
	n.Log.Printf("wrote %s", outputFilename)
	return nil
}

func (n *Native) fetch(ctx context.Context, video *youtube.Video, format *youtube.Format, filename, label string) error {
	exists, err := checkFileExists(filename, format.ContentLength)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintf(n.Out, "%s file already exists and has correct size. Skipping download.\n", label)
		return nil
	}

	stream, size, err := n.Client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	task := progress.NewTask(n.Out, label, size, progress.Bytes)
	_, err = io.Copy(file, task.Reader(stream))
	task.Finish()
	if err != nil {
		return fmt.Errorf("failed to save stream: %w", err)
	}
	return nil
}

// checkFileExists reports whether filename is present with expectedSize
// bytes. An unknown size never matches.
func checkFileExists(filename string, expectedSize int64) (bool, error) {
	if expectedSize <= 0 {
		return false, nil
	}
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Size() == expectedSize, nil
}

func findFormat(list youtube.FormatList, id string) (*youtube.Format, error) {
	itag, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid format id %q", id)
	}
	for i := range list {
		if list[i].ItagNo == itag {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("format %s not available", id)
}

func bestAudio(list youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range list {
		f := &list[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || audioBitrate(f) > audioBitrate(best) {
			best = f
		}
	}
	return best
}

func audioBitrate(f *youtube.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

func videoInfo(v *youtube.Video) *formats.Info {
	info := &formats.Info{
		ID:       v.ID,
		Title:    v.Title,
		Duration: v.Duration,
		Formats:  make([]formats.Format, 0, len(v.Formats)),
	}
	for i := range v.Formats {
		info.Formats = append(info.Formats, fromYouTube(&v.Formats[i]))
	}
	return info
}

func fromYouTube(f *youtube.Format) formats.Format {
	kind, codecs := parseMimeType(f.MimeType)
	out := formats.Format{
		ID:     strconv.Itoa(f.ItagNo),
		Ext:    extension(f.MimeType),
		Note:   f.QualityLabel,
		Height: f.Height,
		FPS:    float64(f.FPS),
		Size:   f.ContentLength,
	}

	switch kind {
	case "audio":
		out.VCodec = formats.CodecNone
		if len(codecs) > 0 {
			out.ACodec = codecs[0]
		}
		out.ABR = float64(audioBitrate(f)) / 1000
		out.Note = ""
	case "video":
		if len(codecs) > 0 {
			out.VCodec = codecs[0]
		}
		switch {
		case len(codecs) > 1:
			out.ACodec = codecs[1]
		case f.AudioChannels == 0:
			out.ACodec = formats.CodecNone
		}
	}
	return out
}

// parseMimeType splits `video/mp4; codecs="avc1.4d401f, mp4a.40.2"`.
func parseMimeType(mimeType string) (kind string, codecs []string) {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", nil
	}
	kind, _, _ = strings.Cut(mediaType, "/")
	for _, c := range strings.Split(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}
	return kind, codecs
}

func extension(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "mp4"
	}
	switch mediaType {
	case "audio/mp4":
		return "m4a"
	case "video/3gpp":
		return "3gp"
	}
	_, sub, _ := strings.Cut(mediaType, "/")
	if sub == "" {
		return "mp4"
	}
	return sub
}
