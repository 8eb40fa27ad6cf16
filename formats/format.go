package formats

import (
	"sort"
	"time"
)

// CodecNone marks a stream kind the format does not carry.
const CodecNone = "none"

// MinVideoHeight is the lowest resolution offered in the video list.
const MinVideoHeight = 720

var videoContainers = map[string]bool{
	"mp4":  true,
	"webm": true,
}

// Format describes one selectable encoding of the remote media.
// Zero numeric fields mean the value is unknown.
type Format struct {
	ID     string
	Ext    string
	Note   string
	VCodec string
	ACodec string
	Height int
	FPS    float64
	ABR    float64 // kbps
	Size   int64
}

// Info is the metadata returned for one content URL.
type Info struct {
	ID       string
	Title    string
	Duration time.Duration
	Formats  []Format
}

// HasVideo reports whether the format carries a video stream.
// An unknown codec counts as present.
func (f Format) HasVideo() bool { return f.VCodec != CodecNone }

// HasAudio reports whether the format carries an audio stream.
func (f Format) HasAudio() bool { return f.ACodec != CodecNone }

// AudioOnly reports whether the format is a pure audio stream.
func (f Format) AudioOnly() bool { return f.HasAudio() && f.VCodec == CodecNone }

// IsVideoCandidate reports whether f belongs in the video list.
func IsVideoCandidate(f Format) bool {
	return f.HasVideo() &&
		f.Height > 0 &&
		videoContainers[f.Ext] &&
		f.Height >= MinVideoHeight &&
		f.Size > 0
}

// IsAudioCandidate reports whether f belongs in the audio list.
func IsAudioCandidate(f Format) bool {
	return f.AudioOnly() && f.Size > 0 && f.ABR > 0
}

// VideoFormats returns the video candidates, highest resolution first and
// the smaller file first at equal resolution.
func VideoFormats(all []Format) []Format {
	out := filter(all, IsVideoCandidate)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Height != out[j].Height {
			return out[i].Height > out[j].Height
		}
		return out[i].Size < out[j].Size
	})
	return out
}

// AudioFormats returns the audio candidates, highest bitrate first and the
// smaller file first at equal bitrate.
func AudioFormats(all []Format) []Format {
	out := filter(all, IsAudioCandidate)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ABR != out[j].ABR {
			return out[i].ABR > out[j].ABR
		}
		return out[i].Size < out[j].Size
	})
	return out
}

// BestAudioSize returns the size of the highest-bitrate audio-only format.
// known is false when there is no audio-only format or its size is unknown.
func BestAudioSize(all []Format) (size int64, known bool) {
	var best *Format
	for i := range all {
		f := &all[i]
		if !f.AudioOnly() {
			continue
		}
		if best == nil || betterAudio(f, best) {
			best = f
		}
	}
	if best == nil || best.Size <= 0 {
		return 0, false
	}
	return best.Size, true
}

// betterAudio orders by bitrate, then known size, then smaller size, so the
// winner does not depend on input order.
func betterAudio(a, b *Format) bool {
	if a.ABR != b.ABR {
		return a.ABR > b.ABR
	}
	if (a.Size > 0) != (b.Size > 0) {
		return a.Size > 0
	}
	return a.Size < b.Size
}

func filter(all []Format, keep func(Format) bool) []Format {
	out := make([]Format, 0, len(all))
	for _, f := range all {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
