package formats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const truncMark = "~"

const (
	videoBorder = "+----+------------+--------+----------+-----------+----------------+"
	audioBorder = "+----+-------------+----------+-----------+----------------+"
)

var (
	videoWidths = []int{10, 6, 8, 9, 14}
	audioWidths = []int{11, 8, 9, 14}
)

// WriteHeader prints the title and, when known, the duration.
func WriteHeader(w io.Writer, info *Info) {
	fmt.Fprintf(w, "\nTitle: %s\n", info.Title)
	if info.Duration > 0 {
		fmt.Fprintf(w, "Duration: %s\n", FormatDuration(info.Duration))
	}
	fmt.Fprintln(w)
}

// WriteVideoTable renders video rows. bestAudio is added to each row's size
// because a muxed download fetches both streams.
func WriteVideoTable(w io.Writer, list []Format, bestAudio int64, bestAudioKnown bool) {
	extra := indexWidth(len(list)) - 2
	border := widenIndex(videoBorder, extra, "-")
	fmt.Fprintln(w, border)
	fmt.Fprintln(w, widenIndex("|                      AVAILABLE VIDEO FORMATS                     |", extra, " "))
	fmt.Fprintln(w, border)
	fmt.Fprintln(w, widenIndex("| #  | Resolution |  FPS   |  Codec   | Container | Estimated Size |", extra, " "))
	fmt.Fprintln(w, border)

	for i, f := range list {
		size := "Unknown"
		if bestAudioKnown && f.Size > 0 {
			size = FormatFileSize(f.Size + bestAudio)
		}
		writeRow(w, i+1, 2+extra, videoWidths,
			resolutionLabel(f),
			fpsLabel(f.FPS),
			shortCodec(f.VCodec),
			orUnknown(f.Ext, "?"),
			size,
		)
	}

	fmt.Fprintln(w, border)
}

// WriteAudioTable renders audio rows.
func WriteAudioTable(w io.Writer, list []Format) {
	extra := indexWidth(len(list)) - 2
	border := widenIndex(audioBorder, extra, "-")
	fmt.Fprintln(w, border)
	fmt.Fprintln(w, widenIndex("|                 AVAILABLE AUDIO FORMATS                  |", extra, " "))
	fmt.Fprintln(w, border)
	fmt.Fprintln(w, widenIndex("| #  |   Quality   |  Codec   | Container |      Size      |", extra, " "))
	fmt.Fprintln(w, border)

	for i, f := range list {
		quality := "Unknown"
		if f.ABR > 0 {
			quality = fmt.Sprintf("%dkbps", int(math.Round(f.ABR)))
		}
		size := "Unknown"
		if f.Size > 0 {
			size = FormatFileSize(f.Size)
		}
		writeRow(w, i+1, 2+extra, audioWidths,
			quality,
			shortCodec(f.ACodec),
			orUnknown(f.Ext, "?"),
			size,
		)
	}

	fmt.Fprintln(w, border)
}

// indexWidth is the "#" column width: 2, or wider once row numbers need it.
func indexWidth(rows int) int {
	if n := len(strconv.Itoa(rows)); n > 2 {
		return n
	}
	return 2
}

// widenIndex inserts extra fill characters inside the "#" column of a
// border or header line.
func widenIndex(line string, extra int, fill string) string {
	if extra <= 0 {
		return line
	}
	return line[:5] + strings.Repeat(fill, extra) + line[5:]
}

func writeRow(w io.Writer, index, idxWidth int, widths []int, cells ...string) {
	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(runewidth.FillRight(strconv.Itoa(index), idxWidth))
	b.WriteString(" |")
	for i, c := range cells {
		b.WriteString(" ")
		b.WriteString(Cell(c, widths[i]))
		b.WriteString(" |")
	}
	fmt.Fprintln(w, b.String())
}

// Cell pads s to width terminal cells; longer values are cut and end with
// "~" so the column stays aligned.
func Cell(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, truncMark)
	}
	return runewidth.FillRight(s, width)
}

func resolutionLabel(f Format) string {
	if f.Note != "" {
		return f.Note
	}
	if f.Height > 0 {
		return fmt.Sprintf("%dp", f.Height)
	}
	return "?"
}

func fpsLabel(fps float64) string {
	if fps <= 0 {
		return "?"
	}
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

// shortCodec keeps the codec family, e.g. "avc1.640028" -> "avc1".
func shortCodec(codec string) string {
	if codec == "" {
		return "?"
	}
	name, _, _ := strings.Cut(codec, ".")
	return name
}

func orUnknown(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// FormatFileSize converts bytes to MiB with two decimals.
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}

// FormatDuration renders d as MM:SS, or HH:MM:SS from one hour up.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "Unknown"
	}
	total := int(d.Round(time.Second) / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
