package formats

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestCell(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"mp4", 9, "mp4      "},
		{"", 3, "   "},
		{"avc1", 4, "avc1"},
		{"verylongcodec", 8, "verylon~"},
	}
	for _, tt := range tests {
		if got := Cell(tt.in, tt.width); got != tt.want {
			t.Errorf("Cell(%q, %d)=%q want=%q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWriteVideoTable(t *testing.T) {
	list := []Format{
		{ID: "137", Ext: "mp4", VCodec: "avc1.640028", Height: 1080, FPS: 29.97, Size: 100 * 1024 * 1024},
		{ID: "298", Ext: "mp4", Note: "720p60", VCodec: "avc1.4d4020", Height: 720, FPS: 60, Size: 50 * 1024 * 1024},
	}
	var buf bytes.Buffer
	WriteVideoTable(&buf, list, 5*1024*1024, true)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines want 8:\n%s", len(lines), buf.String())
	}
	want := []string{
		"| 1  | 1080p      | 29.97  | avc1     | mp4       | 105.00 MB      |",
		"| 2  | 720p60     | 60     | avc1     | mp4       | 55.00 MB       |",
	}
	for i, w := range want {
		if lines[5+i] != w {
			t.Errorf("row %d=%q want=%q", i+1, lines[5+i], w)
		}
	}
	for _, l := range lines {
		if len(l) != len(videoBorder) {
			t.Errorf("line %q width=%d want=%d", l, len(l), len(videoBorder))
		}
	}
}

func TestWriteVideoTableUnknownAudio(t *testing.T) {
	var buf bytes.Buffer
	WriteVideoTable(&buf, []Format{{ID: "1", Ext: "webm", VCodec: "vp9", Height: 720, Size: 1024}}, 0, false)
	if !strings.Contains(buf.String(), "| Unknown        |") {
		t.Fatalf("expected Unknown size:\n%s", buf.String())
	}
}

func TestWriteAudioTable(t *testing.T) {
	list := []Format{
		{ID: "251", Ext: "webm", ACodec: "opus", VCodec: "none", ABR: 160.2, Size: 3 * 1024 * 1024},
		{ID: "140", Ext: "m4a", ACodec: "mp4a.40.2", VCodec: "none", ABR: 129.5, Size: 1536 * 1024},
	}
	var buf bytes.Buffer
	WriteAudioTable(&buf, list)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"| 1  | 160kbps     | opus     | webm      | 3.00 MB        |",
		"| 2  | 130kbps     | mp4a     | m4a       | 1.50 MB        |",
	}
	for i, w := range want {
		if lines[5+i] != w {
			t.Errorf("row %d=%q want=%q", i+1, lines[5+i], w)
		}
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, &Info{Title: "Demo", Duration: 3725 * time.Second})
	want := "\nTitle: Demo\nDuration: 01:02:05\n\n"
	if buf.String() != want {
		t.Fatalf("WriteHeader()=%q want=%q", buf.String(), want)
	}

	buf.Reset()
	WriteHeader(&buf, &Info{Title: "NoDuration"})
	if strings.Contains(buf.String(), "Duration:") {
		t.Fatalf("unexpected duration line: %q", buf.String())
	}
}

func TestWideIndexKeepsAlignment(t *testing.T) {
	video := make([]Format, 100)
	for i := range video {
		video[i] = Format{ID: strconv.Itoa(i), Ext: "mp4", VCodec: "avc1", Height: 720, Size: 1024}
	}
	var buf bytes.Buffer
	WriteVideoTable(&buf, video, 1024, true)
	assertAligned(t, buf.String())
	if !strings.Contains(buf.String(), "\n| 100 | 720p ") {
		t.Errorf("row 100 missing:\n%s", buf.String())
	}

	audio := make([]Format, 120)
	for i := range audio {
		audio[i] = Format{ID: strconv.Itoa(i), Ext: "m4a", ACodec: "mp4a", VCodec: "none", ABR: 128, Size: 1024}
	}
	buf.Reset()
	WriteAudioTable(&buf, audio)
	assertAligned(t, buf.String())
}

func assertAligned(t *testing.T, table string) {
	t.Helper()
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	for _, l := range lines {
		if len(l) != len(lines[0]) {
			t.Fatalf("line %q width=%d want=%d", l, len(l), len(lines[0]))
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "Unknown"},
		{59 * time.Second, "00:59"},
		{10*time.Minute + 5*time.Second, "10:05"},
		{2*time.Hour + 3*time.Second, "02:00:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v)=%q want=%q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	if got := FormatFileSize(0); got != "Unknown" {
		t.Errorf("FormatFileSize(0)=%q", got)
	}
	if got := FormatFileSize(1024 * 1024 * 5 / 2); got != "2.50 MB" {
		t.Errorf("FormatFileSize(2.5MiB)=%q", got)
	}
}
