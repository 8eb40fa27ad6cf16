package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStopBlanksLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching options")
	s.Start()
	if !s.Running() {
		t.Fatal("Running()=false after Start")
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if s.Running() {
		t.Fatal("Running()=true after Stop")
	}
	out := buf.String()
	if !strings.Contains(out, "\rFetching options") {
		t.Fatalf("animation frame missing: %q", out)
	}
	blank := "\r" + strings.Repeat(" ", len("Fetching options")+10) + "\r"
	if !strings.HasSuffix(out, blank) {
		t.Fatalf("output does not end with a blanked line: %q", out)
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "x")

	s.Stop()
	if buf.Len() != 0 {
		t.Fatalf("Stop without Start wrote %q", buf.String())
	}

	s.Start()
	s.Stop()
	n := buf.Len()
	s.Stop()
	if buf.Len() != n {
		t.Fatalf("second Stop wrote %q", buf.String()[n:])
	}
}

func TestSpinnerRestart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "again")
	for i := 0; i < 3; i++ {
		s.Start()
		s.Stop()
	}
	if s.Running() {
		t.Fatal("spinner still running")
	}
}

func TestSpinnerDisabled(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "quiet")
	s.Disable()
	s.Start()
	if s.Running() {
		t.Fatal("disabled spinner started")
	}
	s.Stop()
	if buf.Len() != 0 {
		t.Fatalf("disabled spinner wrote %q", buf.String())
	}
}

func TestPadFrames(t *testing.T) {
	got := padFrames([]string{"", ".", "..", "..."})
	want := []string{"   ", ".  ", ".. ", "..."}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestParseFFmpeg(t *testing.T) {
	task := NewTask(io.Discard, "Merging", int64(10*time.Second), Media)
	defer task.Finish()

	in := strings.Join([]string{
		"frame=10",
		"out_time_us=2500000",
		"speed=1.5x",
		"garbage line",
	}, "\n")
	if err := ParseFFmpeg(strings.NewReader(in), task); err != nil {
		t.Fatalf("ParseFFmpeg() error: %v", err)
	}
	if got := time.Duration(task.Current()); got != 2500*time.Millisecond {
		t.Fatalf("Current()=%v want=2.5s", got)
	}

	if err := ParseFFmpeg(strings.NewReader("progress=end\n"), task); err != nil {
		t.Fatalf("ParseFFmpeg() error: %v", err)
	}
	if task.Current() != task.Total() {
		t.Fatalf("Current()=%d want total %d", task.Current(), task.Total())
	}
}

func TestParseFFmpegDurationBanner(t *testing.T) {
	task := NewTask(io.Discard, "Merging", 0, Media)
	defer task.Finish()

	in := "  Duration: 00:01:30.50, start: 0.000000, bitrate: 128 kb/s\n"
	if err := ParseFFmpeg(strings.NewReader(in), task); err != nil {
		t.Fatalf("ParseFFmpeg() error: %v", err)
	}
	want := 90*time.Second + 500*time.Millisecond
	if got := time.Duration(task.Total()); got != want {
		t.Fatalf("Total()=%v want=%v", got, want)
	}
}

func TestTaskUpdateClamps(t *testing.T) {
	task := NewTask(io.Discard, "Video", 0, Bytes)
	defer task.Finish()

	task.Update(50, 100)
	if task.Current() != 50 || task.Total() != 100 {
		t.Fatalf("after Update: current=%d total=%d", task.Current(), task.Total())
	}
	task.Update(500, 0)
	if task.Current() != 100 {
		t.Fatalf("Current()=%d want clamped 100", task.Current())
	}
}
