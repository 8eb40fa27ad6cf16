package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// Kind selects what a Task counts.
type Kind int

const (
	// Bytes counts transferred bytes.
	Bytes Kind = iota
	// Media counts processed media time in nanoseconds (ffmpeg).
	Media
)

const (
	bytesTemplate = `{{with string . "prefix"}}{{.}}{{end}}: {{percent . }} {{bar . }} {{counters . }} [{{speed . }}] {{rtime . "ETA %s"}}`
	mediaTemplate = `{{with string . "prefix"}}{{.}}{{end}}: {{percent . }} {{bar . }} {{string . "counters" }} [{{string . "speed"}}] {{rtime . "ETA %s"}}`
)

// Task is a single progress bar.
type Task struct {
	Name string

	kind    Kind
	bar     *pb.ProgressBar
	mu      sync.Mutex
	total   int64
	current int64
}

// NewTask starts a bar on w. total may be 0 when unknown and set later.
func NewTask(w io.Writer, name string, total int64, kind Kind) *Task {
	bar := pb.New64(total).
		Set("prefix", name).
		SetRefreshRate(100 * time.Millisecond).
		SetWriter(w)
	if kind == Media {
		bar.SetTemplateString(mediaTemplate)
	} else {
		bar.Set(pb.Bytes, true)
		bar.SetTemplateString(bytesTemplate)
	}

	bar.Start()

	if bar.Err() != nil {
		panic(bar.Err())
	}

	return &Task{
		Name:  name,
		kind:  kind,
		bar:   bar,
		total: total,
	}
}

// Reader wraps r so reads advance the bar.
func (t *Task) Reader(r io.Reader) io.Reader {
	return t.bar.NewProxyReader(r)
}

// Update sets both counters at once; used by callers that learn the total
// while the transfer is running.
func (t *Task) Update(current, total int64) {
	if total > 0 {
		t.SetTotal(total)
	}
	t.SetCurrent(current)
}

// SetCurrent moves the bar, clamped to the total when one is known.
func (t *Task) SetCurrent(current int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.total > 0 && current > t.total {
		current = t.total
	}
	t.current = current
	t.bar.SetCurrent(current)
	if t.kind == Media {
		t.bar.Set("counters", fmt.Sprintf("%s/%s",
			formatDuration(time.Duration(t.current)), formatDuration(time.Duration(t.total))))
	}
}

// SetTotal changes the bar's total.
func (t *Task) SetTotal(total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total = total
	t.bar.SetTotal(total)
}

// SetSpeed shows an ffmpeg speed factor on media bars.
func (t *Task) SetSpeed(speed float64) {
	if t.kind == Media {
		t.bar.Set("speed", fmt.Sprintf("%.2fx", speed))
	}
}

// Current returns the last position set.
func (t *Task) Current() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Total returns the bar's total.
func (t *Task) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Finish stops rendering.
func (t *Task) Finish() {
	t.bar.Finish()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh:%dm:%ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm:%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
