package progress

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-runewidth"
)

// Spinner prints "<message>..." with cycling dots while the caller blocks on
// something else. Start and Stop must be called from the same goroutine.
// Stop without a running Start is a no-op.
type Spinner struct {
	out      io.Writer
	message  string
	frames   []string
	interval time.Duration
	disabled bool

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner returns an idle spinner writing to out.
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:      out,
		message:  message,
		frames:   padFrames(spinner.Ellipsis.Frames),
		interval: spinner.Ellipsis.FPS,
	}
}

// Disable turns Start and Stop into no-ops, for output that is not a
// terminal.
func (s *Spinner) Disable() { s.disabled = true }

// Running reports whether the animation goroutine is active.
func (s *Spinner) Running() bool { return s.running.Load() }

// Start begins the animation in the background.
func (s *Spinner) Start() {
	if s.disabled || !s.running.CompareAndSwap(false, true) {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.animate(s.stop, s.done)
}

// Stop halts the animation, waits for the goroutine to exit and blanks the
// line.
func (s *Spinner) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	close(s.stop)
	<-s.done
	blank := strings.Repeat(" ", runewidth.StringWidth(s.message)+10)
	fmt.Fprintf(s.out, "\r%s\r", blank)
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; s.running.Load(); i++ {
		fmt.Fprintf(s.out, "\r%s%s", s.message, s.frames[i%len(s.frames)])
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// padFrames right-pads every frame to the widest one so a shorter frame
// overwrites the tail of a longer one.
func padFrames(frames []string) []string {
	width := 0
	for _, f := range frames {
		width = max(width, runewidth.StringWidth(f))
	}
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = runewidth.FillRight(f, width)
	}
	return out
}
