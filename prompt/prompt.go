// Package prompt reads operator input line by line while honouring context
// cancellation, so an interrupt can end a blocking read.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrEmptyURL is returned when the operator enters a blank URL.
var ErrEmptyURL = errors.New("URL cannot be empty")

// InputError describes a rejected selection.
type InputError struct {
	Input string
	Max   int
	// NotNumber is set when Input did not parse as an integer.
	NotNumber bool
}

func (e *InputError) Error() string {
	if e.NotNumber {
		return "Invalid input. Please enter a number."
	}
	return fmt.Sprintf("Invalid number. Please choose between 1 and %d.", e.Max)
}

// Prompter owns the input stream. The reader goroutine it starts is
// abandoned at process exit when a read is still pending.
type Prompter struct {
	out   io.Writer
	lines chan string
	err   error
}

// New starts reading lines from in.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		out:   out,
		lines: make(chan string),
	}
	go p.scan(in)
	return p
}

func (p *Prompter) scan(in io.Reader) {
	s := bufio.NewScanner(in)
	for s.Scan() {
		p.lines <- s.Text()
	}
	p.err = s.Err()
	close(p.lines)
}

// ReadLine prints label and waits for one line. It returns io.EOF when input
// is exhausted and ctx.Err() when ctx ends first.
func (p *Prompter) ReadLine(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			// p.err is written before close, so reading it here is safe.
			if p.err != nil {
				return "", p.err
			}
			return "", io.EOF
		}
		return line, nil
	}
}

// ReadURL asks for the content URL. A blank answer yields ErrEmptyURL.
func (p *Prompter) ReadURL(ctx context.Context) (string, error) {
	line, err := p.ReadLine(ctx, "Enter the YouTube video URL: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	url := strings.TrimSpace(line)
	if url == "" {
		fmt.Fprintln(p.out, "URL cannot be empty.")
		return "", ErrEmptyURL
	}
	return url, nil
}

// Choose asks for a 1-based number in [1, n] until a valid one arrives and
// returns it as a 0-based index. ok is false when the operator cancels or
// input ends; that is not an error.
func (p *Prompter) Choose(ctx context.Context, kind string, n int) (index int, ok bool) {
	for {
		line, err := p.ReadLine(ctx, fmt.Sprintf("\nSelect the %s by number: ", kind))
		if err != nil {
			fmt.Fprintln(p.out, "\nOperation cancelled by user.")
			return 0, false
		}
		choice, err := ParseChoice(line, n)
		if err != nil {
			fmt.Fprintln(p.out, err)
			continue
		}
		return choice - 1, true
	}
}

// ParseChoice validates a 1-based selection against a list of n items.
func ParseChoice(input string, n int) (int, error) {
	input = strings.TrimSpace(input)
	choice, err := strconv.Atoi(input)
	if err != nil {
		return 0, &InputError{Input: input, Max: n, NotNumber: true}
	}
	if choice < 1 || choice > n {
		return 0, &InputError{Input: input, Max: n}
	}
	return choice, nil
}
