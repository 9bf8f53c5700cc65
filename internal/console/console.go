// Package console is a line mode front end for terminals without a full
// screen UI. Enter talks, h prints the transcript and q quits.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	orchestration "github.com/koscakluka/kurt/core"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const defaultWidth = 80

var _ orchestration.Surface = (*Console)(nil)

// Console prints status changes as they happen and keeps the latest
// transcript for the history command.
type Console struct {
	out   io.Writer
	width int

	mu         sync.Mutex
	status     string
	transcript string
	micEnabled bool
}

type Option func(*Console)

// WithWidth sets the wrap width. Values below 20 are ignored.
func WithWidth(width int) Option {
	return func(c *Console) {
		if width >= 20 {
			c.width = width
		}
	}
}

func New(out io.Writer, opts ...Option) *Console {
	c := &Console{out: out, width: defaultWidth, micEnabled: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) SetStatusText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text == c.status {
		return
	}
	c.status = text
	c.printLocked("> " + text)
}

func (c *Console) SetTranscriptText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = text
}

func (c *Console) SetMicEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.micEnabled = enabled
}

func (c *Console) SetMicIcon(orchestration.MicIcon) {}

func (c *Console) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Console) MicEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.micEnabled
}

// PrintTranscript writes the transcript indented under its header.
func (c *Console) PrintTranscript() {
	c.mu.Lock()
	defer c.mu.Unlock()

	header, body, _ := strings.Cut(c.transcript, "\n")
	c.printLocked(header)
	if body = strings.TrimRight(body, "\n"); body != "" {
		fmt.Fprintln(c.out, indent.String(wordwrap.String(body, c.width-2), 2))
	}
}

func (c *Console) printLocked(text string) {
	fmt.Fprintln(c.out, wordwrap.String(text, c.width))
}

// Run drives o from line input until q, end of input or ctx is done. The
// orchestrator is shut down before Run returns.
func (c *Console) Run(ctx context.Context, o *orchestration.Orchestrator, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer o.OnStop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		o.Run(ctx)
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.Done():
			return nil
		case err := <-scanErr:
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		case line := <-lines:
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "":
				o.PressMic()
			case "h", "history":
				c.PrintTranscript()
			case "q", "quit", "exit":
				o.OnStop()
				<-loopDone
				return nil
			default:
				c.mu.Lock()
				c.printLocked("Press Enter to talk, h for history, q to quit")
				c.mu.Unlock()
			}
		}
	}
}
