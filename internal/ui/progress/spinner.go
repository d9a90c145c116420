// Package progress shows a spinner on stderr while em waits on the network.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-isatty"

	"github.com/raphi011/em/internal/ui/styles"
)

type messageUpdate string

// Spinner wraps a Bubbletea spinner for simple non-interactive use.
// A Spinner whose output is not a terminal does nothing.
type Spinner struct {
	out     io.Writer
	enabled bool

	mu      sync.Mutex
	program *tea.Program
	msgCh   chan string
	done    chan struct{}
	running bool
	message string
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	msgCh   chan string
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForMessage())
}

func (m spinnerModel) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.msgCh
		if !ok {
			return tea.Quit()
		}
		return messageUpdate(msg)
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messageUpdate:
		m.message = string(msg)
		return m, m.waitForMessage()
	case tea.KeyPressMsg:
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(m.spinner.View() + " " + styles.MutedStyle.Render(m.message))
}

// NewSpinner returns a spinner writing to f. It only animates if f is a
// terminal.
func NewSpinner(f *os.File, message string) *Spinner {
	return &Spinner{
		out:     f,
		enabled: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()),
		message: message,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.running {
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.PrimaryStyle

	s.msgCh = make(chan string, 10)
	s.done = make(chan struct{})
	s.program = tea.NewProgram(spinnerModel{spinner: sp, message: s.message, msgCh: s.msgCh},
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(s.out),
	)
	s.running = true

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// UpdateMessage changes the text next to the spinner. Updates are dropped
// while the channel is full.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if !s.running {
		return
	}
	select {
	case s.msgCh <- message:
	default:
	}
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.msgCh)
	s.mu.Unlock()

	s.program.Quit()
	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
	}
	fmt.Fprint(s.out, "\r\033[K")
}

// While runs fn with a spinner showing message on stderr.
func While[T any](ctx context.Context, message string, fn func(context.Context) (T, error)) (T, error) {
	s := NewSpinner(os.Stderr, message)
	s.Start()
	defer s.Stop()
	return fn(ctx)
}
