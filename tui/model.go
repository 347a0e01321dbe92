// Package tui is the terminal front end of VisorX. It renders the same
// conversation controller as the web page inside a bubbletea program.
package tui

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/pkg/conversation"
	"github.com/papercomputeco/visorx/pkg/i18n"
	"github.com/papercomputeco/visorx/pkg/imageenc"
)

const (
	imageCommand   = "/image"
	noImageCommand = "/noimage"
	quitCommand    = "/quit"

	// header, status and input lines
	chromeHeight = 3
)

type (
	startedMsg   struct{ err error }
	changedMsg   struct{}
	submittedMsg struct{ err error }
)

// Options configures a Model.
type Options struct {
	Renderer Renderer // defaults to BlockRenderer
	Logger   *zap.Logger
}

// Model is the bubbletea model for one conversation.
type Model struct {
	ctx      context.Context
	ctrl     *conversation.Controller
	printer  *i18n.Printer
	renderer Renderer
	logger   *zap.Logger

	updates     <-chan struct{}
	unsubscribe func()

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	attachment imageenc.File
	notice     string
	err        error
	ready      bool
}

// New creates a Model over an unstarted controller. The session is opened
// by Init so the spinner shows while it connects.
func New(ctx context.Context, ctrl *conversation.Controller, opts Options) *Model {
	if opts.Renderer == nil {
		opts.Renderer = BlockRenderer{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	printer := ctrl.Printer()

	ti := textinput.New()
	ti.Placeholder = printer.Sprintf(i18n.Placeholder)
	ti.Prompt = "❯ "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	updates, unsubscribe := ctrl.Subscribe()

	return &Model{
		ctx:         ctx,
		ctrl:        ctrl,
		printer:     printer,
		renderer:    opts.Renderer,
		logger:      opts.Logger,
		updates:     updates,
		unsubscribe: unsubscribe,
		input:       ti,
		spinner:     sp,
	}
}

// Err returns the startup error that ended the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Close releases the controller subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.waitForChange(), m.spinner.Tick, textinput.Blink)
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: m.ctrl.Start(m.ctx)}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.updates; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = max(msg.Width-4, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case startedMsg:
		if msg.err != nil {
			m.logger.Error("failed to start conversation", zap.Error(msg.err))
			m.err = msg.err
			return m, tea.Quit
		}
		m.refresh()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case submittedMsg:
		if msg.err != nil {
			m.logger.Debug("submission rejected", zap.Error(msg.err))
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles the composer line: attachment commands are applied
// locally, everything else becomes a turn on the controller.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())

	switch {
	case text == quitCommand:
		return tea.Quit
	case text == noImageCommand:
		m.attachment = nil
		m.notice = ""
		m.input.Reset()
		return nil
	case text == imageCommand || strings.HasPrefix(text, imageCommand+" "):
		m.input.Reset()
		arg := strings.TrimSpace(strings.TrimPrefix(text, imageCommand))
		if arg == "" {
			m.notice = m.printer.Sprintf(i18n.ImageUsage)
			return nil
		}
		m.attachment = attachmentFor(arg)
		m.notice = m.printer.Sprintf(i18n.ImageAttached, m.attachment.Name())
		return nil
	}

	if m.ctrl.State() != conversation.Idle {
		return nil
	}
	if text == "" && m.attachment == nil {
		return nil
	}

	sub := conversation.Submission{Text: text, Image: m.attachment}
	m.input.Reset()
	m.attachment = nil
	m.notice = ""

	ctx := m.ctx
	return func() tea.Msg {
		_, err := m.ctrl.Submit(ctx, sub)
		return submittedMsg{err: err}
	}
}

// attachmentFor resolves a local path or a URL to an image source.
func attachmentFor(arg string) imageenc.File {
	if !strings.Contains(arg, "://") {
		if abs, err := filepath.Abs(arg); err == nil {
			arg = abs
		}
	}
	return imageenc.FromURL(arg)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}

	width := max(m.viewport.Width-2, 10)
	messages := m.ctrl.Messages()
	rendered := make([]string, len(messages))
	for i, msg := range messages {
		rendered[i] = renderMessage(msg, m.renderer, m.printer, width)
	}

	m.viewport.SetContent(strings.Join(rendered, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *Model) status() string {
	switch {
	case m.ctrl.State() == conversation.Initializing:
		return m.spinner.View() + " " + pendingStyle.Render(m.printer.Sprintf(i18n.Initializing))
	case m.ctrl.Loading():
		return m.spinner.View() + " " + pendingStyle.Render(m.printer.Sprintf(i18n.Analyzing))
	case m.notice != "":
		return mutedStyle.Render(m.notice)
	}
	return ""
}

func (m *Model) View() string {
	header := logoStyle.Render("◉") + " " + titleStyle.Render("VisorX")

	if m.err != nil {
		return header + "\n" + errorStyle.Render(m.err.Error()) + "\n"
	}
	if !m.ready {
		return header + "\n" + m.status() + "\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.status(),
		m.input.View(),
	)
}
