package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// JobSource is what the model polls. *Client satisfies it.
type JobSource interface {
	Get(ctx context.Context, id string) (Job, error)
	Cancel(ctx context.Context, id string) (Job, error)
}

type keyMap struct {
	Quit   key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel job"),
		),
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BD93F9"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#50FA7B"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type Options struct {
	Context  context.Context
	Source   JobSource
	JobID    string
	PollTick time.Duration
}

// Model polls one job and renders its progress.
type Model struct {
	ctx      context.Context
	source   JobSource
	jobID    string
	pollTick time.Duration
	keys     keyMap
	bar      progress.Model

	job        Job
	poll       int
	loaded     bool
	err        error
	cancelling bool
	lastPoll   time.Time
	width      int
}

func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.PollTick
	if tick <= 0 {
		tick = 500 * time.Millisecond
	}
	return Model{
		ctx:      ctx,
		source:   opts.Source,
		jobID:    opts.JobID,
		pollTick: tick,
		keys:     defaultKeyMap(),
		bar:      progress.New(progress.WithDefaultGradient()),
	}
}

// Messages carry the poll generation they belong to. Issuing a cancel starts
// a new generation so at most one poll chain is ever live.
type tickMsg struct{ poll int }

type jobMsg struct {
	job       Job
	err       error
	poll      int
	cancelled bool
}

func tickCmd(d time.Duration, poll int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{poll: poll} })
}

func (m Model) fetchCmd() tea.Cmd {
	poll := m.poll
	return func() tea.Msg {
		job, err := m.source.Get(m.ctx, m.jobID)
		return jobMsg{job: job, err: err, poll: poll}
	}
}

func (m Model) cancelCmd() tea.Cmd {
	poll := m.poll
	return func() tea.Msg {
		job, err := m.source.Cancel(m.ctx, m.jobID)
		return jobMsg{job: job, err: err, poll: poll, cancelled: true}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.fetchCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			if m.cancelling || m.job.Terminal() {
				return m, nil
			}
			m.cancelling = true
			m.poll++
			return m, m.cancelCmd()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-8))
		return m, nil

	case tickMsg:
		if msg.poll != m.poll {
			return m, nil
		}
		return m, m.fetchCmd()

	case jobMsg:
		if msg.poll != m.poll {
			return m, nil
		}
		m.lastPoll = time.Now()
		if msg.cancelled {
			m.cancelling = false
		}
		if msg.err != nil {
			m.err = msg.err
			return m, tickCmd(m.pollTick, m.poll)
		}
		m.err = nil
		m.job = msg.job
		m.loaded = true
		if m.job.Terminal() {
			return m, nil
		}
		if msg.cancelled {
			return m, nil
		}
		return m, tickCmd(m.pollTick, m.poll)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Job "+m.jobID) + "\n\n")

	if !m.loaded {
		if m.err != nil {
			b.WriteString(failStyle.Render(m.err.Error()) + "\n")
		} else {
			b.WriteString(labelStyle.Render("loading...") + "\n")
		}
		b.WriteString("\n" + m.help())
		return boxStyle.Render(b.String())
	}

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("kind:  "), m.job.Kind)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("status:"), statusText(m.job.Status))
	if m.job.EstimatedTime > 0 && !m.job.Terminal() {
		fmt.Fprintf(&b, "%s %ds\n", labelStyle.Render("eta:   "), m.job.EstimatedTime)
	}
	b.WriteString("\n" + m.bar.ViewAs(float64(m.job.Progress)/100) + "\n")

	switch {
	case m.job.Status == "completed":
		b.WriteString("\n" + doneStyle.Render("result: ") + m.job.Result() + "\n")
	case m.job.Status == "failed" && m.job.Error != "":
		b.WriteString("\n" + failStyle.Render("error: ") + m.job.Error + "\n")
	case m.cancelling:
		b.WriteString("\n" + pendingStyle.Render("cancelling...") + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + failStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + m.help())
	return boxStyle.Render(b.String())
}

func (m Model) help() string {
	parts := []string{}
	if !m.job.Terminal() {
		h := m.keys.Cancel.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	h := m.keys.Quit.Help()
	parts = append(parts, h.Key+" "+h.Desc)
	return helpStyle.Render(strings.Join(parts, " • "))
}

func statusText(status string) string {
	switch status {
	case "completed":
		return doneStyle.Render(status)
	case "failed":
		return failStyle.Render(status)
	case "pending":
		return pendingStyle.Render(status)
	default:
		return status
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	_, err := tea.NewProgram(New(opts)).Run()
	return err
}
