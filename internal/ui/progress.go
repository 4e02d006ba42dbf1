// Package ui renders generation progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"fwrap/internal/pipeline"
)

type progressModel struct {
	title      string
	events     <-chan pipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []procItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type procItem struct {
	name   string
	status string
	stage  pipeline.Stage
	final  bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows the events of
// one generation run. It quits once events is closed.
func NewProgressModel(title string, procs []string, events <-chan pipeline.Event) tea.Model {
	return newProgressModel(title, procs, events)
}

func newProgressModel(title string, procs []string, events <-chan pipeline.Event) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]procItem, 0, len(procs))
	index := make(map[string]int, len(procs))
	for _, name := range procs {
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = len(items)
		items = append(items, procItem{name: name, status: "queued"})
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(pipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.name, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.Procedure == "" {
		if label != "" {
			m.stageLabel = label
		}
		return m.prog.SetPercent(m.percent())
	}
	idx, ok := m.index[ev.Procedure]
	if !ok || label == "" {
		return nil
	}
	item := &m.items[idx]
	// An assembly error is final; later stage events only refine done/skipped.
	if item.final && item.status == "error" {
		return nil
	}
	item.status = label
	item.stage = ev.Stage
	item.final = ev.Status == pipeline.StatusDone || ev.Status == pipeline.StatusSkipped || ev.Status == pipeline.StatusError
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if item.final {
			total += 1.0
			continue
		}
		total += progressFromStage(m.currentStage(item))
	}
	return total / float64(len(m.items))
}

// currentStage is the later of the item's own stage and the run-wide one.
func (m *progressModel) currentStage(item procItem) pipeline.Stage {
	run := stageFromLabel(m.stageLabel)
	if progressFromStage(run) > progressFromStage(item.stage) {
		return run
	}
	return item.stage
}

func progressFromStage(stage pipeline.Stage) float64 {
	switch stage {
	case pipeline.StageAssemble:
		return 0.2
	case pipeline.StageMerge:
		return 0.5
	case pipeline.StageDedup:
		return 0.7
	case pipeline.StageEmit:
		return 0.9
	}
	return 0
}

func statusLabel(stage pipeline.Stage, status pipeline.Status) string {
	switch status {
	case pipeline.StatusQueued:
		return "queued"
	case pipeline.StatusDone:
		return "done"
	case pipeline.StatusSkipped:
		return "skipped"
	case pipeline.StatusError:
		return "error"
	case pipeline.StatusWorking:
		return stageLabel(stage)
	}
	return ""
}

func stageLabel(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageAssemble:
		return "assembling"
	case pipeline.StageMerge:
		return "merging"
	case pipeline.StageDedup:
		return "templating"
	case pipeline.StageEmit:
		return "emitting"
	}
	return ""
}

func stageFromLabel(label string) pipeline.Stage {
	for _, s := range pipeline.Stages {
		if stageLabel(s) == label {
			return s
		}
	}
	return ""
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "skipped":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "assembling", "merging", "templating", "emitting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
