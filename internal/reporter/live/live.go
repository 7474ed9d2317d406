// Package live implements a scrolling-step-list reporter rendered with
// github.com/charmbracelet/bubbletea, for interactive terminal runs.
package live

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/reporter"
)

var _ reporter.Reporter = (*Reporter)(nil)

var (
	passedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

type row struct {
	model   string
	name    string
	status  model.StepStatus
	message string
}

type startMsg struct {
	modelCount int
	expression string
}

type stepStartMsg struct{ step model.Step }

type stepEndMsg struct {
	step   model.Step
	result model.StepOutcome
}

type endMsg struct{ stats model.Statistics }

// program is the bubbletea Model backing the live view.
type program struct {
	modelCount int
	expression string
	rows       []row
	pending    *row
	stats      model.Statistics
	done       bool
}

func (p *program) Init() tea.Cmd { return nil }

func (p *program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return p, tea.Quit
		}
	case startMsg:
		p.modelCount = m.modelCount
		p.expression = m.expression
	case stepStartMsg:
		p.pending = &row{model: m.step.ModelName, name: m.step.Name}
	case stepEndMsg:
		p.rows = append(p.rows, row{
			model:   m.step.ModelName,
			name:    m.step.Name,
			status:  m.result.Status,
			message: m.result.Message,
		})
		p.pending = nil
	case endMsg:
		p.stats = m.stats
		p.done = true
		return p, tea.Quit
	}
	return p, nil
}

func (p *program) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("altwalker — %d model(s), %s", p.modelCount, p.expression)))
	for _, r := range p.rows {
		b.WriteString(renderRow(r))
		b.WriteString("\n")
	}
	if p.pending != nil {
		fmt.Fprintf(&b, "  … %s.%s\n", p.pending.model, p.pending.name)
	}
	if p.done {
		fmt.Fprintf(&b, "\n%d steps, edge coverage %.1f%%, vertex coverage %.1f%%\n",
			p.stats.Steps, p.stats.EdgeCoverage, p.stats.VertexCoverage)
	}
	return b.String()
}

func renderRow(r row) string {
	label := fmt.Sprintf("%s.%s", r.model, r.name)
	switch r.status {
	case model.StepFailed:
		return failedStyle.Render("✗ " + label + ": " + r.message)
	case model.StepSkipped:
		return skippedStyle.Render("− " + label)
	default:
		return passedStyle.Render("✓ " + label)
	}
}

// Reporter drives a bubbletea program from walker lifecycle calls. Each
// call sends a message into the running program rather than mutating
// state directly, since Update runs on the program's own goroutine.
type Reporter struct {
	program *tea.Program
	done    chan struct{}
}

// New starts the bubbletea program in the background and returns a
// Reporter that forwards walker events to it.
func New() *Reporter {
	p := tea.NewProgram(&program{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()
	return &Reporter{program: p, done: done}
}

func (r *Reporter) Start(models *model.ModelSet, expression string) {
	count := 0
	if models != nil {
		count = len(models.Models)
	}
	r.program.Send(startMsg{modelCount: count, expression: expression})
}

func (r *Reporter) End(stats model.Statistics) {
	r.program.Send(endMsg{stats: stats})
	<-r.done
}

func (r *Reporter) StepStart(step model.Step) {
	r.program.Send(stepStartMsg{step: step})
}

func (r *Reporter) StepEnd(step model.Step, result model.StepOutcome) {
	r.program.Send(stepEndMsg{step: step, result: result})
}

// Report returns nil; the live reporter has no structured artifact beyond
// its terminal rendering.
func (r *Reporter) Report() any { return nil }
