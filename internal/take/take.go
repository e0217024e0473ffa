// Package take runs an adaptive test interactively in the terminal.
package take

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/irtcat/internal/bank"
	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/session"
	"github.com/abhisek/irtcat/internal/ui/components"
	"github.com/abhisek/irtcat/internal/ui/layout"
	"github.com/abhisek/irtcat/internal/ui/theme"
)

// Phase is the current screen of the runner.
type Phase int

const (
	PhaseQuestion Phase = iota // Waiting for an answer
	PhaseFeedback              // Showing whether the answer was right
	PhaseSummary               // Test finished
)

// Model is the bubbletea model for a test sitting.
type Model struct {
	ctx    context.Context
	title  string
	sess   *session.Session
	policy irt.Policy

	phase   Phase
	item    bank.Item
	choice  components.MultiChoice
	input   components.TextInput
	correct bool
	summary *session.Summary
	err     error

	width  int
	height int
}

// New starts a sitting and fetches the first item.
func New(ctx context.Context, title string, sess *session.Session, policy irt.Policy) (*Model, error) {
	m := &Model{
		ctx:    ctx,
		title:  title,
		sess:   sess,
		policy: policy,
		width:  layout.MinWidth,
		height: layout.MinHeight,
	}
	if err := m.nextItem(); err != nil {
		return nil, err
	}
	return m, nil
}

// Summary returns the final summary once the test has ended.
func (m *Model) Summary() *session.Summary {
	return m.summary
}

// Err returns the error that stopped the sitting, if any.
func (m *Model) Err() error {
	return m.err
}

// Phase returns the current phase.
func (m *Model) Phase() Phase {
	return m.phase
}

func (m *Model) Init() tea.Cmd {
	if !m.item.IsMultipleChoice() {
		return m.input.Init()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if key := msg.String(); key == "ctrl+c" || key == "esc" {
			m.finish()
			return m, tea.Quit
		}
	}

	switch m.phase {
	case PhaseQuestion:
		return m.updateQuestion(msg)
	case PhaseFeedback:
		if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
			return m.advance()
		}
	case PhaseSummary:
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			switch kmsg.String() {
			case "enter", "q":
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateQuestion(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.item.IsMultipleChoice() {
		m.choice, cmd = m.choice.Update(msg)
		if m.choice.Submitted {
			m.submit(m.choice.Chosen())
		}
		return m, cmd
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.submit(m.input.Value())
		return m, nil
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit scores the answer and switches to feedback.
func (m *Model) submit(answer string) {
	correct, _, err := m.sess.Answer(m.ctx, answer)
	if err != nil {
		m.fail(err)
		return
	}
	m.correct = correct
	if m.item.IsMultipleChoice() {
		for i, opt := range m.item.Choices {
			if m.item.Check(opt) {
				m.choice.Reveal(i)
				break
			}
		}
	} else {
		m.input.Submit(correct)
	}
	m.phase = PhaseFeedback
}

// advance moves from feedback to the next item or the summary.
func (m *Model) advance() (tea.Model, tea.Cmd) {
	if m.sess.Done() {
		m.finish()
		return m, nil
	}
	if err := m.nextItem(); err != nil {
		m.fail(err)
		return m, nil
	}
	return m, m.Init()
}

func (m *Model) nextItem() error {
	it, err := m.sess.Next(m.ctx)
	if err != nil {
		return err
	}
	m.item = it
	m.phase = PhaseQuestion
	if it.IsMultipleChoice() {
		m.choice = components.NewMultiChoice(it.Choices)
	} else {
		m.input = components.NewTextInput("Type your answer", components.AnswerCharset, 32)
	}
	return nil
}

func (m *Model) finish() {
	m.summary = session.BuildSummary(m.sess)
	m.phase = PhaseSummary
}

func (m *Model) fail(err error) {
	m.err = err
	m.finish()
}

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.title, m.status(), m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)

	var body string
	switch m.phase {
	case PhaseSummary:
		body = m.viewSummary()
	default:
		body = m.viewQuestion()
	}

	v.SetContent(layout.RenderFrame(header, body, footer, m.width, m.height))
	return v
}

func (m *Model) status() string {
	if m.sess.Last == nil {
		return fmt.Sprintf("Item %d", m.sess.Administered()+1)
	}
	return fmt.Sprintf("Item %d   θ %+.2f ± %s", m.sess.Administered()+1, m.sess.Theta, formatSE(m.sess.Last.StandardError))
}

func (m *Model) keyHints() []layout.KeyHint {
	switch m.phase {
	case PhaseFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Next"}, {Key: "Esc", Description: "Stop"}}
	case PhaseSummary:
		return []layout.KeyHint{{Key: "Enter", Description: "Exit"}}
	}
	if m.item.IsMultipleChoice() {
		return []layout.KeyHint{{Key: "↑/↓", Description: "Choose"}, {Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Stop"}}
	}
	return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Stop"}}
}

func (m *Model) viewQuestion() string {
	var b strings.Builder

	b.WriteString(theme.Body.Bold(true).Render(m.item.Prompt))
	b.WriteString("\n\n")
	if m.item.IsMultipleChoice() {
		b.WriteString(m.choice.View())
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.phase == PhaseFeedback {
		b.WriteString("\n")
		if m.correct {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("Not quite. The answer is " + m.item.Answer))
		}
		b.WriteString("\n")
	}

	if m.sess.Last != nil {
		b.WriteString("\n")
		pct := components.PrecisionPercent(m.sess.Last.StandardError, m.policy.MaxStandardError)
		b.WriteString(components.NewProgressBar("Precision", pct, true, min(m.width-8, 60)).View())
	}

	return theme.Card.Width(min(m.width-4, 72)).Render(b.String())
}

func (m *Model) viewSummary() string {
	sum := m.summary
	var b strings.Builder

	b.WriteString(theme.Title.Render("Test complete"))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Ability estimate", fmt.Sprintf("%+.3f", sum.Theta)},
		{"Standard error", formatSE(sum.StandardError)},
		{"Items", fmt.Sprintf("%d", sum.TotalQuestions)},
		{"Correct", fmt.Sprintf("%d (%.0f%%)", sum.TotalCorrect, sum.Accuracy*100)},
		{"Stopped because", sum.Reason.String()},
	}
	for _, r := range rows {
		b.WriteString(lipgloss.NewStyle().Width(18).Foreground(theme.TextDim).Render(r[0]))
		b.WriteString(theme.Stat.Render(r[1]))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	return theme.Card.Render(b.String())
}

func formatSE(se float64) string {
	if math.IsNaN(se) {
		return "n/a"
	}
	if math.IsInf(se, 0) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", se)
}

// Run starts the terminal program and blocks until the sitting ends.
func Run(m *Model) (*session.Summary, error) {
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return nil, err
	}
	if m.summary == nil {
		m.finish()
	}
	return m.summary, m.err
}
