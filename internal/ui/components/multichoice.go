package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/irtcat/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. The key is not known to the
// component; Reveal marks the right option after scoring.
type MultiChoice struct {
	Options     []string
	Selected    int
	Submitted   bool
	ChosenIndex int
	// CorrectIndex is -1 until Reveal.
	CorrectIndex int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options:      options,
		ChosenIndex:  -1,
		CorrectIndex: -1,
	}
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.ChosenIndex = m.Selected
	default:
		// Letter shortcuts jump to an option.
		if len(key) == 1 {
			if i := int(key[0] - 'a'); i >= 0 && i < len(m.Options) {
				m.Selected = i
			}
		}
	}

	return m, nil
}

// Chosen returns the submitted option text.
func (m MultiChoice) Chosen() string {
	if m.ChosenIndex < 0 {
		return ""
	}
	return m.Options[m.ChosenIndex]
}

// Reveal marks the option at index as the key.
func (m *MultiChoice) Reveal(index int) {
	m.CorrectIndex = index
}

// View renders the options.
func (m MultiChoice) View() string {
	var s string
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%c)  %s", prefix, 'A'+i, opt)

		switch {
		case m.Submitted && i == m.CorrectIndex:
			s += theme.Correct.Render(line)
		case m.Submitted && i == m.ChosenIndex:
			s += theme.Incorrect.Render(line)
		case m.Submitted:
			s += theme.Dimmed.Render(line)
		case i == m.Selected:
			s += theme.Selected.Render(line)
		default:
			s += theme.Unselected.Render(line)
		}
		s += "\n"
	}
	return s
}
