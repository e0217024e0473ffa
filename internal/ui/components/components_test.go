package components

import (
	"math"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMultiChoice_Navigation(t *testing.T) {
	m := NewMultiChoice([]string{"6", "7", "8", "9"})

	m, _ = m.Update(specialKey(tea.KeyDown))
	m, _ = m.Update(keyPress('j'))
	if m.Selected != 2 {
		t.Fatalf("Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyUp))
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}

	// Clamped at the ends.
	for i := 0; i < 5; i++ {
		m, _ = m.Update(keyPress('j'))
	}
	if m.Selected != 3 {
		t.Errorf("Selected = %d, want 3", m.Selected)
	}
}

func TestMultiChoice_LetterShortcut(t *testing.T) {
	m := NewMultiChoice([]string{"6", "7", "8", "9"})

	m, _ = m.Update(keyPress('c'))
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(keyPress('z'))
	if m.Selected != 2 {
		t.Errorf("out-of-range letter moved selection to %d", m.Selected)
	}
}

func TestMultiChoice_SubmitAndReveal(t *testing.T) {
	m := NewMultiChoice([]string{"6", "7", "8", "9"})
	if m.Chosen() != "" {
		t.Errorf("Chosen before submit = %q", m.Chosen())
	}

	m, _ = m.Update(keyPress('b'))
	m, _ = m.Update(specialKey(tea.KeyEnter))
	if !m.Submitted || m.Chosen() != "7" {
		t.Fatalf("submitted=%v chosen=%q", m.Submitted, m.Chosen())
	}

	// Input is ignored once submitted.
	m, _ = m.Update(keyPress('j'))
	if m.Selected != 1 {
		t.Errorf("Selected changed after submit: %d", m.Selected)
	}

	m.Reveal(2)
	view := m.View()
	for _, want := range []string{"A)  6", "B)  7", "C)  8", "D)  9"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTextInput_Charset(t *testing.T) {
	ti := NewTextInput("answer", AnswerCharset, 10)

	for _, r := range "3a/4x" {
		ti, _ = ti.Update(keyPress(r))
	}
	if ti.Value() != "3/4" {
		t.Errorf("Value = %q, want 3/4", ti.Value())
	}

	ti.Submit(true)
	if !ti.Submitted() {
		t.Error("expected Submitted after Submit")
	}
	ti, _ = ti.Update(keyPress('5'))
	if ti.Value() != "3/4" {
		t.Errorf("Value changed after submit: %q", ti.Value())
	}
	if !strings.Contains(ti.View(), "✓") {
		t.Error("view should show the correct mark")
	}
}

func TestTextInput_AnyCharset(t *testing.T) {
	ti := NewTextInput("", "", 0)
	for _, r := range "Paris" {
		ti, _ = ti.Update(keyPress(r))
	}
	if ti.Value() != "Paris" {
		t.Errorf("Value = %q, want Paris", ti.Value())
	}
}

func TestPrecisionPercent(t *testing.T) {
	tests := []struct {
		se, target, want float64
	}{
		{0.6, 0.3, 0.25},
		{0.3, 0.3, 1},
		{0.1, 0.3, 1},
		{math.Inf(1), 0.3, 0},
		{math.NaN(), 0.3, 0},
		{0, 0.3, 0},
	}
	for _, tt := range tests {
		got := PrecisionPercent(tt.se, tt.target)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("PrecisionPercent(%v, %v) = %v, want %v", tt.se, tt.target, got, tt.want)
		}
	}
}

func TestProgressBar_View(t *testing.T) {
	p := NewProgressBar("Precision", 0.5, true, 40)
	view := p.View()
	if !strings.Contains(view, "Precision") || !strings.Contains(view, "50%") {
		t.Errorf("view = %q", view)
	}
}
