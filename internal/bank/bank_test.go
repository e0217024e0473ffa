package bank

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSample_Valid(t *testing.T) {
	b := Sample()
	if b.Len() < 20 {
		t.Fatalf("sample bank has %d items, want at least 20", b.Len())
	}
	for _, it := range b.Items {
		if it.Prompt == "" {
			t.Errorf("item %s has no prompt", it.ID)
		}
	}
}

func TestSample_SpansAbilityRange(t *testing.T) {
	b := Sample()
	lo, hi := b.Items[0].B, b.Items[0].B
	for _, it := range b.Items {
		lo = min(lo, it.B)
		hi = max(hi, it.B)
	}
	if lo > -3 || hi < 3 {
		t.Errorf("difficulty range [%v, %v] should cover [-3, 3]", lo, hi)
	}
}

func TestParse_JSON(t *testing.T) {
	data := `{"name": "json", "items": [
		{"id": "q1", "a": 1.2, "b": -0.5, "prompt": "2 + 2", "answer": "4"},
		{"id": "q2", "a": 0.8, "b": 1.0, "c": 0.2, "prompt": "Pick B", "choices": ["A", "B"], "answer": "B"}
	]}`

	b, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.Name != "json" || b.Len() != 2 {
		t.Fatalf("got name %q with %d items", b.Name, b.Len())
	}

	it, ok := b.Item("q2")
	if !ok {
		t.Fatal("q2 not found")
	}
	if it.C == nil || *it.C != 0.2 {
		t.Errorf("c = %v, want 0.2", it.C)
	}
	if !it.IsMultipleChoice() {
		t.Error("q2 should be multiple choice")
	}
	if _, ok := b.Item("missing"); ok {
		t.Error("unexpected item for missing id")
	}
}

func TestQuestions(t *testing.T) {
	b, err := Parse([]byte(`
items:
  - {id: q1, a: 1.0, b: 0.0, answer: "x"}
  - {id: q2, a: 2.0, b: 1.5, answer: "y"}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	qs := b.Questions()
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[1].ID != "q2" || qs[1].A != 2.0 || qs[1].B != 1.5 {
		t.Errorf("questions[1] = %+v", qs[1])
	}

	r := b.Items[0].Response(true)
	if r.QuestionID != "q1" || !r.Correct || r.A != 1.0 {
		t.Errorf("response = %+v", r)
	}
}

func TestCheck(t *testing.T) {
	it := Item{Answer: "3/4"}
	tests := []struct {
		in   string
		want bool
	}{
		{"3/4", true},
		{"  3/4 ", true},
		{"0.75", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := it.Check(tt.in); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if !(Item{Answer: "Paris"}).Check("paris") {
		t.Error("check should ignore case")
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "items: []", "no items"},
		{"missing id", "items: [{a: 1, b: 0, answer: x}]", "has no id"},
		{"duplicate", "items: [{id: q, a: 1, b: 0, answer: x}, {id: q, a: 1, b: 0, answer: y}]", "duplicate item ID"},
		{"zero a", "items: [{id: q, a: 0, b: 0, answer: x}]", "discrimination"},
		{"nan b", "items: [{id: q, a: 1, b: .nan, answer: x}]", "difficulty"},
		{"no answer", "items: [{id: q, a: 1, b: 0}]", "no answer"},
		{"answer not a choice", "items: [{id: q, a: 1, b: 0, choices: [a, b], answer: c}]", "not one of its choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	_, err := Parse([]byte("items: [{id: q, a: -1, b: 0}, {id: q, a: 1, b: 0, answer: x}]"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"discrimination", "no answer", "duplicate"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yaml")
	if err := os.WriteFile(path, []byte("name: file\nitems:\n  - {id: q1, a: 1, b: 0, answer: \"1\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Name != "file" {
		t.Errorf("name = %q, want file", b.Name)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
