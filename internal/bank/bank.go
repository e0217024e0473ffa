// Package bank loads calibrated item banks for the CLI runners. Banks are
// read-only; calibration and authoring happen elsewhere.
package bank

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/irtcat/internal/irt"
)

//go:embed sample.yaml
var sampleBank []byte

// Item is one calibrated question.
type Item struct {
	ID string  `yaml:"id" json:"id"`
	A  float64 `yaml:"a" json:"a"`
	B  float64 `yaml:"b" json:"b"`
	// C is carried through to the selector, which ignores it.
	C      *float64 `yaml:"c,omitempty" json:"c,omitempty"`
	Prompt string   `yaml:"prompt" json:"prompt"`
	// Choices makes the item multiple choice. Answer must be one of them.
	Choices []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Answer  string   `yaml:"answer" json:"answer"`
}

// IsMultipleChoice reports whether the item offers fixed choices.
func (it Item) IsMultipleChoice() bool {
	return len(it.Choices) > 0
}

// Check reports whether answer matches the key, ignoring case and
// surrounding whitespace.
func (it Item) Check(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(it.Answer))
}

// Question returns the item in selector form.
func (it Item) Question() irt.Question {
	return irt.Question{ID: it.ID, A: it.A, B: it.B, C: it.C}
}

// Response returns the scored response to the item.
func (it Item) Response(correct bool) irt.Response {
	return irt.Response{QuestionID: it.ID, A: it.A, B: it.B, Correct: correct}
}

// Bank is a named set of items.
type Bank struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Items       []Item `yaml:"items" json:"items"`

	index map[string]int
}

// Load reads a YAML or JSON bank from path.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Sample returns the built-in arithmetic bank.
func Sample() *Bank {
	b, err := Parse(sampleBank)
	if err != nil {
		panic(fmt.Sprintf("bank: invalid sample bank: %v", err))
	}
	return b
}

// Parse decodes and validates a bank. JSON input is accepted as YAML.
func Parse(data []byte) (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bank: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.index = make(map[string]int, len(b.Items))
	for i, it := range b.Items {
		b.index[it.ID] = i
	}
	return &b, nil
}

// Validate performs all structural checks on the bank. Returns a combined
// error describing all problems found, or nil if valid.
func (b *Bank) Validate() error {
	var errs []string

	if len(b.Items) == 0 {
		errs = append(errs, "bank has no items")
	}

	seen := make(map[string]bool, len(b.Items))
	for i, it := range b.Items {
		label := it.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Sprintf("item %s has no id", label))
		} else if seen[it.ID] {
			errs = append(errs, fmt.Sprintf("duplicate item ID: %q", it.ID))
		}
		seen[it.ID] = true

		if !(it.A > 0) || math.IsInf(it.A, 0) {
			errs = append(errs, fmt.Sprintf("item %s: discrimination must be positive and finite, got %v", label, it.A))
		}
		if math.IsNaN(it.B) || math.IsInf(it.B, 0) {
			errs = append(errs, fmt.Sprintf("item %s: difficulty must be finite, got %v", label, it.B))
		}
		if it.Answer == "" {
			errs = append(errs, fmt.Sprintf("item %s has no answer", label))
		} else if it.IsMultipleChoice() && !containsFold(it.Choices, it.Answer) {
			errs = append(errs, fmt.Sprintf("item %s: answer %q is not one of its choices", label, it.Answer))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Len returns the number of items.
func (b *Bank) Len() int {
	return len(b.Items)
}

// Item returns the item with the given id.
func (b *Bank) Item(id string) (Item, bool) {
	i, ok := b.index[id]
	if !ok {
		return Item{}, false
	}
	return b.Items[i], true
}

// Questions returns every item in selector form, in bank order.
func (b *Bank) Questions() []irt.Question {
	out := make([]irt.Question, len(b.Items))
	for i, it := range b.Items {
		out[i] = it.Question()
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
