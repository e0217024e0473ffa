package irt

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
)

// fixedSource always returns the same index, clamped to the range.
type fixedSource struct{ i int }

func (f fixedSource) IntN(n int) int { return min(f.i, n-1) }

func TestSelect_PicksMaximumInformation(t *testing.T) {
	pool := []Question{
		{ID: "easy", A: 1.0, B: -2.0},
		{ID: "match", A: 1.0, B: 0.4},
		{ID: "sharp-far", A: 2.0, B: 3.0},
		{ID: "hard", A: 0.8, B: 2.0},
	}
	got, err := Select(pool, 0.5)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.QuestionID != "match" || got.Index != 1 {
		t.Errorf("got %s at %d, want match at 1", got.QuestionID, got.Index)
	}
	if got.MaxInformation != Information(1.0, 0.4, 0.5) {
		t.Errorf("MaxInformation = %v, want %v", got.MaxInformation, Information(1.0, 0.4, 0.5))
	}
	if got.Ties != 1 {
		t.Errorf("Ties = %d, want 1", got.Ties)
	}
	for _, q := range pool {
		if Information(q.A, q.B, 0.5) > got.MaxInformation {
			t.Errorf("item %s is more informative than the selection", q.ID)
		}
	}
}

func TestSelect_SingleItem(t *testing.T) {
	got, err := Select([]Question{{ID: "only", A: 0.3, B: 3}}, -4)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.QuestionID != "only" || got.Index != 0 {
		t.Errorf("got %+v, want the only item", got)
	}
}

func TestSelect_IgnoresGuessingParameter(t *testing.T) {
	c := 0.25
	pool := []Question{
		{ID: "a", A: 1, B: 0, C: &c},
		{ID: "b", A: 1.5, B: 0},
	}
	got, err := Select(pool, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.QuestionID != "b" {
		t.Errorf("got %s, want b", got.QuestionID)
	}
}

func TestSelect_TieBreakUsesSource(t *testing.T) {
	pool := []Question{
		{ID: "low", A: 0.5, B: 0},
		{ID: "t1", A: 1, B: 0},
		{ID: "t2", A: 1, B: 0},
		{ID: "t3", A: 1, B: 0},
	}
	for i, want := range []string{"t1", "t2", "t3"} {
		s := NewSelector(fixedSource{i: i})
		got, err := s.Select(pool, 0)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if got.QuestionID != want || got.Index != i+1 {
			t.Errorf("source %d: got %s at %d, want %s at %d", i, got.QuestionID, got.Index, want, i+1)
		}
		if got.Ties != 3 {
			t.Errorf("Ties = %d, want 3", got.Ties)
		}
	}
}

func TestSelect_TieBreakIsRoughlyUniform(t *testing.T) {
	pool := []Question{{ID: "x", A: 1, B: 0}, {ID: "y", A: 1, B: 0}}
	s := NewSelector(rand.New(rand.NewPCG(7, 11)))

	const trials = 4000
	counts := make([]int, 2)
	for range trials {
		got, err := s.Select(pool, 0)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if got.Index < 0 || got.Index > 1 {
			t.Fatalf("Index = %d out of range", got.Index)
		}
		counts[got.Index]++
	}
	for i, c := range counts {
		share := float64(c) / trials
		if math.Abs(share-0.5) > 0.05 {
			t.Errorf("index %d chosen %.3f of the time, want about 0.5", i, share)
		}
	}
}

func TestSelect_EntropySourceObservesBothTiedItems(t *testing.T) {
	pool := []Question{{ID: "x", A: 1, B: 0}, {ID: "y", A: 1, B: 0}}
	seen := map[int]bool{}
	for i := 0; i < 200 && len(seen) < 2; i++ {
		got, err := Select(pool, 0)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		seen[got.Index] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("expected both tied items to be chosen, saw %v", seen)
	}
}

func TestSelect_ConcurrentUse(t *testing.T) {
	pool := []Question{{ID: "x", A: 1, B: 0}, {ID: "y", A: 1, B: 0}, {ID: "z", A: 0.4, B: 1}}
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := Select(pool, 0)
				if err != nil {
					errs <- err
					return
				}
				if got.Index > 1 {
					errs <- errors.New("selected a non-maximal item")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSelect_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		pool  []Question
		theta float64
		field string
	}{
		{"nil pool", nil, 0, "questionList"},
		{"empty pool", []Question{}, 0, "questionList"},
		{"duplicate ids", []Question{{ID: "a", A: 1}, {ID: "a", A: 2}}, 0, "questionList"},
		{"missing id", []Question{{A: 1}}, 0, "questionList[0].questionID"},
		{"zero discrimination", []Question{{ID: "a", A: 0}}, 0, "questionList[0].a"},
		{"nan theta", []Question{{ID: "a", A: 1}}, math.NaN(), "latentTraitEstimate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Select(tt.pool, tt.theta)
			var inv *InvalidInputError
			if !errors.As(err, &inv) {
				t.Fatalf("expected *InvalidInputError, got %v", err)
			}
			if inv.Field != tt.field {
				t.Errorf("Field = %q, want %q", inv.Field, tt.field)
			}
		})
	}
}
