package irt

import "math/rand/v2"

// Question is a candidate item. C is accepted for compatibility with 3PL item
// banks and ignored by the 2PL model.
type Question struct {
	ID string   `json:"questionID" validate:"required"`
	A  float64  `json:"a" validate:"finite,gt=0"`
	B  float64  `json:"b" validate:"finite"`
	C  *float64 `json:"c,omitempty"`
}

// Selection is the result of one ItemSelector call.
type Selection struct {
	QuestionID     string
	Index          int
	MaxInformation float64
	// Ties is the number of items sharing MaxInformation.
	Ties int
}

// RandSource picks tie-break indices. *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type entropySource struct{}

func (entropySource) IntN(n int) int { return rand.IntN(n) }

// EntropySource returns the process-wide, runtime-seeded generator. It is
// safe for concurrent use.
func EntropySource() RandSource { return entropySource{} }

type selectInput struct {
	Pool  []Question `json:"questionList" validate:"required,min=1,unique=ID,dive"`
	Theta float64    `json:"latentTraitEstimate" validate:"finite"`
}

// Selector chooses the most informative item, breaking ties at random.
type Selector struct {
	rand RandSource
}

// NewSelector returns a Selector drawing ties from src. A nil src uses
// EntropySource. A *rand.Rand is not safe for concurrent use; share it
// across goroutines only behind a lock.
func NewSelector(src RandSource) *Selector {
	if src == nil {
		src = EntropySource()
	}
	return &Selector{rand: src}
}

// Select returns the item of pool with the highest information at theta.
// Ties are detected by exact equality with the maximum.
func (s *Selector) Select(pool []Question, theta float64) (Selection, error) {
	if err := validateStruct(&selectInput{Pool: pool, Theta: theta}); err != nil {
		return Selection{}, err
	}

	info := make([]float64, len(pool))
	var best float64
	for i, q := range pool {
		info[i] = Information(q.A, q.B, theta)
		if i == 0 || info[i] > best {
			best = info[i]
		}
	}

	var tied []int
	for i, v := range info {
		if v == best {
			tied = append(tied, i)
		}
	}

	idx := tied[0]
	if len(tied) > 1 {
		idx = tied[s.rand.IntN(len(tied))]
	}
	return Selection{
		QuestionID:     pool[idx].ID,
		Index:          idx,
		MaxInformation: best,
		Ties:           len(tied),
	}, nil
}

var defaultSelector = NewSelector(nil)

// Select runs a Selector backed by EntropySource.
func Select(pool []Question, theta float64) (Selection, error) {
	return defaultSelector.Select(pool, theta)
}
