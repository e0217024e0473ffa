// Package session drives an adaptive test from the caller's side: it owns
// the administered set, the response pattern and the running estimate, and
// asks the scoring service for the next item and the updated trait.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/irtcat/internal/bank"
	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/scoring"
)

var (
	// ErrDone is returned by Next once the test has ended.
	ErrDone = errors.New("session: test has ended")
	// ErrNoCurrentItem is returned by Record when no item is outstanding.
	ErrNoCurrentItem = errors.New("session: no item awaiting a response")
)

// EndReason says why a test stopped.
type EndReason int

const (
	EndNone          EndReason = iota // Still running
	EndPrecision                      // Estimator reported isEnd
	EndPoolExhausted                  // Every item administered
	EndMaxItems                       // Item cap reached
)

func (r EndReason) String() string {
	switch r {
	case EndPrecision:
		return "precision reached"
	case EndPoolExhausted:
		return "item pool exhausted"
	case EndMaxItems:
		return "item limit reached"
	default:
		return "in progress"
	}
}

// Config tunes a session.
type Config struct {
	// MaxItems caps the test length. Zero means no cap.
	MaxItems int
	// StartTheta is the estimate used to pick the first item.
	StartTheta float64
}

// Session tracks the runtime state of one adaptive test.
type Session struct {
	// ID is the UUID for this session.
	ID string

	// Theta is the current latent trait estimate.
	Theta float64

	// Responses is the response pattern so far, in administration order.
	Responses []irt.Response

	// Last is the most recent estimation (nil before the first response).
	Last *irt.Estimation

	// Current is the item awaiting a response (nil between items).
	Current *bank.Item

	// Trajectory holds Theta after each response.
	Trajectory []float64

	// TotalCorrect is the count of correct answers so far.
	TotalCorrect int

	// StartTime is when the session began.
	StartTime time.Time

	bank         *bank.Bank
	scorer       scoring.Service
	cfg          Config
	administered map[string]bool
	reason       EndReason
}

// New creates a session over b scoring through svc.
func New(b *bank.Bank, svc scoring.Service, cfg Config) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Theta:        cfg.StartTheta,
		StartTime:    time.Now(),
		bank:         b,
		scorer:       svc,
		cfg:          cfg,
		administered: make(map[string]bool, b.Len()),
	}
}

// Next selects the most informative unadministered item at the current
// estimate and marks it outstanding. Calling Next again before Record
// returns the same item.
func (s *Session) Next(ctx context.Context) (bank.Item, error) {
	if s.Current != nil {
		return *s.Current, nil
	}
	if s.Done() {
		return bank.Item{}, ErrDone
	}

	var (
		pool  []irt.Question
		items []bank.Item
	)
	for _, it := range s.bank.Items {
		if !s.administered[it.ID] {
			pool = append(pool, it.Question())
			items = append(items, it)
		}
	}

	sel, err := s.scorer.Select(ctx, pool, s.Theta)
	if err != nil {
		return bank.Item{}, fmt.Errorf("select item: %w", err)
	}

	it := items[sel.Index]
	s.Current = &it
	return it, nil
}

// Record scores the outstanding item and updates the estimate.
func (s *Session) Record(ctx context.Context, correct bool) (irt.Estimation, error) {
	if s.Current == nil {
		return irt.Estimation{}, ErrNoCurrentItem
	}

	pattern := append(s.Responses, s.Current.Response(correct))
	est, err := s.scorer.Estimate(ctx, pattern, s.Theta)
	if err != nil {
		return irt.Estimation{}, fmt.Errorf("estimate trait: %w", err)
	}

	s.administered[s.Current.ID] = true
	s.Responses = pattern
	s.Current = nil
	if correct {
		s.TotalCorrect++
	}
	s.Theta = est.Theta
	s.Last = &est
	s.Trajectory = append(s.Trajectory, est.Theta)
	s.updateReason()

	return est, nil
}

// Answer checks answer against the outstanding item and records the result.
func (s *Session) Answer(ctx context.Context, answer string) (bool, irt.Estimation, error) {
	if s.Current == nil {
		return false, irt.Estimation{}, ErrNoCurrentItem
	}
	correct := s.Current.Check(answer)
	est, err := s.Record(ctx, correct)
	return correct, est, err
}

// Done reports whether the test has ended.
func (s *Session) Done() bool {
	return s.reason != EndNone
}

// Reason returns why the test ended, or EndNone.
func (s *Session) Reason() EndReason {
	return s.reason
}

// Administered returns the number of items answered.
func (s *Session) Administered() int {
	return len(s.Responses)
}

// Remaining returns the number of items never administered.
func (s *Session) Remaining() int {
	return s.bank.Len() - len(s.administered)
}

// updateReason applies the stopping rules in priority order.
func (s *Session) updateReason() {
	switch {
	case s.Last != nil && s.Last.End:
		s.reason = EndPrecision
	case s.cfg.MaxItems > 0 && len(s.Responses) >= s.cfg.MaxItems:
		s.reason = EndMaxItems
	case s.Remaining() == 0:
		s.reason = EndPoolExhausted
	}
}
