package session

import (
	"math"
	"time"
)

// Summary holds the data displayed when a test ends.
type Summary struct {
	SessionID      string
	Duration       time.Duration
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
	Theta          float64
	// StandardError is NaN before the first response.
	StandardError float64
	Reason        EndReason
	Trajectory    []float64
}

// BuildSummary creates a Summary from the current session state.
func BuildSummary(s *Session) *Summary {
	var accuracy float64
	if n := s.Administered(); n > 0 {
		accuracy = float64(s.TotalCorrect) / float64(n)
	}

	se := math.NaN()
	if s.Last != nil {
		se = s.Last.StandardError
	}

	return &Summary{
		SessionID:      s.ID,
		Duration:       time.Since(s.StartTime),
		TotalQuestions: s.Administered(),
		TotalCorrect:   s.TotalCorrect,
		Accuracy:       accuracy,
		Theta:          s.Theta,
		StandardError:  se,
		Reason:         s.Reason(),
		Trajectory:     append([]float64(nil), s.Trajectory...),
	}
}
