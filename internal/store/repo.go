package store

import (
	"context"
	"time"
)

// Event kinds.
const (
	KindEstimate = "estimate"
	KindSelect   = "select"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	Kind   string    // exact kind match ("" = any)
}

// ScoringEventData captures one scoring call. Pointer fields are nil when
// they do not apply or are not finite.
type ScoringEventData struct {
	RequestID      string
	Kind           string
	ItemCount      int
	ThetaIn        *float64
	ThetaOut       *float64
	RawTheta       *float64
	StandardError  *float64
	Iterations     int
	Converged      bool
	IsEnd          bool
	QuestionID     string
	ItemIndex      *int
	MaxInformation *float64
	LatencyUs      int64
	Success        bool
	ErrorMessage   string
}

// ScoringEvent is a stored ScoringEventData.
type ScoringEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	ScoringEventData
}

// EventRepo provides append and query access to scoring events.
type EventRepo interface {
	// AppendScoring records a scoring call.
	AppendScoring(ctx context.Context, data ScoringEventData) error

	// QueryScoring returns events newest first.
	QueryScoring(ctx context.Context, opts QueryOpts) ([]ScoringEvent, error)
}
