package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/store"
)

// RecordingService is a decorator that appends every scoring call to the
// event log.
type RecordingService struct {
	inner  Service
	repo   store.EventRepo
	logger *zap.Logger
}

// WithRecording wraps a Service with event recording. A nil logger discards
// recording failures.
func WithRecording(s Service, repo store.EventRepo, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingService{inner: s, repo: repo, logger: logger}
}

func (r *RecordingService) Estimate(ctx context.Context, pattern []irt.Response, previous float64) (irt.Estimation, error) {
	start := time.Now()
	est, err := r.inner.Estimate(ctx, pattern, previous)

	data := store.ScoringEventData{
		RequestID: RequestIDFrom(ctx),
		Kind:      store.KindEstimate,
		ItemCount: len(pattern),
		ThetaIn:   &previous,
		LatencyUs: time.Since(start).Microseconds(),
		Success:   err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	} else {
		data.ThetaOut = &est.Theta
		data.RawTheta = &est.RawTheta
		data.StandardError = &est.StandardError
		data.Iterations = est.Iterations
		data.Converged = est.Converged
		data.IsEnd = est.End
	}
	r.append(ctx, data)

	return est, err
}

func (r *RecordingService) Select(ctx context.Context, pool []irt.Question, theta float64) (irt.Selection, error) {
	start := time.Now()
	sel, err := r.inner.Select(ctx, pool, theta)

	data := store.ScoringEventData{
		RequestID: RequestIDFrom(ctx),
		Kind:      store.KindSelect,
		ItemCount: len(pool),
		ThetaIn:   &theta,
		LatencyUs: time.Since(start).Microseconds(),
		Success:   err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	} else {
		data.QuestionID = sel.QuestionID
		data.ItemIndex = &sel.Index
		data.MaxInformation = &sel.MaxInformation
	}
	r.append(ctx, data)

	return sel, err
}

// append records the event but never fails the scoring call.
func (r *RecordingService) append(ctx context.Context, data store.ScoringEventData) {
	// Recording outlives a cancelled request.
	ctx = context.WithoutCancel(ctx)
	if err := r.repo.AppendScoring(ctx, data); err != nil {
		r.logger.Warn("failed to record scoring event",
			zap.String("kind", data.Kind),
			zap.String("request_id", data.RequestID),
			zap.Error(err),
		)
	}
}
