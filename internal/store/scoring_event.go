package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var scoringColumns = []string{
	"id", "sequence", "timestamp", "request_id", "kind", "item_count",
	"theta_in", "theta_out", "raw_theta", "standard_error", "iterations",
	"converged", "is_end", "question_id", "item_index", "max_information",
	"latency_us", "success", "error_message",
}

// eventRepo implements EventRepo with ent's SQL builders.
type eventRepo struct {
	db      *sql.DB
	dialect string
}

func (r *eventRepo) AppendScoring(ctx context.Context, data ScoringEventData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	seqNum, err := claimSequence(ctx, tx)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(eventsTable).
		Columns(scoringColumns[1:]...).
		Values(
			seqNum,
			time.Now().UTC(),
			data.RequestID,
			data.Kind,
			data.ItemCount,
			nullFloat(data.ThetaIn),
			nullFloat(data.ThetaOut),
			nullFloat(data.RawTheta),
			nullFloat(data.StandardError),
			data.Iterations,
			data.Converged,
			data.IsEnd,
			data.QuestionID,
			nullInt(data.ItemIndex),
			nullFloat(data.MaxInformation),
			data.LatencyUs,
			data.Success,
			data.ErrorMessage,
		).
		Query()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save scoring event: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepo) QueryScoring(ctx context.Context, opts QueryOpts) ([]ScoringEvent, error) {
	sel := entsql.Dialect(r.dialect).
		Select(scoringColumns...).
		From(entsql.Table(eventsTable)).
		OrderBy(entsql.Desc("sequence"))

	if opts.Kind != "" {
		sel.Where(entsql.EQ("kind", opts.Kind))
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scoring events: %w", err)
	}
	defer rows.Close()

	var events []ScoringEvent
	for rows.Next() {
		var (
			e                                   ScoringEvent
			thetaIn, thetaOut, raw, se, maxInfo sql.NullFloat64
			itemIndex                           sql.NullInt64
		)
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.RequestID, &e.Kind, &e.ItemCount,
			&thetaIn, &thetaOut, &raw, &se, &e.Iterations,
			&e.Converged, &e.IsEnd, &e.QuestionID, &itemIndex, &maxInfo,
			&e.LatencyUs, &e.Success, &e.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan scoring event: %w", err)
		}
		e.ThetaIn = floatPtr(thetaIn)
		e.ThetaOut = floatPtr(thetaOut)
		e.RawTheta = floatPtr(raw)
		e.StandardError = floatPtr(se)
		e.MaxInformation = floatPtr(maxInfo)
		if itemIndex.Valid {
			i := int(itemIndex.Int64)
			e.ItemIndex = &i
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scoring events: %w", err)
	}
	return events, nil
}

// nullFloat stores nil and non-finite values as NULL.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
