package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	eventsTable   = "scoring_events"
	sequenceTable = "global_sequence"
)

var (
	// ScoringEventsColumns holds the columns of the scoring_events table.
	ScoringEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "request_id", Type: field.TypeString, Default: ""},
		{Name: "kind", Type: field.TypeString},
		{Name: "item_count", Type: field.TypeInt, Default: 0},
		{Name: "theta_in", Type: field.TypeFloat64, Nullable: true},
		{Name: "theta_out", Type: field.TypeFloat64, Nullable: true},
		{Name: "raw_theta", Type: field.TypeFloat64, Nullable: true},
		{Name: "standard_error", Type: field.TypeFloat64, Nullable: true},
		{Name: "iterations", Type: field.TypeInt, Default: 0},
		{Name: "converged", Type: field.TypeBool, Default: false},
		{Name: "is_end", Type: field.TypeBool, Default: false},
		{Name: "question_id", Type: field.TypeString, Default: ""},
		{Name: "item_index", Type: field.TypeInt, Nullable: true},
		{Name: "max_information", Type: field.TypeFloat64, Nullable: true},
		{Name: "latency_us", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
	}
	// ScoringEventsTable holds the schema of the scoring_events table.
	ScoringEventsTable = &schema.Table{
		Name:       eventsTable,
		Columns:    ScoringEventsColumns,
		PrimaryKey: []*schema.Column{ScoringEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "scoringevent_timestamp", Unique: false, Columns: []*schema.Column{ScoringEventsColumns[2]}},
			{Name: "scoringevent_request_id", Unique: false, Columns: []*schema.Column{ScoringEventsColumns[3]}},
			{Name: "scoringevent_kind", Unique: false, Columns: []*schema.Column{ScoringEventsColumns[4]}},
		},
	}
	// GlobalSequenceColumns holds the columns of the global_sequence table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// GlobalSequenceTable holds the schema of the global_sequence table.
	GlobalSequenceTable = &schema.Table{
		Name:       sequenceTable,
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{ScoringEventsTable, GlobalSequenceTable}
)

// migrate creates or updates the schema.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}
