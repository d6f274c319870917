package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// domain event types
const (
	EventTypeLoanCreated      = "loan_created"
	EventTypeLoanRepaid       = "loan_repaid"
	EventTypeLoanLiquidated   = "loan_liquidated"
	EventTypeExposureWarning  = "exposure_warning"
	EventTypeExposureCritical = "exposure_critical"
)

// Event domain event outbox row, consumed by notification and realtime UI
// collaborators.
type Event struct {
	ID        uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string         `sql:"size:36;unique_index:event_trace_idx" json:"trace_id"`
	Type      string         `sql:"size:32;index:event_type_idx" json:"type"`
	Payload   types.JSONText `sql:"type:varchar(2048)" json:"payload"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// NewEvent build an event with a json payload
func NewEvent(traceID, typ string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		TraceID: traceID,
		Type:    typ,
		Payload: types.JSONText(data),
	}, nil
}

// IEventStore event outbox store interface
type IEventStore interface {
	Create(ctx context.Context, event *Event) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Event, error)
}
