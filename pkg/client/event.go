package client

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// NewEvent constructs a pending event of the given kind. Construction is
// pure: nothing is persisted, and every call generates a fresh
// client_event_id. Callers must not recycle or predict ids.
func NewEvent(kind EventType, p AdjustmentParams) (*PendingEvent, error) {
	if strings.TrimSpace(p.ItemID) == "" {
		return nil, &ValidationError{Field: "item_id", Message: "is required"}
	}
	if math.IsNaN(p.DeltaBaseUnits) || math.IsInf(p.DeltaBaseUnits, 0) {
		return nil, &ValidationError{Field: "delta_base_units", Message: "must be finite"}
	}
	if p.DeltaBaseUnits == 0 {
		return nil, &ValidationError{Field: "delta_base_units", Message: "must be non-zero"}
	}

	return &PendingEvent{
		ClientEventID:  uuid.NewString(),
		EventType:      kind,
		ItemID:         p.ItemID,
		DeltaBaseUnits: p.DeltaBaseUnits,
		Notes:          p.Notes,
		PhotoURL:       p.PhotoURL,
	}, nil
}

// NewAdjustment constructs an ADJUSTMENT event.
func NewAdjustment(p AdjustmentParams) (*PendingEvent, error) {
	evt, err := NewEvent(EventAdjustment, p)
	if err != nil {
		return nil, err
	}
	evt.RefType = "adjustment"
	return evt, nil
}
