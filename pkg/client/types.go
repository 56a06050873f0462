package client

import (
	"time"
)

// EventType identifies the kind of inventory mutation an event records.
type EventType string

const (
	EventAdjustment  EventType = "ADJUSTMENT"
	EventCountSet    EventType = "COUNT_SET"
	EventTruckAdd    EventType = "TRUCK_ADD"
	EventWasteSub    EventType = "WASTE_SUB"
	EventTransferOut EventType = "TRANSFER_OUT_SUB"
	EventTransferIn  EventType = "TRANSFER_IN_ADD"
)

// Config holds the Tally client configuration
type Config struct {
	DataDir      string        // Directory for the outbox database and device identity
	BaseURL      string        // Central inventory service URL
	Token        string        // Bearer token from Login
	SyncInterval time.Duration // Background sync interval (default: 5 minutes)
	AutoSync     bool          // Enable automatic background sync
	OfflineMode  bool          // Never touch the network
}

// PendingEvent is a single queued mutation awaiting delivery to the server.
// ClientEventID is generated once at construction and acts as the server-side
// idempotency key; it is never reused.
type PendingEvent struct {
	ClientEventID  string    `json:"client_event_id"`
	EventType      EventType `json:"event_type"`
	ItemID         string    `json:"item_id"`
	DeltaBaseUnits float64   `json:"delta_base_units"`
	Notes          string    `json:"notes,omitempty"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	RefType        string    `json:"ref_type,omitempty"`
	RefID          string    `json:"ref_id,omitempty"`
}

// RemoteEvent is an event as echoed back by the server during pull.
// CreatedAt is the server's receipt timestamp, kept verbatim because it is
// the pull watermark; reformatting it client-side could skip events on the
// strictly-after boundary.
type RemoteEvent struct {
	ID             string    `json:"id"`
	EventType      EventType `json:"event_type"`
	ItemID         string    `json:"item_id"`
	DeltaBaseUnits float64   `json:"delta_base_units"`
	Notes          string    `json:"notes,omitempty"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	RefType        string    `json:"ref_type,omitempty"`
	RefID          string    `json:"ref_id,omitempty"`
	ClientEventID  string    `json:"client_event_id"`
	DeviceID       string    `json:"device_id"`
	CreatedAt      string    `json:"created_at"`
}

// AdjustmentParams holds parameters for constructing an adjustment event.
type AdjustmentParams struct {
	ItemID         string  // Item being adjusted
	DeltaBaseUnits float64 // Signed quantity in base units; finite, non-zero
	Notes          string  // Optional free text
	PhotoURL       string  // Optional supporting photo reference
}

// PushResult reports the outcome of one push round.
type PushResult struct {
	Inserted int `json:"inserted"`
}

// SyncStats holds the outcome of a full sync cycle.
type SyncStats struct {
	Pushed   int
	Pulled   int
	Duration time.Duration
}

// StoreStats describes the local store for status displays.
type StoreStats struct {
	PendingCount int
	LastPull     string
	DeviceID     string
}

// Settings is the store-level reference data served by the central service.
type Settings struct {
	StoreNumber  string `json:"store_number"`
	StoreLabel   string `json:"store_label"`
	Intersection string `json:"intersection"`
}

// Unit is a unit of measure.
type Unit struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Location is a storage location.
type Location struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Item is a catalog item. Optional numeric fields are pointers so absent and
// zero are distinguishable at the boundary.
type Item struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	BaseUnitID        string   `json:"base_unit_id"`
	CaseSize          *float64 `json:"case_size"`
	AllowPartials     bool     `json:"allow_partials"`
	ParLevel          *float64 `json:"par_level"`
	LowThreshold      *float64 `json:"low_threshold"`
	DefaultLocationID *string  `json:"default_location_id"`
	Active            bool     `json:"active"`
}

// ItemParams holds fields for creating or updating an item.
type ItemParams struct {
	Name              string   `json:"name"`
	BaseUnitID        string   `json:"base_unit_id"`
	CaseSize          *float64 `json:"case_size,omitempty"`
	AllowPartials     bool     `json:"allow_partials"`
	ParLevel          *float64 `json:"par_level,omitempty"`
	LowThreshold      *float64 `json:"low_threshold,omitempty"`
	DefaultLocationID *string  `json:"default_location_id,omitempty"`
	Active            bool     `json:"active"`
}
