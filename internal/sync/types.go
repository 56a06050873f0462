package sync

// Event type tags accepted on push.
const (
	EventAdjustment  = "ADJUSTMENT"
	EventCountSet    = "COUNT_SET"
	EventTruckAdd    = "TRUCK_ADD"
	EventWasteSub    = "WASTE_SUB"
	EventTransferOut = "TRANSFER_OUT_SUB"
	EventTransferIn  = "TRANSFER_IN_ADD"
)

// EventTypes lists every accepted event type tag.
var EventTypes = []string{
	EventAdjustment,
	EventCountSet,
	EventTruckAdd,
	EventWasteSub,
	EventTransferOut,
	EventTransferIn,
}

// EventIn is a client-queued event as it arrives in a push batch.
// ClientEventID is the idempotency key: a batch retried after a partially
// observed success inserts each event at most once.
type EventIn struct {
	ClientEventID  string  `json:"client_event_id"`
	EventType      string  `json:"event_type"`
	ItemID         string  `json:"item_id"`
	DeltaBaseUnits float64 `json:"delta_base_units"`
	Notes          string  `json:"notes,omitempty"`
	PhotoURL       string  `json:"photo_url,omitempty"`
	RefType        string  `json:"ref_type,omitempty"`
	RefID          string  `json:"ref_id,omitempty"`
}

// EventOut is an event as served on pull: the client payload plus the
// server-assigned id, receipt timestamp, and the pushing device's identity.
type EventOut struct {
	ID             string  `json:"id"`
	EventType      string  `json:"event_type"`
	ItemID         string  `json:"item_id"`
	DeltaBaseUnits float64 `json:"delta_base_units"`
	Notes          string  `json:"notes,omitempty"`
	PhotoURL       string  `json:"photo_url,omitempty"`
	RefType        string  `json:"ref_type,omitempty"`
	RefID          string  `json:"ref_id,omitempty"`
	ClientEventID  string  `json:"client_event_id"`
	DeviceID       string  `json:"device_id"`
	CreatedAt      string  `json:"created_at"`
}

// PushRequest is the body of POST /sync/push. The device identity is batch
// metadata, deliberately outside the events themselves.
type PushRequest struct {
	DeviceID string    `json:"device_id"`
	Events   []EventIn `json:"events"`
}

// PushResponse reports how many events were newly inserted. Replays of
// already-acknowledged ids are skipped and not counted.
type PushResponse struct {
	Inserted int `json:"inserted"`
}

// PullResponse carries events created strictly after the requested
// watermark, ascending by creation time.
type PullResponse struct {
	Events []EventOut `json:"events"`
}
