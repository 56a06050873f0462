package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/storeops/tally/internal/sync"
	"github.com/storeops/tally/internal/validation"
)

// MaxPushEvents is the maximum events per push batch.
const MaxPushEvents = 1000

// SyncPush handles POST /sync/push.
//
// The batch is applied in one transaction; events whose client_event_id is
// already stored are skipped, so a client retrying after a lost response
// never duplicates effects. The inserted count reflects new rows only.
func (h *Handler) SyncPush(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req sync.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	if errs := validatePushRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Push batch contains invalid fields", errs)
		return
	}

	inserted, err := h.store.InsertEvents(r.Context(), req.DeviceID, req.Events)
	if err != nil {
		slog.Error("push transaction failed",
			"component", "api",
			"action", "sync_push_failed",
			"device_id", req.DeviceID,
			"events", len(req.Events),
			"error", err,
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Push failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sync.PushResponse{Inserted: inserted})

	slog.Info("push completed",
		"component", "api",
		"action", "sync_push",
		"device_id", req.DeviceID,
		"events", len(req.Events),
		"inserted", inserted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// SyncPull handles GET /sync/pull. Returns events created strictly after
// the `since` watermark, ascending by creation time.
func (h *Handler) SyncPull(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	since := r.URL.Query().Get("since")
	if since == "" {
		since = "1970-01-01T00:00:00Z"
	}

	events, err := h.store.EventsSince(r.Context(), since)
	if err != nil {
		slog.Error("pull query failed",
			"component", "api",
			"action", "sync_pull_failed",
			"since", since,
			"error", err,
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	resp := sync.PullResponse{Events: events}
	// Ensure events is [] not null in JSON
	if resp.Events == nil {
		resp.Events = []sync.EventOut{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)

	slog.Info("pull served",
		"component", "api",
		"action", "sync_pull",
		"since", since,
		"events_returned", len(events),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// validatePushRequest validates the push batch structure.
func validatePushRequest(req sync.PushRequest) []validation.ValidationError {
	var c validation.Collector
	c.Add(validation.ValidateRequired("device_id", req.DeviceID))
	c.Add(validation.ValidateMaxLength("device_id", req.DeviceID, 128))

	if len(req.Events) > MaxPushEvents {
		c.Add(&validation.ValidationError{
			Field:   "events",
			Message: fmt.Sprintf("exceeds maximum of %d events", MaxPushEvents),
		})
	}

	for i, e := range req.Events {
		field := func(name string) string { return fmt.Sprintf("events[%d].%s", i, name) }
		c.Add(validation.ValidateRequired(field("client_event_id"), e.ClientEventID))
		c.Add(validation.ValidateUUID(field("client_event_id"), e.ClientEventID))
		c.Add(validation.ValidateEnum(field("event_type"), e.EventType, sync.EventTypes))
		c.Add(validation.ValidateRequired(field("item_id"), e.ItemID))
		c.Add(validation.ValidateFiniteNonZero(field("delta_base_units"), e.DeltaBaseUnits))
		c.Add(validation.ValidateMaxLength(field("notes"), e.Notes, 2000))
	}
	return c.Errors()
}
