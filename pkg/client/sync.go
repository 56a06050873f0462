package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Syncer orchestrates push and pull rounds against the central service.
// The device identity is injected explicitly rather than read from ambient
// storage, so the engine is testable with arbitrary identities.
type Syncer struct {
	baseURL  string
	token    string
	deviceID string
	store    *Store
	client   *http.Client
}

// NewSyncer creates a Syncer bound to one store and one device identity.
func NewSyncer(baseURL, token, deviceID string, store *Store) *Syncer {
	return &Syncer{
		baseURL:  baseURL,
		token:    token,
		deviceID: deviceID,
		store:    store,
		client:   newHTTPClient(),
	}
}

type pushRequest struct {
	DeviceID string         `json:"device_id"`
	Events   []PendingEvent `json:"events"`
}

type pullResponse struct {
	Events []RemoteEvent `json:"events"`
}

// Push sends every currently queued event to the server in one batch.
//
// The set of ids being sent is snapshotted before the remote call: events
// appended while the call is in flight are not eligible for removal and ride
// along on the next round. On any failure the outbox is left untouched, so
// delivery is at-least-once; the server deduplicates on client_event_id.
func (s *Syncer) Push(ctx context.Context) (*PushResult, error) {
	events, err := s.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	if len(events) == 0 {
		// Nothing queued: no remote call at all.
		return &PushResult{Inserted: 0}, nil
	}

	ids := make([]string, len(events))
	for i, evt := range events {
		ids[i] = evt.ClientEventID
	}

	var result PushResult
	req := pushRequest{DeviceID: s.deviceID, Events: events}
	if err := doJSON(ctx, s.client, http.MethodPost, s.baseURL+"/sync/push", s.token, req, &result); err != nil {
		return nil, fmt.Errorf("push batch: %w", err)
	}

	// Remove only the snapshotted ids, never "whatever is queued now".
	if err := s.store.RemoveByIDs(ids); err != nil {
		return nil, fmt.Errorf("clear pushed events: %w", err)
	}
	return &result, nil
}

// Pull requests all remote events created strictly after the persisted
// watermark and advances the watermark to the newest event returned. The
// events are handed back to the caller for downstream application; this
// engine never applies them to a local projection. On failure the cursor is
// left untouched and the next pull re-requests from the same watermark.
func (s *Syncer) Pull(ctx context.Context) ([]RemoteEvent, error) {
	since, err := s.store.LastPull()
	if err != nil {
		return nil, fmt.Errorf("read pull cursor: %w", err)
	}

	var resp pullResponse
	endpoint := s.baseURL + "/sync/pull?since=" + url.QueryEscape(since)
	if err := doJSON(ctx, s.client, http.MethodGet, endpoint, s.token, nil, &resp); err != nil {
		return nil, fmt.Errorf("pull since %s: %w", since, err)
	}

	if len(resp.Events) > 0 {
		// The cursor only ever moves forward; both sides are ISO-8601 UTC,
		// so lexical comparison matches chronological order.
		last := resp.Events[len(resp.Events)-1].CreatedAt
		if last > since {
			if err := s.store.SetMeta(metaLastPull, last); err != nil {
				return nil, fmt.Errorf("advance pull cursor: %w", err)
			}
		}
	}
	return resp.Events, nil
}

// Sync runs one push round then one pull round. The rounds fail
// independently: a push failure does not suppress the pull, and vice versa.
func (s *Syncer) Sync(ctx context.Context) (*SyncStats, error) {
	start := time.Now()
	stats := &SyncStats{}

	pushResult, pushErr := s.Push(ctx)
	if pushErr == nil {
		stats.Pushed = pushResult.Inserted
	}

	events, pullErr := s.Pull(ctx)
	if pullErr == nil {
		stats.Pulled = len(events)
	}

	stats.Duration = time.Since(start)
	if pushErr != nil {
		return stats, pushErr
	}
	return stats, pullErr
}
