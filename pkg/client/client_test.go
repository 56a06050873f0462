package client

import (
	"context"
	"testing"
)

func newOfflineClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Config{DataDir: t.TempDir(), OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_QueueAdjustmentPersists(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Config{DataDir: dir, OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.QueueAdjustment(AdjustmentParams{ItemID: "item-1", DeltaBaseUnits: 4}); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(Config{DataDir: dir, OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	stats, err := reopened.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.PendingCount != 1 {
		t.Errorf("expected 1 pending event after reopen, got %d", stats.PendingCount)
	}
}

func TestClient_QueueAdjustmentRejectsInvalid(t *testing.T) {
	c := newOfflineClient(t)

	if _, err := c.QueueAdjustment(AdjustmentParams{ItemID: "item-1", DeltaBaseUnits: 0}); err == nil {
		t.Error("expected zero delta to be rejected")
	}
	if _, err := c.QueueAdjustment(AdjustmentParams{DeltaBaseUnits: 1}); err == nil {
		t.Error("expected missing item id to be rejected")
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.PendingCount != 0 {
		t.Errorf("expected rejected events not to be queued, got %d pending", stats.PendingCount)
	}
}

func TestClient_OfflineModeSkipsSync(t *testing.T) {
	c := newOfflineClient(t)

	stats, err := c.Sync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pushed != 0 || stats.Pulled != 0 {
		t.Errorf("expected no-op sync in offline mode, got %+v", stats)
	}
}

func TestClient_DeviceIDStableAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Config{DataDir: dir, OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	first := c.DeviceID()
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(Config{DataDir: dir, OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if reopened.DeviceID() != first {
		t.Errorf("device id changed across reopen: %q then %q", first, reopened.DeviceID())
	}
}

func TestClient_ClosedClientRejectsOperations(t *testing.T) {
	c, err := New(Config{DataDir: t.TempDir(), OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	if _, err := c.QueueAdjustment(AdjustmentParams{ItemID: "item-1", DeltaBaseUnits: 1}); err == nil {
		t.Error("expected queue on closed client to fail")
	}
	if _, err := c.Sync(context.Background()); err == nil {
		t.Error("expected sync on closed client to fail")
	}
	if _, err := c.Stats(); err == nil {
		t.Error("expected stats on closed client to fail")
	}
}
