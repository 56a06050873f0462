package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/storeops/tally/internal/sync"
	"github.com/storeops/tally/internal/types"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func eventIn(itemID string, delta float64) sync.EventIn {
	return sync.EventIn{
		ClientEventID:  uuid.NewString(),
		EventType:      sync.EventAdjustment,
		ItemID:         itemID,
		DeltaBaseUnits: delta,
	}
}

func TestInsertEvents_CountsOnlyNewRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch := []sync.EventIn{eventIn("item-1", 3), eventIn("item-2", -2)}
	inserted, err := s.InsertEvents(ctx, "device-1", batch)
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", inserted)
	}

	// Replaying the same batch is a no-op.
	inserted, err = s.InsertEvents(ctx, "device-1", batch)
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 0 {
		t.Errorf("expected 0 inserted on replay, got %d", inserted)
	}

	count, err := s.EventCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 stored events after replay, got %d", count)
	}
}

func TestInsertEvents_PartialReplay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := eventIn("item-1", 1)
	if _, err := s.InsertEvents(ctx, "device-1", []sync.EventIn{first}); err != nil {
		t.Fatal(err)
	}

	// A retry batch mixing one already-stored and one new event inserts
	// only the new one.
	inserted, err := s.InsertEvents(ctx, "device-1", []sync.EventIn{first, eventIn("item-2", 2)})
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 1 {
		t.Errorf("expected 1 inserted from mixed batch, got %d", inserted)
	}
}

func TestInsertEvents_EmptyBatch(t *testing.T) {
	s := openTestStore(t)

	inserted, err := s.InsertEvents(context.Background(), "device-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 0 {
		t.Errorf("expected 0 inserted for empty batch, got %d", inserted)
	}
}

func TestEventsSince_StrictlyAfterAscending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertEvents(ctx, "device-1", []sync.EventIn{eventIn("item-1", 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertEvents(ctx, "device-1", []sync.EventIn{eventIn("item-2", 2)}); err != nil {
		t.Fatal(err)
	}

	all, err := s.EventsSince(ctx, "1970-01-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events from epoch, got %d", len(all))
	}
	if all[0].CreatedAt > all[1].CreatedAt {
		t.Errorf("events not ascending: %q then %q", all[0].CreatedAt, all[1].CreatedAt)
	}

	// The boundary is exclusive: asking since the last event's timestamp
	// returns nothing.
	after, err := s.EventsSince(ctx, all[1].CreatedAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 0 {
		t.Errorf("expected no events strictly after the last timestamp, got %d", len(after))
	}
}

func TestEventsSince_InterleavedDevices(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertEvents(ctx, "device-1", []sync.EventIn{eventIn("item-1", 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertEvents(ctx, "device-2", []sync.EventIn{eventIn("item-1", -1)}); err != nil {
		t.Fatal(err)
	}

	events, err := s.EventsSince(ctx, "1970-01-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected events from both devices, got %d", len(events))
	}
	devices := map[string]bool{}
	for _, e := range events {
		devices[e.DeviceID] = true
	}
	if !devices["device-1"] || !devices["device-2"] {
		t.Errorf("expected device_id preserved per event, got %+v", devices)
	}
}

func TestOnHand_SumsDeltasPerItem(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch := []sync.EventIn{
		eventIn("item-1", 10),
		eventIn("item-1", -3),
		eventIn("item-2", 5),
	}
	if _, err := s.InsertEvents(ctx, "device-1", batch); err != nil {
		t.Fatal(err)
	}

	totals, err := s.OnHand(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if totals["item-1"] != 7 {
		t.Errorf("expected item-1 on hand 7, got %v", totals["item-1"])
	}
	if totals["item-2"] != 5 {
		t.Errorf("expected item-2 on hand 5, got %v", totals["item-2"])
	}
}

func TestSettings_SeedAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSettings(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before seeding, got %v", err)
	}

	seed := types.Settings{StoreNumber: "3729", StoreLabel: "Store #3729", Intersection: "Gilbert & Baseline"}
	if err := s.SeedSettings(ctx, seed); err != nil {
		t.Fatal(err)
	}
	// Second seed must not overwrite.
	if err := s.SeedSettings(ctx, types.Settings{StoreNumber: "9999"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.StoreNumber != "3729" || got.Intersection != "Gilbert & Baseline" {
		t.Errorf("unexpected settings %+v", got)
	}
}

func TestItems_CreateGetUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	unitID, err := s.CreateUnit(ctx, "each")
	if err != nil {
		t.Fatal(err)
	}
	locID, err := s.CreateLocation(ctx, "walk-in")
	if err != nil {
		t.Fatal(err)
	}

	caseSize := 24.0
	id, err := s.CreateItem(ctx, types.ItemParams{
		Name:              "Cups 16oz",
		BaseUnitID:        unitID,
		CaseSize:          &caseSize,
		DefaultLocationID: &locID,
		Active:            true,
	})
	if err != nil {
		t.Fatal(err)
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if item.Name != "Cups 16oz" || item.CaseSize == nil || *item.CaseSize != 24 {
		t.Errorf("unexpected item %+v", item)
	}
	if item.DefaultLocationID == nil || *item.DefaultLocationID != locID {
		t.Errorf("expected default location %s, got %v", locID, item.DefaultLocationID)
	}

	err = s.UpdateItem(ctx, id, types.ItemParams{
		Name:       "Cups 16oz",
		BaseUnitID: unitID,
		Active:     false,
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.GetItem(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Active {
		t.Error("expected item deactivated")
	}
	if updated.CaseSize != nil {
		t.Error("expected case size cleared by full-field update")
	}
}

func TestItems_ListFiltersInactive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	unitID, err := s.CreateUnit(ctx, "each")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateItem(ctx, types.ItemParams{Name: "Active", BaseUnitID: unitID, Active: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateItem(ctx, types.ItemParams{Name: "Retired", BaseUnitID: unitID, Active: false}); err != nil {
		t.Fatal(err)
	}

	active, err := s.ListItems(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].Name != "Active" {
		t.Errorf("expected only the active item, got %+v", active)
	}

	all, err := s.ListItems(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 items with include_inactive, got %d", len(all))
	}
}

func TestItems_GetMissing(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetItem(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateItem(context.Background(), "no-such-id", types.ItemParams{Name: "x", BaseUnitID: "u"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestAuthSecret_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, _, err := s.GetAuthSecret(ctx); !errors.Is(err, ErrAuthNotInitialized) {
		t.Fatalf("expected ErrAuthNotInitialized, got %v", err)
	}

	if err := s.InitAuthSecret(ctx, "store", "hash-1"); err != nil {
		t.Fatal(err)
	}
	// Init is first-write-wins.
	if err := s.InitAuthSecret(ctx, "other", "hash-2"); err != nil {
		t.Fatal(err)
	}

	username, hash, err := s.GetAuthSecret(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if username != "store" || hash != "hash-1" {
		t.Errorf("expected first credential kept, got %s/%s", username, hash)
	}

	if err := s.SetAuthSecret(ctx, "store", "hash-3"); err != nil {
		t.Fatal(err)
	}
	_, hash, err = s.GetAuthSecret(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if hash != "hash-3" {
		t.Errorf("expected rotated hash, got %s", hash)
	}
}

func TestUnitsAndLocations_OrderedByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"ounce", "case", "each"} {
		if _, err := s.CreateUnit(ctx, name); err != nil {
			t.Fatal(err)
		}
	}

	units, err := s.ListUnits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 3 || units[0].Name != "case" || units[2].Name != "ounce" {
		t.Errorf("expected units ordered by name, got %+v", units)
	}

	if _, err := s.CreateLocation(ctx, "backroom"); err != nil {
		t.Fatal(err)
	}
	locations, err := s.ListLocations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(locations) != 1 || locations[0].Name != "backroom" {
		t.Errorf("unexpected locations %+v", locations)
	}
}
