package data

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"frontoffice/internal/logger"
)

func TestMain(m *testing.M) {
	logger.UseWriter(io.Discard)
	os.Exit(m.Run())
}

const sampleDeals = `[
	{"id":"d1","sponsor":"Acme","assets":["Outfield Sign","Radio Spot"],"start":"2025-01-01","end":"2026-12-31",
	 "budget":"$5,000","actualValue":"$4,500.00","paymentMethod":"Check","paymentStatus":"Paid","status":"Signed"},
	{"id":"d2","sponsor":"Bolt","assets":[],"start":"","end":"","budget":"","actualValue":"","paymentMethod":"Credit Card",
	 "processingFee":"$12.30","paymentStatus":"Pending","status":"Negotiating"}
]`

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlStore, err := OpenSQL(context.Background(), DialectSQLite, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "db.json")),
		"sqlite": sqlStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			snap, err := store.Get(ctx)
			if err != nil {
				t.Fatalf("Get on empty store: %v", err)
			}
			if len(snap.Deals) != 0 || snap.Deals == nil {
				t.Fatalf("expected empty non-nil deals, got %#v", snap.Deals)
			}

			if err := store.Set(ctx, KeyDeals, json.RawMessage(sampleDeals)); err != nil {
				t.Fatalf("Set deals: %v", err)
			}
			if err := store.Set(ctx, KeyCategories, json.RawMessage(`["Signage","Digital"]`)); err != nil {
				t.Fatalf("Set categories: %v", err)
			}
			sales := `[{"id":"s1","gameId":"g1","customer":"Pat","quantity":4,"section":"A","price":"$40.00","status":"Paid"}]`
			if err := store.Set(ctx, KeySingleGameSales, json.RawMessage(sales)); err != nil {
				t.Fatalf("Set sales: %v", err)
			}

			snap, err = store.Get(ctx)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(snap.Deals) != 2 {
				t.Fatalf("expected 2 deals, got %d", len(snap.Deals))
			}
			if snap.Deals[0].ID != "d1" || snap.Deals[1].ID != "d2" {
				t.Errorf("deal order not preserved: %s, %s", snap.Deals[0].ID, snap.Deals[1].ID)
			}
			if got := strings.Join(snap.Deals[0].Assets, "|"); got != "Outfield Sign|Radio Spot" {
				t.Errorf("assets = %q", got)
			}
			if snap.Deals[1].Assets == nil {
				t.Error("empty asset list decoded as nil")
			}
			if snap.Deals[1].ProcessingFee != "$12.30" {
				t.Errorf("processingFee = %q", snap.Deals[1].ProcessingFee)
			}
			if strings.Join(snap.Categories, ",") != "Signage,Digital" {
				t.Errorf("categories = %v", snap.Categories)
			}
			if len(snap.SingleGameSales) != 1 || snap.SingleGameSales[0].Quantity != 4 {
				t.Errorf("sales = %#v", snap.SingleGameSales)
			}

			// Replacing a collection drops rows that are no longer present.
			if err := store.Set(ctx, KeyDeals, json.RawMessage(`[]`)); err != nil {
				t.Fatalf("Set empty deals: %v", err)
			}
			snap, err = store.Get(ctx)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(snap.Deals) != 0 {
				t.Errorf("expected deals cleared, got %d", len(snap.Deals))
			}
			if len(snap.Categories) != 2 {
				t.Errorf("unrelated collection changed: %v", snap.Categories)
			}
		})
	}
}

func TestStoreRejectsUnknownCollection(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Set(context.Background(), "widgets", json.RawMessage(`[]`))
			if !errors.Is(err, ErrUnknownCollection) {
				t.Errorf("expected ErrUnknownCollection, got %v", err)
			}
		})
	}
}

func TestFileStoreKeepsUnknownKeysAndDropsLegacyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	legacy := `{"inventory":[{"id":"i1","name":"Banner","category":"Signage","value":"$100","status":"Sold","sponsor":"Acme"}],"notes":{"keep":true}}`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	ctx := context.Background()

	snap, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(snap.Inventory) != 1 || snap.Inventory[0].Name != "Banner" {
		t.Fatalf("inventory = %#v", snap.Inventory)
	}

	raw, err := snap.Raw(KeyInventory)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, KeyInventory, raw); err != nil {
		t.Fatalf("Set: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(written, &doc); err != nil {
		t.Fatalf("written file is not JSON: %v", err)
	}
	if _, ok := doc["notes"]; !ok {
		t.Error("unknown key was dropped")
	}
	if strings.Contains(string(doc["inventory"]), "Sold") {
		t.Errorf("legacy status persisted: %s", doc["inventory"])
	}
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := NewFileStore(filepath.Join(dir, "db.json"))
	if err := src.Set(ctx, KeyDeals, json.RawMessage(sampleDeals)); err != nil {
		t.Fatal(err)
	}
	if err := src.Set(ctx, KeyUsers, json.RawMessage(`[{"id":"u1","name":"Admin","email":"a@b.c","password":"pw","role":"admin"}]`)); err != nil {
		t.Fatal(err)
	}

	dst, err := OpenSQL(ctx, DialectSQLite, filepath.Join(dir, "copy.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	if err := Copy(ctx, src, dst); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	snap, err := dst.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Deals) != 2 || len(snap.Users) != 1 || snap.Users[0].Email != "a@b.c" {
		t.Errorf("copied snapshot incomplete: %d deals, %#v", len(snap.Deals), snap.Users)
	}
}

func TestRebindPostgres(t *testing.T) {
	s := &SQLStore{dialect: DialectPostgres}
	got := s.rebind("INSERT INTO t (a, b) VALUES (?, ?)")
	if got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Errorf("rebind = %q", got)
	}

	s.dialect = DialectMySQL
	if got := s.rebind("SELECT ?"); got != "SELECT ?" {
		t.Errorf("mysql rebind changed query: %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	snap := NewSnapshot()
	snap.Deals = []Deal{{ID: "d1", Assets: []string{"A"}}}

	c := snap.Clone()
	c.Deals[0].Assets[0] = "B"
	if snap.Deals[0].Assets[0] != "A" {
		t.Error("clone shares asset slice with original")
	}
}
