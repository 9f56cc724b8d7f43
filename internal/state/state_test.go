package state

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
)

func TestMain(m *testing.M) {
	logger.UseWriter(io.Discard)
	os.Exit(m.Run())
}

// failingStore reads like a normal store but refuses selected writes.
type failingStore struct {
	data.Store
	failKeys map[string]bool
}

func (f *failingStore) Set(ctx context.Context, key string, raw json.RawMessage) error {
	if f.failKeys[key] {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, raw)
}

func newState(t *testing.T) (*State, *data.FileStore) {
	t.Helper()
	ctx := context.Background()
	store := data.NewFileStore(filepath.Join(t.TempDir(), "db.json"))

	seed := map[string]string{
		data.KeyInventory: `[
			{"id":"i1","name":"Outfield Sign","category":"Signage","value":"$5,000"},
			{"id":"i2","name":"Radio Spot","category":"Media","value":"$1,500"}]`,
		data.KeyDeals: `[
			{"id":"d1","sponsor":"Acme","assets":["Outfield Sign","Radio Spot"],"start":"2026-01-01","end":"2026-12-31","status":"Signed","paymentStatus":"Paid"},
			{"id":"d2","sponsor":"Bolt","assets":["Radio Spot"],"start":"2026-01-01","end":"2026-12-31","status":"Negotiating","paymentStatus":"Pending"}]`,
		data.KeyCategories: `["Signage","Media"]`,
		data.KeySponsors:   `[{"id":"s1","name":"Acme","status":"Active"}]`,
		data.KeyGames:      `[{"id":"g1","date":"2026-06-01","opponent":"Rivals","location":"Home"}]`,
		data.KeyPlayers:    `[{"id":"p1","name":"Sam","seasonType":"Full Season","paymentType":"Deposit","paymentMethod":"Check","amountDue":"$516","paidAmount":"$155","fees":"$0","balance":"$361"}]`,
	}
	for key, raw := range seed {
		if err := store.Set(ctx, key, json.RawMessage(raw)); err != nil {
			t.Fatalf("seeding %s: %v", key, err)
		}
	}

	s, err := New(ctx, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, store
}

func reloadFrom(t *testing.T, store data.Store) *data.Snapshot {
	t.Helper()
	snap, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return snap
}

func TestRenameInventoryCascadesIntoDeals(t *testing.T) {
	s, store := newState(t)

	_, err := s.UpdateInventory(context.Background(), "i2", func(item *data.InventoryItem) error {
		item.Name = "Radio Feature"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateInventory: %v", err)
	}

	persisted := reloadFrom(t, store)
	if !reflect.DeepEqual(persisted.Deals[0].Assets, []string{"Outfield Sign", "Radio Feature"}) {
		t.Errorf("d1 assets = %v", persisted.Deals[0].Assets)
	}
	if !reflect.DeepEqual(persisted.Deals[1].Assets, []string{"Radio Feature"}) {
		t.Errorf("d2 assets = %v", persisted.Deals[1].Assets)
	}
	if !s.Catalog().Validate("Radio Feature") || s.Catalog().Validate("Radio Spot") {
		t.Error("catalog not refreshed after rename")
	}
}

func TestDeleteInventoryKeepsDeals(t *testing.T) {
	s, store := newState(t)

	if err := s.DeleteInventory(context.Background(), "i2"); err != nil {
		t.Fatalf("DeleteInventory: %v", err)
	}

	persisted := reloadFrom(t, store)
	if len(persisted.Inventory) != 1 {
		t.Errorf("expected 1 inventory item, got %d", len(persisted.Inventory))
	}
	if len(persisted.Deals) != 2 {
		t.Fatalf("deals were deleted: %d left", len(persisted.Deals))
	}
	if !reflect.DeepEqual(persisted.Deals[0].Assets, []string{"Outfield Sign"}) || len(persisted.Deals[1].Assets) != 0 {
		t.Errorf("assets after delete = %v, %v", persisted.Deals[0].Assets, persisted.Deals[1].Assets)
	}

	if err := s.DeleteInventory(context.Background(), "i2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestRenameCategoryCascadesIntoInventory(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()

	if err := s.RenameCategory(ctx, "Media", "Broadcast"); err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	persisted := reloadFrom(t, store)
	if !reflect.DeepEqual(persisted.Categories, []string{"Signage", "Broadcast"}) {
		t.Errorf("categories = %v", persisted.Categories)
	}
	if persisted.Inventory[1].Category != "Broadcast" {
		t.Errorf("inventory category = %q", persisted.Inventory[1].Category)
	}

	if err := s.RenameCategory(ctx, "Missing", "Other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.RenameCategory(ctx, "Signage", "Broadcast"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := s.AddCategory(ctx, "Digital"); err != nil {
		t.Errorf("AddCategory: %v", err)
	}
}

func TestAddDeal(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()

	d, err := s.AddDeal(ctx, data.Deal{Sponsor: "Core", Assets: []string{"Outfield Sign", "Radio Spot"},
		ActualValue: "$1,000.00", PaymentMethod: data.PaymentCreditCard})
	if err != nil {
		t.Fatalf("AddDeal: %v", err)
	}
	if d.ID == "" {
		t.Error("no id assigned")
	}
	if d.Budget != "$6,500" {
		t.Errorf("budget = %q", d.Budget)
	}
	if d.ProcessingFee != "$29.30" {
		t.Errorf("processing fee = %q", d.ProcessingFee)
	}
	if d.Status != data.DealNegotiating || d.PaymentStatus != data.PaymentPending {
		t.Errorf("defaults = %s/%s", d.Status, d.PaymentStatus)
	}

	_, err = s.AddDeal(ctx, data.Deal{Sponsor: "Core", Assets: []string{"Blimp"}})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown asset: expected ErrInvalid, got %v", err)
	}

	_, err = s.AddDeal(ctx, data.Deal{ID: "d1", Sponsor: "Core"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate id: expected ErrConflict, got %v", err)
	}
}

func TestUpdateDealDoesNotAliasStoredAssets(t *testing.T) {
	s, _ := newState(t)

	before := s.Snapshot()
	_, err := s.UpdateDeal(context.Background(), "d1", func(d *data.Deal) error {
		return json.Unmarshal([]byte(`{"assets":["Radio Spot"],"id":"other"}`), d)
	})
	if err != nil {
		t.Fatalf("UpdateDeal: %v", err)
	}
	if !reflect.DeepEqual(before.Deals[0].Assets, []string{"Outfield Sign", "Radio Spot"}) {
		t.Errorf("earlier snapshot changed: %v", before.Deals[0].Assets)
	}
	after := s.Snapshot()
	if after.Deals[0].ID != "d1" || !reflect.DeepEqual(after.Deals[0].Assets, []string{"Radio Spot"}) {
		t.Errorf("deal after update = %+v", after.Deals[0])
	}
}

func TestUpdateSponsorRenamesDeals(t *testing.T) {
	s, _ := newState(t)

	_, err := s.UpdateSponsor(context.Background(), "s1", func(sp *data.Sponsor) error {
		sp.Name = "Acme Corp"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateSponsor: %v", err)
	}
	if got := s.Snapshot().Deals[0].Sponsor; got != "Acme Corp" {
		t.Errorf("deal sponsor = %q", got)
	}
}

func TestUpdatePlayerPaysBalance(t *testing.T) {
	s, _ := newState(t)

	p, err := s.UpdatePlayer(context.Background(), "p1", func(p *data.Player) error {
		p.PaymentType = data.PayBalance
		return nil
	})
	if err != nil {
		t.Fatalf("UpdatePlayer: %v", err)
	}
	if p.PaidAmount != "$516" || p.Fees != "$0" || p.Balance != "$0" {
		t.Errorf("player = %+v", p)
	}
}

func TestAddTicketsStoreBreakdown(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()

	h, err := s.AddSeasonTicketHolder(ctx, data.SeasonTicketHolder{Name: "Lee", Year: "2026", Value: "$240.00", PaymentMethod: "Credit Card"})
	if err != nil {
		t.Fatalf("AddSeasonTicketHolder: %v", err)
	}
	if h.Subtotal != "$213.76" || h.Tax != "$18.29" || h.CCFee != "$6.96" || h.TicketFee != "$0.99" {
		t.Errorf("holder breakdown = %+v", h)
	}

	if _, err := s.AddSeasonTicketHolder(ctx, data.SeasonTicketHolder{Name: "Kim"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("missing year: expected ErrInvalid, got %v", err)
	}

	sale, err := s.AddSingleGameSale(ctx, data.SingleGameSale{GameID: "g1", Customer: "Pat", Price: "$40.00"})
	if err != nil {
		t.Fatalf("AddSingleGameSale: %v", err)
	}
	if sale.Quantity != 1 || sale.Status != data.SalePaid || sale.Subtotal == "" {
		t.Errorf("sale = %+v", sale)
	}
	if _, err := s.AddSingleGameSale(ctx, data.SingleGameSale{GameID: "nope", Price: "$1"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown game: expected ErrInvalid, got %v", err)
	}
}

func TestPersistenceFailureIsReported(t *testing.T) {
	_, store := newState(t)
	failing := &failingStore{Store: store, failKeys: map[string]bool{data.KeyDeals: true}}

	s, err := New(context.Background(), failing)
	if err != nil {
		t.Fatal(err)
	}

	err = s.DeleteInventory(context.Background(), "i2")
	if err == nil {
		t.Fatal("expected persistence error")
	}

	// The inventory write went through; the deal write did not.
	persisted := reloadFrom(t, store)
	if len(persisted.Inventory) != 1 {
		t.Errorf("inventory not persisted: %d items", len(persisted.Inventory))
	}
	if len(persisted.Deals[1].Assets) != 1 {
		t.Errorf("deal write should have failed, got %v", persisted.Deals[1].Assets)
	}
	// Memory reflects the command regardless.
	if len(s.Snapshot().Deals[1].Assets) != 0 {
		t.Error("in-memory deals not updated")
	}
}

func TestReplace(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()

	if err := s.Replace(ctx, data.KeyStaff, json.RawMessage(`[{"id":"x","name":"Jo","role":"Usher","status":"Confirmed"}]`)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := reloadFrom(t, store).Staff; len(got) != 1 || got[0].Name != "Jo" {
		t.Errorf("staff = %+v", got)
	}
	if err := s.Replace(ctx, "widgets", json.RawMessage(`[]`)); !errors.Is(err, data.ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
	if err := s.Replace(ctx, data.KeyStaff, json.RawMessage(`{"not":"a list"}`)); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestReplaceDropsPreviousRecords(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()

	if err := s.Replace(ctx, data.KeyDeals, json.RawMessage(`[{"id":"new","sponsor":"Zed","status":"Negotiating"}]`)); err != nil {
		t.Fatalf("Replace deals: %v", err)
	}
	want := data.Deal{ID: "new", Sponsor: "Zed", Status: data.DealNegotiating, Assets: []string{}}
	if got := s.Snapshot().Deals; len(got) != 1 || !reflect.DeepEqual(got[0], want) {
		t.Errorf("deals in memory = %+v", got)
	}
	if got := reloadFrom(t, store).Deals; len(got) != 1 || !reflect.DeepEqual(got[0], want) {
		t.Errorf("deals persisted = %+v", got)
	}

	if err := s.Replace(ctx, data.KeyUsers, json.RawMessage(`[{"id":"u1","name":"Admin","email":"a@example.com","password":"x","role":"admin"}]`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Replace(ctx, data.KeyUsers, json.RawMessage(`[{"id":"u2","email":"b@example.com"}]`)); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Users; len(got) != 1 || got[0].Role != "" || got[0].Name != "" || got[0].Password != "" {
		t.Errorf("users = %+v", got)
	}
}

func TestReplaceRejectsBadIDs(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()

	for name, raw := range map[string]string{
		"duplicate": `[{"id":"x","name":"Jo"},{"id":"x","name":"Al"}]`,
		"missing":   `[{"name":"Jo"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			if err := s.Replace(ctx, data.KeyStaff, json.RawMessage(raw)); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
	if err := s.Replace(ctx, data.KeyCategories, json.RawMessage(`["Signage","Signage"]`)); err != nil {
		t.Errorf("categories carry no ids: %v", err)
	}
}

func TestReplaceKeepsMemoryWhenStoreFails(t *testing.T) {
	_, store := newState(t)
	s, err := New(context.Background(), &failingStore{Store: store, failKeys: map[string]bool{data.KeyDeals: true}})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Replace(context.Background(), data.KeyDeals, json.RawMessage(`[]`)); err == nil {
		t.Fatal("expected persistence error")
	}
	if got := s.Snapshot().Deals; len(got) != 2 {
		t.Errorf("memory diverged from store: %d deals", len(got))
	}
}

func TestUpdateDealRecomputesDerivedAmounts(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()

	d, err := s.AddDeal(ctx, data.Deal{Sponsor: "Acme", Assets: []string{"Radio Spot"},
		ActualValue: "$1,000", PaymentMethod: data.PaymentCreditCard})
	if err != nil {
		t.Fatal(err)
	}
	if d.ProcessingFee != "$29.30" || d.Budget != "$1,500" {
		t.Fatalf("new deal fee=%s budget=%s", d.ProcessingFee, d.Budget)
	}

	d, err = s.UpdateDeal(ctx, d.ID, func(d *data.Deal) error {
		d.ActualValue = "$5,000"
		d.PaymentMethod = data.PaymentCheck
		d.Assets = []string{"Radio Spot", "Outfield Sign"}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.ProcessingFee != "$0" {
		t.Errorf("fee after switching to check = %s, want $0", d.ProcessingFee)
	}
	if d.Budget != "$6,500" {
		t.Errorf("budget after adding an asset = %s, want $6,500", d.Budget)
	}

	// Values the client sets itself are kept.
	d, err = s.UpdateDeal(ctx, d.ID, func(d *data.Deal) error {
		d.PaymentMethod = data.PaymentCreditCard
		d.ProcessingFee = "$100"
		d.Assets = []string{"Outfield Sign"}
		d.Budget = "$4,000"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.ProcessingFee != "$100" || d.Budget != "$4,000" {
		t.Errorf("client values overwritten: fee=%s budget=%s", d.ProcessingFee, d.Budget)
	}
}

func TestRenewalCandidates(t *testing.T) {
	holders := []data.SeasonTicketHolder{
		{ID: "a", Name: "Lee", Year: "2025"},
		{ID: "b", Name: "Kim", Year: "2025", Email: "kim@example.com"},
		{ID: "c", Name: "Lee", Year: "2026", Phone: "555-0100"},
		{ID: "d", Name: "Kim", Year: "2026"},
	}
	got := RenewalCandidates(holders)
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("RenewalCandidates = %+v", got)
	}
}
