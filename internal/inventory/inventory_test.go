package inventory

import (
	"io"
	"os"
	"reflect"
	"testing"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
)

func TestMain(m *testing.M) {
	logger.UseWriter(io.Discard)
	os.Exit(m.Run())
}

func sampleItems() []data.InventoryItem {
	return []data.InventoryItem{
		{ID: "i1", Name: "Outfield Sign", Category: "Signage", Value: "$5,000"},
		{ID: "i2", Name: "Radio Spot", Category: "Media", Value: "$1,500"},
		{ID: "i3", Name: "Scoreboard Ad", Category: "Signage", Value: "$2,500"},
		{ID: "i4", Name: "Program Page", Category: "Media", Value: "$500"},
	}
}

func sampleDeals() []data.Deal {
	return []data.Deal{
		{ID: "d1", Sponsor: "Acme", Assets: []string{"Outfield Sign", "Radio Spot"}, Start: "2025-03-01", End: "2026-10-31",
			ActualValue: "$6,000", ProcessingFee: "$174.30", PaymentStatus: data.PaymentPaid, Status: data.DealSigned},
		{ID: "d2", Sponsor: "Bolt", Assets: []string{"Scoreboard Ad"}, Start: "2026-01-01", End: "2026-12-31",
			Budget: "$2,500", PaymentStatus: data.PaymentPending, Status: data.DealNegotiating},
		{ID: "d3", Sponsor: "Core", Assets: []string{"Radio Spot"}, Start: "2026-01-01", End: "2026-12-31",
			ActualValue: "$1,000", PaymentStatus: data.PaymentPending, Status: data.DealNegotiating},
	}
}

func TestDealActiveInYear(t *testing.T) {
	tests := []struct {
		name   string
		deal   data.Deal
		year   int
		policy MissingDates
		want   bool
	}{
		{"inside range", data.Deal{Start: "2025-01-01", End: "2027-12-31"}, 2026, MissingDatesNever, true},
		{"start year inclusive", data.Deal{Start: "2026-06-01", End: "2026-06-30"}, 2026, MissingDatesNever, true},
		{"after end", data.Deal{Start: "2025-01-01", End: "2026-12-31"}, 2027, MissingDatesNever, false},
		{"before start", data.Deal{Start: "2027-01-01", End: "2028-12-31"}, 2026, MissingDatesNever, false},
		{"no dates, strict", data.Deal{}, 2026, MissingDatesNever, false},
		{"no dates, target year", data.Deal{}, 2026, MissingDatesTargetYear, true},
		{"missing end, strict", data.Deal{Start: "2025-01-01"}, 2026, MissingDatesNever, false},
		{"missing end, target year", data.Deal{Start: "2025-01-01"}, 2026, MissingDatesTargetYear, true},
		{"missing start after end, target year", data.Deal{End: "2025-12-31"}, 2026, MissingDatesTargetYear, false},
		{"garbage date", data.Deal{Start: "soon", End: "2026-12-31"}, 2026, MissingDatesNever, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DealActiveInYear(tt.deal, tt.year, tt.policy); got != tt.want {
				t.Errorf("DealActiveInYear = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	items := sampleItems()
	deals := sampleDeals()

	tests := []struct {
		item int
		year int
		want Availability
	}{
		{0, 2026, Availability{Status: StatusSold, Sponsor: "Acme"}},
		// Signed wins over a negotiating deal on the same asset.
		{1, 2026, Availability{Status: StatusSold, Sponsor: "Acme"}},
		// Only a negotiating deal references it.
		{2, 2026, Availability{Status: StatusPending, Sponsor: NoSponsor}},
		{3, 2026, Availability{Status: StatusAvailable, Sponsor: NoSponsor}},
		// The signed deal ended in 2026.
		{0, 2031, Availability{Status: StatusAvailable, Sponsor: NoSponsor}},
		// Negotiating deals are year-filtered too.
		{2, 2027, Availability{Status: StatusAvailable, Sponsor: NoSponsor}},
	}

	for _, tt := range tests {
		got := Resolve(items[tt.item], deals, tt.year, MissingDatesNever)
		if got != tt.want {
			t.Errorf("Resolve(%s, %d) = %+v, want %+v", items[tt.item].Name, tt.year, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleItems(), sampleDeals(), []string{"Signage", "Media"}, 2026, MissingDatesNever)

	if s.TotalItems != 4 || s.Sold != 2 || s.Pending != 1 || s.Available != 1 {
		t.Errorf("counts = %d/%d/%d/%d", s.TotalItems, s.Sold, s.Pending, s.Available)
	}
	if s.TotalBudget != 9500 {
		t.Errorf("TotalBudget = %v", s.TotalBudget)
	}
	if s.TotalActual != 6000 || s.TotalFees != 174.3 || s.TotalNet != 5825.7 {
		t.Errorf("actual/fees/net = %v/%v/%v", s.TotalActual, s.TotalFees, s.TotalNet)
	}
	if s.TotalPaid != 5825.7 || s.TotalPendingPayment != 0 {
		t.Errorf("paid/pending = %v/%v", s.TotalPaid, s.TotalPendingPayment)
	}
	// d2 falls back to budget, d3 uses its actual value.
	if s.TotalNegotiating != 3500 {
		t.Errorf("TotalNegotiating = %v", s.TotalNegotiating)
	}

	if len(s.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(s.Categories))
	}
	signage := s.Categories[0]
	if signage.Total != 2 || signage.Sold != 1 || signage.Pending != 1 || signage.Available != 0 {
		t.Errorf("signage counts = %+v", signage)
	}
	if signage.Budget != 7500 || signage.NegotiatingValue != 2500 || len(signage.Deals) != 2 {
		t.Errorf("signage values = %+v", signage)
	}

	later := Summarize(sampleItems(), sampleDeals(), nil, 2031, MissingDatesNever)
	if later.Sold != 0 || later.Available != 4 || later.TotalActual != 0 {
		t.Errorf("2031 summary = %+v", later)
	}
}

func TestUndatedDealFollowsPolicy(t *testing.T) {
	items := []data.InventoryItem{{ID: "i1", Name: "Scoreboard", Category: "Signage", Value: "$2,000"}}
	deals := []data.Deal{{ID: "d1", Sponsor: "Zed", Assets: []string{"Scoreboard"}, ActualValue: "$1,800", Status: data.DealSigned}}

	if got := Resolve(items[0], deals, 2026, MissingDatesNever); got.Status != StatusAvailable {
		t.Errorf("never policy: %+v", got)
	}
	if got := Resolve(items[0], deals, 2026, MissingDatesTargetYear); got.Status != StatusSold || got.Sponsor != "Zed" {
		t.Errorf("target policy: %+v", got)
	}
	s := Summarize(items, deals, nil, 2026, MissingDatesTargetYear)
	if s.Sold != 1 || s.TotalActual != 1800 {
		t.Errorf("target policy summary = %+v", s)
	}
}

func TestSponsorValue(t *testing.T) {
	deals := sampleDeals()
	deals = append(deals, data.Deal{ID: "d4", Sponsor: "Acme", ActualValue: "$250", Status: data.DealSigned, Start: "2019-01-01", End: "2019-12-31"})

	if got := SponsorValue("Acme", deals); got != 6250 {
		t.Errorf("SponsorValue(Acme) = %v", got)
	}
	if got := SponsorValue("Core", deals); got != 0 {
		t.Errorf("negotiating deals must not count, got %v", got)
	}
}

func TestIndexRenameAndRemove(t *testing.T) {
	deals := sampleDeals()
	ix := NewIndex(deals)

	if ids := ix.DealIDs("Radio Spot"); !reflect.DeepEqual(ids, []string{"d1", "d3"}) {
		t.Errorf("DealIDs = %v", ids)
	}

	if n := ix.Rename(deals, "Radio Spot", "Radio Feature"); n != 2 {
		t.Errorf("Rename changed %d deals", n)
	}
	if !reflect.DeepEqual(deals[0].Assets, []string{"Outfield Sign", "Radio Feature"}) {
		t.Errorf("d1 assets = %v", deals[0].Assets)
	}
	if !deals[2].HasAsset("Radio Feature") {
		t.Errorf("d3 assets = %v", deals[2].Assets)
	}

	if n := ix.Remove(deals, "Radio Feature"); n != 2 {
		t.Errorf("Remove changed %d deals", n)
	}
	if len(deals) != 3 {
		t.Fatalf("deals were deleted: %d left", len(deals))
	}
	if !reflect.DeepEqual(deals[0].Assets, []string{"Outfield Sign"}) || len(deals[2].Assets) != 0 {
		t.Errorf("assets after remove = %v, %v", deals[0].Assets, deals[2].Assets)
	}
	if n := ix.Remove(deals, "Nothing"); n != 0 {
		t.Errorf("Remove of unknown asset changed %d deals", n)
	}
}

func TestRenameCategory(t *testing.T) {
	items := sampleItems()
	if n := RenameCategory(items, "Media", "Broadcast"); n != 2 {
		t.Errorf("renamed %d items", n)
	}
	if items[1].Category != "Broadcast" || items[0].Category != "Signage" {
		t.Errorf("categories = %s, %s", items[0].Category, items[1].Category)
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	c.Load(sampleItems())

	if !c.Validate("Radio Spot") || c.Validate("Blimp") {
		t.Error("Validate returned wrong result")
	}
	if err := c.ValidateAssets([]string{"Radio Spot", "Blimp"}); err == nil {
		t.Error("expected unknown asset error")
	}
	if got := c.DealBudget([]string{"Outfield Sign", "Program Page", "Blimp"}); got != "$5,500" {
		t.Errorf("DealBudget = %q", got)
	}
	if price, ok := c.Price("Scoreboard Ad"); !ok || price != 2500 {
		t.Errorf("Price = %v, %v", price, ok)
	}
}
