package testing

import (
	"fmt"
	"time"

	"frontoffice/internal/data"
)

// GenerateID returns a readable unique id for seeded records.
func (ts *TestSuite) GenerateID(prefix string) string {
	ts.mu.Lock()
	ts.reqCount++
	count := ts.reqCount
	ts.mu.Unlock()

	return fmt.Sprintf("%s-test-%d-%d", prefix, time.Now().Unix(), count)
}

// TestInventory is the asset list most flows start from.
func TestInventory() []data.InventoryItem {
	return []data.InventoryItem{
		{Name: "Outfield Wall Sign", Category: "Signage", Value: "$5,000"},
		{Name: "Scoreboard Panel", Category: "Signage", Value: "$7,500"},
		{Name: "Radio Spot", Category: "Media", Value: "$1,500"},
		{Name: "Program Ad", Category: "Print", Value: "$500"},
	}
}

// GenerateDeal returns a deal for sponsor over assets covering year.
func GenerateDeal(sponsor string, year int, status data.DealStatus, assets ...string) data.Deal {
	return data.Deal{
		Sponsor:       sponsor,
		Assets:        assets,
		Start:         fmt.Sprintf("%d-01-01", year),
		End:           fmt.Sprintf("%d-12-31", year),
		ActualValue:   "$10,000",
		PaymentMethod: data.PaymentCheck,
		PaymentStatus: data.PaymentPending,
		Status:        status,
	}
}

// GenerateGame returns a home game on the given date.
func GenerateGame(date, opponent string) data.Game {
	return data.Game{Date: date, Time: "18:05", Opponent: opponent, Location: "Home"}
}
