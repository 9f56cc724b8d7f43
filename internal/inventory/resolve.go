package inventory

import (
	"strconv"
	"strings"

	"frontoffice/internal/data"
	"frontoffice/internal/money"
)

// DealActiveInYear reports whether year falls within the deal's start and end
// years, inclusive. Dates are YYYY-MM-DD; only the year part is read.
func DealActiveInYear(deal data.Deal, year int, policy MissingDates) bool {
	start, okStart := dateYear(deal.Start)
	end, okEnd := dateYear(deal.End)

	if !okStart || !okEnd {
		if policy == MissingDatesNever {
			return false
		}
		if !okStart {
			start = year
		}
		if !okEnd {
			end = year
		}
	}
	return start <= year && year <= end
}

func dateYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}
	y, err := strconv.Atoi(strings.SplitN(date, "-", 2)[0])
	if err != nil {
		return 0, false
	}
	return y, true
}

// Resolve derives an item's status in year. A signed deal active in the year
// makes it sold to that deal's sponsor. Otherwise a negotiating deal active in
// the year makes it pending.
func Resolve(item data.InventoryItem, deals []data.Deal, year int, policy MissingDates) Availability {
	pending := false
	for _, d := range deals {
		if !d.HasAsset(item.Name) || !DealActiveInYear(d, year, policy) {
			continue
		}
		switch d.Status {
		case data.DealSigned:
			return Availability{Status: StatusSold, Sponsor: d.Sponsor}
		case data.DealNegotiating:
			pending = true
		}
	}
	if pending {
		return Availability{Status: StatusPending, Sponsor: NoSponsor}
	}
	return Availability{Status: StatusAvailable, Sponsor: NoSponsor}
}

// ResolveAll resolves every item for year, preserving order.
func ResolveAll(items []data.InventoryItem, deals []data.Deal, year int, policy MissingDates) []ItemStatus {
	out := make([]ItemStatus, 0, len(items))
	for _, item := range items {
		out = append(out, ItemStatus{InventoryItem: item, Availability: Resolve(item, deals, year, policy)})
	}
	return out
}

// SponsorValue is the sum of actual values over the sponsor's signed deals in
// any year.
func SponsorValue(sponsor string, deals []data.Deal) float64 {
	total := 0.0
	for _, d := range deals {
		if d.Sponsor == sponsor && d.Status == data.DealSigned {
			total += money.Parse(d.ActualValue)
		}
	}
	return total
}

// DealFees is the processing plus fulfillment fee on a deal.
func DealFees(d data.Deal) float64 {
	return money.Parse(d.ProcessingFee) + money.Parse(d.FulfillmentFee)
}

// negotiatingValue falls back to the budget while no amount has been agreed.
func negotiatingValue(d data.Deal) float64 {
	if strings.TrimSpace(d.ActualValue) != "" {
		return money.Parse(d.ActualValue)
	}
	return money.Parse(d.Budget)
}

// Summarize rolls up inventory against the deals active in year. Only signed
// deals that reference at least one existing item count toward sold value.
func Summarize(items []data.InventoryItem, deals []data.Deal, categories []string, year int, policy MissingDates) Summary {
	names := make(map[string]bool, len(items))
	for _, item := range items {
		names[item.Name] = true
	}

	var yearDeals, signed []data.Deal
	for _, d := range deals {
		if !DealActiveInYear(d, year, policy) {
			continue
		}
		yearDeals = append(yearDeals, d)
		if d.Status == data.DealSigned && referencesAny(d, names) {
			signed = append(signed, d)
		}
	}

	s := Summary{Year: year, TotalItems: len(items), Categories: []CategoryStats{}}
	for _, item := range items {
		s.TotalBudget += money.Parse(item.Value)
	}
	for _, d := range signed {
		gross := money.Parse(d.ActualValue)
		fees := DealFees(d)
		s.TotalActual += gross
		s.TotalFees += fees
		switch d.PaymentStatus {
		case data.PaymentPaid:
			s.TotalPaid += gross - fees
		case data.PaymentPending:
			s.TotalPendingPayment += gross
		}
	}
	for _, d := range yearDeals {
		if d.Status == data.DealNegotiating {
			s.TotalNegotiating += negotiatingValue(d)
		}
	}
	s.TotalNet = s.TotalActual - s.TotalFees
	s.TotalVariance = s.TotalNet - s.TotalBudget

	s.Sold, s.Pending = countStatus(items, signed, yearDeals)
	s.Available = s.TotalItems - s.Sold - s.Pending

	for _, cat := range categories {
		s.Categories = append(s.Categories, categoryStats(cat, items, signed, yearDeals))
	}
	s.round()
	return s
}

func (s *Summary) round() {
	for _, f := range []*float64{
		&s.TotalBudget, &s.TotalActual, &s.TotalFees, &s.TotalNet, &s.TotalVariance,
		&s.TotalPaid, &s.TotalPendingPayment, &s.TotalNegotiating,
	} {
		*f = money.Round2(*f)
	}
	for i := range s.Categories {
		c := &s.Categories[i]
		for _, f := range []*float64{&c.Budget, &c.Actual, &c.Fees, &c.Net, &c.Diff, &c.NegotiatingValue} {
			*f = money.Round2(*f)
		}
	}
}

func categoryStats(cat string, items []data.InventoryItem, signed, yearDeals []data.Deal) CategoryStats {
	var catItems []data.InventoryItem
	names := map[string]bool{}
	for _, item := range items {
		if item.Category == cat {
			catItems = append(catItems, item)
			names[item.Name] = true
		}
	}

	c := CategoryStats{Name: cat, Total: len(catItems), Deals: []data.Deal{}}
	for _, item := range catItems {
		c.Budget += money.Parse(item.Value)
	}
	for _, d := range signed {
		if referencesAny(d, names) {
			c.Actual += money.Parse(d.ActualValue)
			c.Fees += DealFees(d)
		}
	}
	for _, d := range yearDeals {
		if !referencesAny(d, names) {
			continue
		}
		c.Deals = append(c.Deals, d)
		if d.Status == data.DealNegotiating {
			c.NegotiatingValue += negotiatingValue(d)
		}
	}
	c.Net = c.Actual - c.Fees
	c.Diff = c.Net - c.Budget
	c.Sold, c.Pending = countStatus(catItems, signed, yearDeals)
	c.Available = c.Total - c.Sold - c.Pending
	return c
}

func countStatus(items []data.InventoryItem, signed, yearDeals []data.Deal) (sold, pending int) {
	for _, item := range items {
		if anyHolds(signed, item.Name, "") {
			sold++
		} else if anyHolds(yearDeals, item.Name, data.DealNegotiating) {
			pending++
		}
	}
	return sold, pending
}

func anyHolds(deals []data.Deal, name string, status data.DealStatus) bool {
	for _, d := range deals {
		if (status == "" || d.Status == status) && d.HasAsset(name) {
			return true
		}
	}
	return false
}

func referencesAny(d data.Deal, names map[string]bool) bool {
	for _, a := range d.Assets {
		if names[a] {
			return true
		}
	}
	return false
}
