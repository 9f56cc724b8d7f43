// Package finance rolls transactions up into year-scoped totals. Every figure is
// recomputed from the snapshot on each call. Malformed amounts count as zero.
package finance

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"frontoffice/internal/data"
	"frontoffice/internal/inventory"
	"frontoffice/internal/money"
)

// Aggregator holds the settings that scope a roll-up.
type Aggregator struct {
	PlayerSeasonYear int
	MissingDates     inventory.MissingDates
}

// NewAggregator returns an aggregator that counts players only in
// playerSeasonYear. A non-positive year falls back to DefaultPlayerSeasonYear.
func NewAggregator(playerSeasonYear int) *Aggregator {
	if playerSeasonYear <= 0 {
		playerSeasonYear = DefaultPlayerSeasonYear
	}
	return &Aggregator{PlayerSeasonYear: playerSeasonYear, MissingDates: inventory.MissingDatesNever}
}

// Aggregate uses the default player season.
func Aggregate(snap *data.Snapshot, year int) Report {
	return NewAggregator(DefaultPlayerSeasonYear).Aggregate(snap, year)
}

func amount(s string) decimal.Decimal { return money.ParseDecimal(s) }

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Aggregate builds the report for year.
func (a *Aggregator) Aggregate(snap *data.Snapshot, year int) Report {
	r := Report{Year: year}

	// Sponsorship
	var spsGross, spsFees, spsPaid decimal.Decimal
	for _, d := range snap.Deals {
		if d.Status != data.DealSigned || !inventory.DealActiveInYear(d, year, a.MissingDates) {
			continue
		}
		r.Sponsorship.Deals++
		gross := amount(d.ActualValue)
		spsGross = spsGross.Add(gross)
		spsFees = spsFees.Add(amount(d.ProcessingFee)).Add(amount(d.FulfillmentFee))
		if d.PaymentStatus == data.PaymentPaid {
			spsPaid = spsPaid.Add(gross)
		}
	}
	spsNet := spsGross.Sub(spsFees)

	// Tickets
	var tix ticketTotals
	yearLabel := strconv.Itoa(year)
	for _, h := range snap.SeasonTicketHolders {
		if strings.TrimSpace(h.Year) != yearLabel {
			continue
		}
		r.Tickets.SeasonTickets++
		tix.add(h.Value, h.Subtotal, h.Tax, h.CCFee, h.TicketFee)
		tix.paid = tix.paid.Add(amount(h.Value))
	}

	yearGames := map[string]bool{}
	for _, g := range snap.Games {
		if gameYear(g.Date) == year {
			yearGames[g.ID] = true
		}
	}
	for _, s := range snap.SingleGameSales {
		if !yearGames[s.GameID] {
			continue
		}
		r.Tickets.SingleGameSales++
		tix.add(s.Price, s.Subtotal, s.Tax, s.CCFee, s.TicketFee)
		if s.Status == data.SalePaid {
			tix.paid = tix.paid.Add(amount(s.Price))
		}
	}

	// Players
	var plyGross, plyNet, plyFees, plyPaid decimal.Decimal
	if year == a.PlayerSeasonYear {
		r.Players.Counted = true
		for _, p := range snap.Players {
			r.Players.Players++
			due := amount(p.AmountDue)
			fee := amount(p.Fees)
			plyGross = plyGross.Add(due).Add(fee)
			plyNet = plyNet.Add(due)
			plyFees = plyFees.Add(fee)
			plyPaid = plyPaid.Add(amount(p.PaidAmount))
		}
	}

	// Manual lines
	expBudget, expActual, expLines := ledgerTotals(snap.Expenses, yearLabel)
	revBudget, revActual, revLines := ledgerTotals(snap.Revenues, yearLabel)

	totalGross := spsGross.Add(revActual)
	totalNet := spsNet.Add(revActual)
	netProfit := totalNet.Sub(expActual)
	totalFeesAndTax := spsFees.Add(tix.tax).Add(tix.fees).Add(plyFees)
	totalPaid := spsPaid.Add(tix.paid).Add(plyPaid)

	margin := decimal.Zero
	if totalGross.IsPositive() {
		margin = totalNet.Div(totalGross).Mul(decimal.NewFromInt(100))
	}

	r.Sponsorship.Gross = toFloat(spsGross)
	r.Sponsorship.Fees = toFloat(spsFees)
	r.Sponsorship.Net = toFloat(spsNet)
	r.Sponsorship.Paid = toFloat(spsPaid)

	r.Tickets.Gross = toFloat(tix.gross)
	r.Tickets.Net = toFloat(tix.net)
	r.Tickets.Tax = toFloat(tix.tax)
	r.Tickets.Fees = toFloat(tix.fees)
	r.Tickets.Paid = toFloat(tix.paid)

	r.Players.Gross = toFloat(plyGross)
	r.Players.Net = toFloat(plyNet)
	r.Players.Fees = toFloat(plyFees)
	r.Players.Paid = toFloat(plyPaid)

	r.Expenses = Ledger{Lines: expLines, Budget: toFloat(expBudget), Actual: toFloat(expActual)}
	r.ManualRevenue = Ledger{Lines: revLines, Budget: toFloat(revBudget), Actual: toFloat(revActual)}

	r.TotalGross = toFloat(totalGross)
	r.TotalNet = toFloat(totalNet)
	r.NetProfit = toFloat(netProfit)
	r.TotalFeesAndTax = toFloat(totalFeesAndTax)
	r.TotalPaid = toFloat(totalPaid)
	r.TotalRemaining = toFloat(totalGross.Sub(totalPaid))
	r.Margin = toFloat(margin)
	return r
}

type ticketTotals struct {
	gross, net, tax, fees, paid decimal.Decimal
}

// add records one ticket. Records saved before the breakdown existed have no
// subtotal and count as net equal to gross.
func (t *ticketTotals) add(gross, subtotal, tax, ccFee, ticketFee string) {
	g := amount(gross)
	t.gross = t.gross.Add(g)
	if strings.TrimSpace(subtotal) == "" {
		t.net = t.net.Add(g)
		return
	}
	t.net = t.net.Add(amount(subtotal))
	t.tax = t.tax.Add(amount(tax))
	t.fees = t.fees.Add(amount(ccFee)).Add(amount(ticketFee))
}

func ledgerTotals(lines []data.LedgerLine, yearLabel string) (budget, actual decimal.Decimal, n int) {
	for _, l := range lines {
		if strings.TrimSpace(l.Year) != yearLabel {
			continue
		}
		n++
		budget = budget.Add(amount(l.Budget))
		actual = actual.Add(amount(l.Actual))
	}
	return budget, actual, n
}

func gameYear(date string) int {
	y, err := strconv.Atoi(strings.SplitN(strings.TrimSpace(date), "-", 2)[0])
	if err != nil {
		return 0
	}
	return y
}
