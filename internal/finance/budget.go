package finance

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"frontoffice/internal/data"
	"frontoffice/internal/inventory"
)

// Budget compares planned and actual figures for year. Sponsorship is planned at
// the inventory list value and realized through signed deals active in the year.
func (a *Aggregator) Budget(snap *data.Snapshot, year int) BudgetView {
	v := BudgetView{Year: year, Revenue: []BudgetLine{}, Expenses: []BudgetLine{}}
	yearLabel := strconv.Itoa(year)

	var spsBudget, spsActual decimal.Decimal
	for _, item := range snap.Inventory {
		spsBudget = spsBudget.Add(amount(item.Value))
	}
	for _, d := range snap.Deals {
		if d.Status == data.DealSigned && inventory.DealActiveInYear(d, year, a.MissingDates) {
			spsActual = spsActual.Add(amount(d.ActualValue))
		}
	}
	v.Revenue = append(v.Revenue, BudgetLine{
		Category: "Sponsorships",
		Budget:   toFloat(spsBudget),
		Actual:   toFloat(spsActual),
		Variance: toFloat(spsActual.Sub(spsBudget)),
		Source:   SourceInventory,
	})

	revBudget, revActual := spsBudget, spsActual
	for _, r := range snap.Revenues {
		if strings.TrimSpace(r.Year) != yearLabel {
			continue
		}
		b, act := amount(r.Budget), amount(r.Actual)
		revBudget = revBudget.Add(b)
		revActual = revActual.Add(act)
		v.Revenue = append(v.Revenue, BudgetLine{
			ID: r.ID, Category: r.Category, Source: SourceManual,
			Budget: toFloat(b), Actual: toFloat(act), Variance: toFloat(act.Sub(b)),
		})
	}

	var expBudget, expActual decimal.Decimal
	for _, e := range snap.Expenses {
		if strings.TrimSpace(e.Year) != yearLabel {
			continue
		}
		b, act := amount(e.Budget), amount(e.Actual)
		expBudget = expBudget.Add(b)
		expActual = expActual.Add(act)
		v.Expenses = append(v.Expenses, BudgetLine{
			ID: e.ID, Category: e.Category, Source: SourceManual,
			Budget: toFloat(b), Actual: toFloat(act), Variance: toFloat(b.Sub(act)),
		})
	}

	v.SponsorshipBudget = toFloat(spsBudget)
	v.SponsorshipActual = toFloat(spsActual)
	v.RevenueBudget = toFloat(revBudget)
	v.RevenueActual = toFloat(revActual)
	v.ExpenseBudget = toFloat(expBudget)
	v.ExpenseActual = toFloat(expActual)
	v.NetProfitBudget = toFloat(revBudget.Sub(expBudget))
	v.NetProfitActual = toFloat(revActual.Sub(expActual))
	return v
}
