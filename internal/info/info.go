package info

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"frontoffice/internal/finance"
	"frontoffice/internal/inventory"
	"frontoffice/internal/logger"
	"frontoffice/internal/money"
	"frontoffice/internal/state"
)

// Year bounds accepted by ParseYear, relative to the current year.
const (
	yearsBack    = 10
	yearsForward = 5
)

// InfoPageData is everything the budget summary page shows.
type InfoPageData struct {
	Year               int
	Report             finance.Report
	Budget             finance.BudgetView
	Inventory          inventory.Summary
	LastUpdated        time.Time
	ProcessingDuration string
}

// Page serves the server-rendered budget summary.
type Page struct {
	state *state.State
	agg   *finance.Aggregator
}

func NewPage(st *state.State, agg *finance.Aggregator) *Page {
	return &Page{state: st, agg: agg}
}

// InfoPageHandler renders the summary for ?year=, defaulting to this year.
func (p *Page) InfoPageHandler(w http.ResponseWriter, r *http.Request) {
	logger.LogHTTPRequest(r)
	startTime := time.Now()

	year, err := ParseYear(r)
	if err != nil {
		logger.LogHTTPError(r, http.StatusBadRequest, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	agg := *p.agg
	agg.MissingDates = MissingDatesPolicy(r)

	snap := p.state.Snapshot()
	pageData := InfoPageData{
		Year:        year,
		Report:      agg.Aggregate(snap, year),
		Budget:      agg.Budget(snap, year),
		Inventory:   inventory.Summarize(snap.Inventory, snap.Deals, snap.Categories, year, agg.MissingDates),
		LastUpdated: time.Now(),
	}
	pageData.ProcessingDuration = time.Since(startTime).String()

	logger.LogInfo("Info page generated for year %d in %v (deals: %d, inventory: %d)",
		year, time.Since(startTime), len(snap.Deals), len(snap.Inventory))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := SummaryPage(pageData).Render(r.Context(), w); err != nil {
		logger.LogError("Failed to render info page: %v", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
}

// MissingDatesPolicy reads ?missingDates. "target" counts an undated deal in
// the requested year; anything else leaves it out of every year.
func MissingDatesPolicy(r *http.Request) inventory.MissingDates {
	if strings.EqualFold(r.URL.Query().Get("missingDates"), "target") {
		return inventory.MissingDatesTargetYear
	}
	return inventory.MissingDatesNever
}

// ParseYear reads the year query parameter. An absent year means the current
// one.
func ParseYear(r *http.Request) (int, error) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return time.Now().Year(), nil
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, fmt.Errorf("invalid year parameter")
	}

	currentYear := time.Now().Year()
	if year < currentYear-yearsBack || year > currentYear+yearsForward {
		return 0, fmt.Errorf("year must be between %d and %d", currentYear-yearsBack, currentYear+yearsForward)
	}

	return year, nil
}

// =============================================================================
// COMPONENTS
// =============================================================================

// SummaryPage is the whole HTML document.
func SummaryPage(d InfoPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := &errWriter{w: w}
		e.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Front Office Summary %d</title></head><body>`, d.Year)
		e.printf(`<h1>Front Office Summary <span id="year">%d</span></h1>`, d.Year)
		if e.err != nil {
			return e.err
		}

		for _, c := range []templ.Component{
			headline(d.Report),
			budgetTable("revenue", "Revenue", d.Budget.Revenue, d.Budget.RevenueBudget, d.Budget.RevenueActual),
			budgetTable("expenses", "Expenses", d.Budget.Expenses, d.Budget.ExpenseBudget, d.Budget.ExpenseActual),
			inventoryCounts(d.Inventory),
		} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		e.printf(`<footer>Updated %s in %s</footer></body></html>`,
			templ.EscapeString(formatDate(d.LastUpdated)), templ.EscapeString(d.ProcessingDuration))
		return e.err
	})
}

func headline(r finance.Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := &errWriter{w: w}
		e.printf(`<section id="headline"><h2>Totals</h2><dl>`)
		for _, row := range []struct {
			id, label, value string
		}{
			{"total-gross", "Total gross", formatCurrency(r.TotalGross)},
			{"total-net", "Total net", formatCurrency(r.TotalNet)},
			{"fees-and-tax", "Fees and tax", formatCurrency(r.TotalFeesAndTax)},
			{"net-profit", "Net profit", formatCurrency(r.NetProfit)},
			{"total-paid", "Paid", formatCurrency(r.TotalPaid)},
			{"total-remaining", "Remaining", formatCurrency(r.TotalRemaining)},
			{"margin", "Margin", strconv.FormatFloat(r.Margin, 'f', 2, 64) + "%"},
		} {
			e.printf(`<dt>%s</dt><dd id="%s">%s</dd>`,
				templ.EscapeString(row.label), row.id, templ.EscapeString(row.value))
		}
		e.printf(`</dl></section>`)
		return e.err
	})
}

func budgetTable(id, title string, lines []finance.BudgetLine, budget, actual float64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := &errWriter{w: w}
		e.printf(`<section id="%s"><h2>%s</h2><table><thead><tr><th>Category</th><th>Budget</th><th>Actual</th><th>Variance</th><th>Source</th></tr></thead><tbody>`,
			id, templ.EscapeString(title))
		for _, l := range lines {
			e.printf(`<tr><td class="category">%s</td><td>%s</td><td>%s</td><td class="variance">%s</td><td>%s</td></tr>`,
				templ.EscapeString(l.Category),
				templ.EscapeString(formatCurrency(l.Budget)),
				templ.EscapeString(formatCurrency(l.Actual)),
				templ.EscapeString(formatCurrency(l.Variance)),
				templ.EscapeString(l.Source))
		}
		e.printf(`</tbody><tfoot><tr><th>Total</th><td>%s</td><td>%s</td><td></td><td></td></tr></tfoot></table></section>`,
			templ.EscapeString(formatCurrency(budget)), templ.EscapeString(formatCurrency(actual)))
		return e.err
	})
}

func inventoryCounts(s inventory.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := &errWriter{w: w}
		e.printf(`<section id="inventory"><h2>Inventory</h2><ul>`)
		e.printf(`<li>Sold: <span id="sold">%d</span></li>`, s.Sold)
		e.printf(`<li>Pending: <span id="pending">%d</span></li>`, s.Pending)
		e.printf(`<li>Available: <span id="available">%d</span></li>`, s.Available)
		e.printf(`<li>Negotiating value: <span id="negotiating">%s</span></li>`,
			templ.EscapeString(formatCurrency(s.TotalNegotiating)))
		e.printf(`</ul></section>`)
		return e.err
	})
}

// errWriter keeps the first write error so the components can write freely and
// check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Template helper functions
func formatCurrency(amount float64) string {
	return money.FormatCents(amount)
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}
