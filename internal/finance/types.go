package finance

// DefaultPlayerSeasonYear is the only season player registrations are counted in
// when no other year is configured. Player records carry no year of their own.
const DefaultPlayerSeasonYear = 2026

type Sponsorship struct {
	Deals int     `json:"deals"`
	Gross float64 `json:"gross"`
	Fees  float64 `json:"fees"`
	Net   float64 `json:"net"`
	Paid  float64 `json:"paid"`
}

type Tickets struct {
	SeasonTickets   int     `json:"seasonTickets"`
	SingleGameSales int     `json:"singleGameSales"`
	Gross           float64 `json:"gross"`
	Net             float64 `json:"net"`
	Tax             float64 `json:"tax"`
	Fees            float64 `json:"fees"`
	Paid            float64 `json:"paid"`
}

type Players struct {
	Counted bool    `json:"counted"`
	Players int     `json:"players"`
	Gross   float64 `json:"gross"`
	Net     float64 `json:"net"`
	Fees    float64 `json:"fees"`
	Paid    float64 `json:"paid"`
}

// Ledger totals the manual budget lines of one kind for the year.
type Ledger struct {
	Lines  int     `json:"lines"`
	Budget float64 `json:"budget"`
	Actual float64 `json:"actual"`
}

// Report is the year-scoped financial roll-up. Ticket and player revenue are
// reported but left out of the headline totals, which are built from
// sponsorship and manually entered revenue.
type Report struct {
	Year            int         `json:"year"`
	Sponsorship     Sponsorship `json:"sponsorship"`
	Tickets         Tickets     `json:"tickets"`
	Players         Players     `json:"players"`
	Expenses        Ledger      `json:"expenses"`
	ManualRevenue   Ledger      `json:"manualRevenue"`
	TotalGross      float64     `json:"totalGross"`
	TotalNet        float64     `json:"totalNet"`
	NetProfit       float64     `json:"netProfit"`
	TotalFeesAndTax float64     `json:"totalFeesAndTax"`
	TotalPaid       float64     `json:"totalPaid"`
	TotalRemaining  float64     `json:"totalRemaining"`
	Margin          float64     `json:"margin"`
}

// BudgetLine is one row of the budget versus actual view. Variance is actual
// minus budget for revenue and budget minus actual for expenses, so a positive
// variance is always favorable.
type BudgetLine struct {
	ID       string  `json:"id,omitempty"`
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
	Actual   float64 `json:"actual"`
	Variance float64 `json:"variance"`
	Source   string  `json:"source"`
}

const (
	SourceInventory = "Inventory"
	SourceManual    = "Manual"
)

type BudgetView struct {
	Year              int          `json:"year"`
	Revenue           []BudgetLine `json:"revenue"`
	Expenses          []BudgetLine `json:"expenses"`
	RevenueBudget     float64      `json:"revenueBudget"`
	RevenueActual     float64      `json:"revenueActual"`
	ExpenseBudget     float64      `json:"expenseBudget"`
	ExpenseActual     float64      `json:"expenseActual"`
	NetProfitBudget   float64      `json:"netProfitBudget"`
	NetProfitActual   float64      `json:"netProfitActual"`
	SponsorshipBudget float64      `json:"sponsorshipBudget"`
	SponsorshipActual float64      `json:"sponsorshipActual"`
}
