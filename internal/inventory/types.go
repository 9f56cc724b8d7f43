package inventory

import "frontoffice/internal/data"

// Status is the sale state of an asset in a given year. It is always derived from
// deals and never stored.
type Status string

const (
	StatusSold      Status = "sold"
	StatusPending   Status = "pending"
	StatusAvailable Status = "available"
)

// NoSponsor is shown when no signed deal holds an asset.
const NoSponsor = "-"

// MissingDates decides how a deal without start or end dates is treated.
type MissingDates int

const (
	// MissingDatesNever treats a deal lacking either date as inactive in every
	// year. This is the default.
	MissingDatesNever MissingDates = iota
	// MissingDatesTargetYear substitutes the target year for a missing date, so a
	// deal with no dates at all is active in every year.
	MissingDatesTargetYear
)

type Availability struct {
	Status  Status `json:"status"`
	Sponsor string `json:"sponsor"`
}

// ItemStatus pairs an inventory item with its availability for a year.
type ItemStatus struct {
	data.InventoryItem
	Availability
}

type CategoryStats struct {
	Name             string      `json:"name"`
	Budget           float64     `json:"budget"`
	Actual           float64     `json:"actual"`
	Fees             float64     `json:"fees"`
	Net              float64     `json:"net"`
	Diff             float64     `json:"diff"`
	Total            int         `json:"total"`
	Sold             int         `json:"sold"`
	Pending          int         `json:"pending"`
	Available        int         `json:"available"`
	NegotiatingValue float64     `json:"negotiatingValue"`
	Deals            []data.Deal `json:"deals"`
}

// Summary is the inventory roll-up for one year.
type Summary struct {
	Year                int             `json:"year"`
	TotalItems          int             `json:"totalItems"`
	Sold                int             `json:"sold"`
	Pending             int             `json:"pending"`
	Available           int             `json:"available"`
	TotalBudget         float64         `json:"totalBudget"`
	TotalActual         float64         `json:"totalActual"`
	TotalFees           float64         `json:"totalFees"`
	TotalNet            float64         `json:"totalNet"`
	TotalVariance       float64         `json:"totalVariance"`
	TotalPaid           float64         `json:"totalPaid"`
	TotalPendingPayment float64         `json:"totalPendingPayment"`
	TotalNegotiating    float64         `json:"totalNegotiating"`
	Categories          []CategoryStats `json:"categories"`
}
