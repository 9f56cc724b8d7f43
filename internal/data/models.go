package data

// =============================================================================
// ENUMERATIONS
// =============================================================================

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentCheck      PaymentMethod = "Check"
	PaymentCash       PaymentMethod = "Cash"
	PaymentWire       PaymentMethod = "Wire"
	PaymentOther      PaymentMethod = "Other"
)

type DealStatus string

const (
	DealSigned      DealStatus = "Signed"
	DealNegotiating DealStatus = "Negotiating"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

type SaleStatus string

const (
	SalePaid     SaleStatus = "Paid"
	SaleReserved SaleStatus = "Reserved"
)

type SeasonType string

const (
	SeasonFull SeasonType = "Full Season"
	SeasonHalf SeasonType = "Half Season"
)

type PaymentType string

const (
	PayFull    PaymentType = "Full Payment"
	PayDeposit PaymentType = "Deposit"
	PayBalance PaymentType = "Pay Balance"
)

// =============================================================================
// ENTITIES
// =============================================================================

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// InventoryItem is a sellable sponsorship asset. Sale status and sponsor are
// derived from deals; see inventory.Resolve.
type InventoryItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Value    string `json:"value"`
}

type Sponsor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Status  string `json:"status"`
}

// Deal is a sponsorship contract. Sponsor and Assets hold names, not ids.
type Deal struct {
	ID             string        `json:"id"`
	Sponsor        string        `json:"sponsor"`
	Assets         []string      `json:"assets"`
	Start          string        `json:"start"`
	End            string        `json:"end"`
	Budget         string        `json:"budget"`
	ActualValue    string        `json:"actualValue"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	ProcessingFee  string        `json:"processingFee,omitempty"`
	FulfillmentFee string        `json:"fulfillmentFee,omitempty"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	Status         DealStatus    `json:"status"`
	InvoiceID      string        `json:"invoiceId,omitempty"`
}

// HasAsset reports whether the deal lists the named asset.
func (d Deal) HasAsset(name string) bool {
	for _, a := range d.Assets {
		if a == name {
			return true
		}
	}
	return false
}

type Game struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Opponent string `json:"opponent"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

type SeasonTicketHolder struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Contact       string `json:"contact"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	Section       string `json:"section"`
	SeatCount     string `json:"seatCount"`
	Value         string `json:"value"`
	Year          string `json:"year"`
	UnitPrice     string `json:"unitPrice,omitempty"`
	Subtotal      string `json:"subtotal,omitempty"`
	Tax           string `json:"tax,omitempty"`
	CCFee         string `json:"ccFee,omitempty"`
	TicketFee     string `json:"ticketFee,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

type SingleGameSale struct {
	ID            string     `json:"id"`
	GameID        string     `json:"gameId"`
	Customer      string     `json:"customer"`
	Quantity      int        `json:"quantity"`
	Section       string     `json:"section"`
	Price         string     `json:"price"`
	Fees          string     `json:"fees,omitempty"`
	Status        SaleStatus `json:"status"`
	Subtotal      string     `json:"subtotal,omitempty"`
	Tax           string     `json:"tax,omitempty"`
	CCFee         string     `json:"ccFee,omitempty"`
	TicketFee     string     `json:"ticketFee,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
}

type Player struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	SeasonType    SeasonType    `json:"seasonType"`
	PaymentType   PaymentType   `json:"paymentType"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	AmountDue     string        `json:"amountDue"`
	PaidAmount    string        `json:"paidAmount"`
	Fees          string        `json:"fees"`
	Balance       string        `json:"balance"`
	Status        string        `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	PaymentLink   string        `json:"paymentLink,omitempty"`
}

// LedgerLine is a manually entered budget line, used for both expenses and
// revenues.
type LedgerLine struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Budget   string `json:"budget"`
	Actual   string `json:"actual"`
	Year     string `json:"year"`
}

type Staff struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type TimelineItem struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Assigned string `json:"assigned"`
	Status   string `json:"status"`
}
