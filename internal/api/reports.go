package api

import (
	"fmt"
	"net/http"
	"strings"

	"frontoffice/internal/data"
	"frontoffice/internal/finance"
	"frontoffice/internal/info"
	"frontoffice/internal/inventory"
	"frontoffice/internal/middleware"
	"frontoffice/internal/money"
	"frontoffice/internal/pricing"
	"frontoffice/internal/roster"
	"frontoffice/internal/state"
)

// aggregator returns the configured aggregator, switched to the target-year
// policy for deals without dates when ?missingDates=target.
func (s *Server) aggregator(r *http.Request) *finance.Aggregator {
	agg := *s.agg
	agg.MissingDates = info.MissingDatesPolicy(r)
	return &agg
}

func (s *Server) InventoryStatusHandler(w http.ResponseWriter, r *http.Request) {
	year, err := info.ParseYear(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	snap := s.state.Snapshot()
	middleware.WriteAPISuccess(w, r, inventory.ResolveAll(snap.Inventory, snap.Deals, year, info.MissingDatesPolicy(r)))
}

func (s *Server) InventorySummaryHandler(w http.ResponseWriter, r *http.Request) {
	year, err := info.ParseYear(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	snap := s.state.Snapshot()
	middleware.WriteAPISuccess(w, r, inventory.Summarize(snap.Inventory, snap.Deals, snap.Categories, year, info.MissingDatesPolicy(r)))
}

type sponsorValue struct {
	ID      string  `json:"id"`
	Sponsor string  `json:"sponsor"`
	Status  string  `json:"status"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// SponsorValuesHandler lists each sponsor's signed deal total across all years.
func (s *Server) SponsorValuesHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	out := make([]sponsorValue, 0, len(snap.Sponsors))
	for _, sp := range snap.Sponsors {
		v := inventory.SponsorValue(sp.Name, snap.Deals)
		out = append(out, sponsorValue{
			ID:      sp.ID,
			Sponsor: sp.Name,
			Status:  sp.Status,
			Value:   money.Round2(v),
			Display: money.FormatWhole(v),
		})
	}
	middleware.WriteAPISuccess(w, r, out)
}

func (s *Server) FinancialsHandler(w http.ResponseWriter, r *http.Request) {
	year, err := info.ParseYear(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	middleware.WriteAPISuccess(w, r, s.aggregator(r).Aggregate(s.state.Snapshot(), year))
}

func (s *Server) BudgetHandler(w http.ResponseWriter, r *http.Request) {
	year, err := info.ParseYear(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	middleware.WriteAPISuccess(w, r, s.aggregator(r).Budget(s.state.Snapshot(), year))
}

// =============================================================================
// CALCULATORS
// =============================================================================

type ticketPricingRequest struct {
	Gross         string             `json:"gross"`
	PaymentMethod data.PaymentMethod `json:"paymentMethod"`
	Package       string             `json:"package"`
	Seats         int                `json:"seats"`
}

type ticketPricingResponse struct {
	pricing.Breakdown
	Value string `json:"value"`
}

// TicketPricingHandler splits a ticket total. A Platinum or Reserved package
// with a seat count prices the gross itself.
func (s *Server) TicketPricingHandler(w http.ResponseWriter, r *http.Request) {
	var req ticketPricingRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	gross := req.Gross
	if req.Package != "" && req.Package != pricing.PackageCustom {
		value, ok := pricing.SeasonPackageValue(req.Package, req.Seats)
		if !ok {
			badRequest(w, r, fmt.Errorf("unknown package %q", req.Package))
			return
		}
		gross = value
	}

	middleware.WriteAPISuccess(w, r, ticketPricingResponse{
		Breakdown: pricing.TicketBreakdown(gross, req.PaymentMethod),
		Value:     money.FormatWhole(money.Parse(gross)),
	})
}

type dealFeeRequest struct {
	Amount        string             `json:"amount"`
	Assets        []string           `json:"assets"`
	FeePercent    float64            `json:"feePercent"`
	PaymentMethod data.PaymentMethod `json:"paymentMethod"`
}

type assetPrice struct {
	Asset string `json:"asset"`
	Price string `json:"price"`
}

type dealFeeResponse struct {
	Assets        []assetPrice `json:"assets"`
	Budget        string       `json:"budget"`
	ProcessingFee string       `json:"processingFee"`
}

// DealFeeHandler prices a deal form: each asset's list price, the asset budget,
// and the processing fee on the agreed amount, or on the budget while no amount
// is set.
func (s *Server) DealFeeHandler(w http.ResponseWriter, r *http.Request) {
	var req dealFeeRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	catalog := s.state.Catalog()
	if err := catalog.ValidateAssets(req.Assets); err != nil {
		badRequest(w, r, err)
		return
	}

	lines := make([]assetPrice, 0, len(req.Assets))
	for _, name := range req.Assets {
		price, _ := catalog.Price(name)
		lines = append(lines, assetPrice{Asset: name, Price: money.FormatWhole(price)})
	}

	budget := catalog.DealBudget(req.Assets)
	amount := req.Amount
	if strings.TrimSpace(amount) == "" {
		amount = budget
	}

	middleware.WriteAPISuccess(w, r, dealFeeResponse{
		Assets:        lines,
		Budget:        budget,
		ProcessingFee: pricing.DealProcessingFee(amount, req.FeePercent, req.PaymentMethod),
	})
}

type playerPlanRequest struct {
	PlayerID      string             `json:"playerId"`
	SeasonType    data.SeasonType    `json:"seasonType"`
	PaymentType   data.PaymentType   `json:"paymentType"`
	PaymentMethod data.PaymentMethod `json:"paymentMethod"`
}

// PlayerPlanHandler previews a payment. With a playerId the plan builds on
// that player's saved record.
func (s *Server) PlayerPlanHandler(w http.ResponseWriter, r *http.Request) {
	var req playerPlanRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	var prior *data.Player
	if req.PlayerID != "" {
		for _, p := range s.state.Snapshot().Players {
			if p.ID == req.PlayerID {
				p := p
				prior = &p
				break
			}
		}
		if prior == nil {
			writeError(w, r, fmt.Errorf("%w: player %s", state.ErrNotFound, req.PlayerID))
			return
		}
	}

	middleware.WriteAPISuccess(w, r, roster.Plan(prior, req.SeasonType, req.PaymentType, req.PaymentMethod))
}

func (s *Server) RenewalsHandler(w http.ResponseWriter, r *http.Request) {
	middleware.WriteAPISuccess(w, r, s.state.RenewalCandidates())
}
