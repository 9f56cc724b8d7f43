// Package roster prices player registrations.
package roster

import (
	"math"
	"strconv"

	"frontoffice/internal/data"
	"frontoffice/internal/money"
	"frontoffice/internal/pricing"
)

// Season prices and the flat deposit.
const (
	FullSeasonPrice = 516
	HalfSeasonPrice = 208
	DepositAmount   = 155
)

// PlanResult holds the amounts written onto a player record.
type PlanResult struct {
	AmountDue  string `json:"amountDue"`
	Fees       string `json:"fees"`
	PaidAmount string `json:"paidAmount"`
	Balance    string `json:"balance"`
}

// Apply copies the plan onto p.
func (r PlanResult) Apply(p *data.Player) {
	p.AmountDue = r.AmountDue
	p.Fees = r.Fees
	p.PaidAmount = r.PaidAmount
	p.Balance = r.Balance
}

// SeasonPrice returns the registration price. Anything other than a half season
// is priced as a full season.
func SeasonPrice(season data.SeasonType) float64 {
	if season == data.SeasonHalf {
		return HalfSeasonPrice
	}
	return FullSeasonPrice
}

// Plan computes the amounts for a payment. prior is the record as last saved,
// nil for a new registration. Pay Balance settles whatever prior has not paid and
// adds the new card fee to the fees already charged.
func Plan(prior *data.Player, season data.SeasonType, payment data.PaymentType, method data.PaymentMethod) PlanResult {
	price := SeasonPrice(season)

	var priorPaid, priorFees float64
	if prior != nil {
		priorPaid = money.Parse(prior.PaidAmount)
		priorFees = money.Parse(prior.Fees)
	}

	base := price
	switch payment {
	case data.PayDeposit:
		base = DepositAmount
	case data.PayBalance:
		base = math.Max(price-priorPaid, 0)
	}

	fee := 0.0
	if method == data.PaymentCreditCard && base > 0 {
		fee = pricing.CardFee(base)
	}

	totalFees := fee
	paid := base
	if payment == data.PayBalance {
		totalFees += priorFees
		paid += priorPaid
	}

	return PlanResult{
		AmountDue:  plainDollars(price),
		Fees:       feeDollars(totalFees),
		PaidAmount: plainDollars(paid),
		Balance:    plainDollars(price - paid),
	}
}

// plainDollars renders whole amounts without cents and anything else with two
// decimals, without grouping.
func plainDollars(n float64) string {
	n = money.Round2(n)
	if n == math.Trunc(n) {
		if n < 0 {
			return "-$" + strconv.FormatInt(int64(-n), 10)
		}
		return "$" + strconv.FormatInt(int64(n), 10)
	}
	return money.Fixed(n, 2)
}

func feeDollars(n float64) string {
	if n <= 0 {
		return "$0"
	}
	return money.Fixed(n, 2)
}
