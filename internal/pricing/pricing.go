// Package pricing holds the two fee models used on money coming in: the
// tax-inclusive ticket breakdown and the sponsorship processing fee. They are
// deliberately separate and must not be merged.
package pricing

import (
	"frontoffice/internal/data"
	"frontoffice/internal/money"
)

// Ticketing constants
const (
	SalesTaxRate   = 0.0825
	TicketCardRate = 0.029
	TicketFlatFee  = 0.99
)

// Card processing for deals and player payments
const (
	CardRate     = 0.029
	CardFixedFee = 0.30
)

// Season packages
const (
	HomeGames         = 24
	PlatinumPerGame   = 10.00
	ReservedGAPerGame = 6.50
	PackagePlatinum   = "Platinum"
	PackageReservedGA = "Reserved"
	PackageCustom     = "Custom"
)

// Breakdown splits a tax-inclusive ticket total. Every field is a "$0.00" style
// string, the form stored on ticket records.
type Breakdown struct {
	Gross     string `json:"gross"`
	Tax       string `json:"tax"`
	CCFee     string `json:"ccFee"`
	TicketFee string `json:"ticketFee"`
	Net       string `json:"net"`
}

// TicketBreakdown backs 8.25% sales tax out of gross, charges 2.9% of gross for
// card payments and a flat $0.99 ticket fee. A zero or negative gross yields an
// all-zero breakdown.
func TicketBreakdown(gross string, method data.PaymentMethod) Breakdown {
	total := money.Parse(gross)
	if total <= 0 {
		zero := money.Fixed(0, 2)
		return Breakdown{Gross: zero, Tax: zero, CCFee: zero, TicketFee: zero, Net: zero}
	}

	base := total / (1 + SalesTaxRate)
	tax := total - base

	ccFee := 0.0
	if method == data.PaymentCreditCard {
		ccFee = total * TicketCardRate
	}

	net := total - tax - ccFee - TicketFlatFee

	return Breakdown{
		Gross:     money.Fixed(total, 2),
		Tax:       money.Fixed(tax, 2),
		CCFee:     money.Fixed(ccFee, 2),
		TicketFee: money.Fixed(TicketFlatFee, 2),
		Net:       money.Fixed(net, 2),
	}
}

// CardFee is the percentage plus fixed fee charged on a card payment.
func CardFee(amount float64) float64 {
	return amount*CardRate + CardFixedFee
}

// DealProcessingFee returns the processing fee shown on a deal. A manual
// percentage wins and is rounded to whole dollars. Without one, card payments
// pay CardFee and everything else pays nothing.
func DealProcessingFee(amount string, feePercent float64, method data.PaymentMethod) string {
	value := money.Parse(amount)
	switch {
	case feePercent > 0:
		return money.FormatWhole(value * feePercent / 100)
	case method == data.PaymentCreditCard:
		return money.Fixed(CardFee(value), 2)
	default:
		return "$0"
	}
}

// SeasonPackageValue prices a season package for the given number of seats. The
// second result is false for custom packages, whose value is entered by hand.
func SeasonPackageValue(pkg string, seats int) (string, bool) {
	if seats < 0 {
		seats = 0
	}
	var perGame float64
	switch pkg {
	case PackagePlatinum:
		perGame = PlatinumPerGame
	case PackageReservedGA:
		perGame = ReservedGAPerGame
	default:
		return "", false
	}
	return money.FormatWhole(perGame * HomeGames * float64(seats)), true
}
