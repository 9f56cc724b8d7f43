package roster

import (
	"testing"

	"frontoffice/internal/data"
)

func TestPlan(t *testing.T) {
	deposited := &data.Player{AmountDue: "$516", PaidAmount: "$155", Fees: "$0", Balance: "$361"}
	depositedByCard := &data.Player{AmountDue: "$208", PaidAmount: "$155", Fees: "$4.80", Balance: "$53"}

	tests := []struct {
		name    string
		prior   *data.Player
		season  data.SeasonType
		payment data.PaymentType
		method  data.PaymentMethod
		want    PlanResult
	}{
		{
			name: "full season by check", season: data.SeasonFull, payment: data.PayFull, method: data.PaymentCheck,
			want: PlanResult{AmountDue: "$516", Fees: "$0", PaidAmount: "$516", Balance: "$0"},
		},
		{
			name: "full season by card", season: data.SeasonFull, payment: data.PayFull, method: data.PaymentCreditCard,
			want: PlanResult{AmountDue: "$516", Fees: "$15.26", PaidAmount: "$516", Balance: "$0"},
		},
		{
			name: "half season deposit by card", season: data.SeasonHalf, payment: data.PayDeposit, method: data.PaymentCreditCard,
			want: PlanResult{AmountDue: "$208", Fees: "$4.80", PaidAmount: "$155", Balance: "$53"},
		},
		{
			name: "full season deposit by cash", season: data.SeasonFull, payment: data.PayDeposit, method: data.PaymentCash,
			want: PlanResult{AmountDue: "$516", Fees: "$0", PaidAmount: "$155", Balance: "$361"},
		},
		{
			name: "pay balance by check", prior: deposited, season: data.SeasonFull, payment: data.PayBalance, method: data.PaymentCheck,
			want: PlanResult{AmountDue: "$516", Fees: "$0", PaidAmount: "$516", Balance: "$0"},
		},
		{
			name: "pay balance by card accumulates fees", prior: depositedByCard, season: data.SeasonHalf, payment: data.PayBalance, method: data.PaymentCreditCard,
			want: PlanResult{AmountDue: "$208", Fees: "$6.64", PaidAmount: "$208", Balance: "$0"},
		},
		{
			name: "pay balance on a settled record adds no fee", prior: &data.Player{PaidAmount: "$516", Fees: "$15.26"},
			season: data.SeasonFull, payment: data.PayBalance, method: data.PaymentCreditCard,
			want: PlanResult{AmountDue: "$516", Fees: "$15.26", PaidAmount: "$516", Balance: "$0"},
		},
		{
			name: "pay balance with no prior record", season: data.SeasonHalf, payment: data.PayBalance, method: data.PaymentCheck,
			want: PlanResult{AmountDue: "$208", Fees: "$0", PaidAmount: "$208", Balance: "$0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.prior, tt.season, tt.payment, tt.method)
			if got != tt.want {
				t.Errorf("Plan() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlanApply(t *testing.T) {
	p := &data.Player{Name: "Sam", PaidAmount: "$155", Fees: "$0"}
	Plan(p, data.SeasonFull, data.PayBalance, data.PaymentCheck).Apply(p)
	if p.PaidAmount != "$516" || p.Balance != "$0" || p.Name != "Sam" {
		t.Errorf("player after apply = %+v", p)
	}
}
