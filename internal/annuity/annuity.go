// Package annuity computes fixed-payment loan schedules.
//
// Nothing here validates its inputs. A non-positive term or principal yields
// a meaningless result; the service layer rejects those before calling in.
package annuity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StepDays is the distance between consecutive due dates. It approximates a
// month and does not follow the calendar.
const StepDays = 30

// growthPrecision is the number of decimal places kept in (1+r)^n.
const growthPrecision = 32

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Installment is one scheduled payment before it is persisted.
type Installment struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

// Period is one row of an amortization table.
type Period struct {
	Number    int
	Payment   decimal.Decimal
	Interest  decimal.Decimal
	Principal decimal.Decimal
	Balance   decimal.Decimal
}

// MonthlyRate converts an annual percentage into the per-month fraction.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(hundred).Div(twelve)
}

// MonthlyPayment returns the fixed payment, rounded to cents, that repays
// principal over termMonths at annualRatePercent compounded monthly.
func MonthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	r := MonthlyRate(annualRatePercent)
	if r.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	f, err := decimal.NewFromInt(1).Add(r).PowWithPrecision(decimal.NewFromInt(int64(termMonths)), growthPrecision)
	if err != nil {
		// 1+r is zero only for a rate of -1200%.
		panic(err)
	}
	f = f.Round(growthPrecision)
	return principal.Mul(r).Mul(f).Div(f.Sub(decimal.NewFromInt(1))).Round(2)
}

// Schedule lays out termMonths installments of payment, the n-th due
// n*StepDays after start.
func Schedule(start time.Time, termMonths int, payment decimal.Decimal) []Installment {
	out := make([]Installment, 0, termMonths)
	for n := 1; n <= termMonths; n++ {
		out = append(out, Installment{
			Number:  n,
			DueDate: start.AddDate(0, 0, StepDays*n),
			Amount:  payment,
		})
	}
	return out
}

// Amortize splits each payment into its interest and principal parts. The
// balance after the last period is the residue left by rounding the payment
// to cents and is never exactly zero in general.
func Amortize(principal, annualRatePercent, payment decimal.Decimal, termMonths int) []Period {
	r := MonthlyRate(annualRatePercent)
	balance := principal
	out := make([]Period, 0, termMonths)
	for n := 1; n <= termMonths; n++ {
		interest := balance.Mul(r).Round(2)
		toPrincipal := payment.Sub(interest)
		balance = balance.Sub(toPrincipal)
		out = append(out, Period{
			Number:    n,
			Payment:   payment,
			Interest:  interest,
			Principal: toPrincipal,
			Balance:   balance,
		})
	}
	return out
}

// Total is the sum of all scheduled payments.
func Total(payment decimal.Decimal, termMonths int) decimal.Decimal {
	return payment.Mul(decimal.NewFromInt(int64(termMonths)))
}
