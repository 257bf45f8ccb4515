package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vbonduro/loandesk/internal/annuity"
)

// Quote is a priced loan offer that has not been recorded.
type Quote struct {
	Principal    decimal.Decimal
	RatePercent  decimal.Decimal
	TermMonths   int
	Payment      decimal.Decimal
	Total        decimal.Decimal
	Overpayment  decimal.Decimal
	Installments []annuity.Installment
	Periods      []annuity.Period
}

// Quote prices the given terms with a schedule starting on start.
func (s *LoanService) Quote(in QuoteRequest, start time.Time) (*Quote, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, invalid(err)
	}

	payment := annuity.MonthlyPayment(in.Principal, in.RatePercent, in.TermMonths)
	total := annuity.Total(payment, in.TermMonths)
	return &Quote{
		Principal:    in.Principal,
		RatePercent:  in.RatePercent,
		TermMonths:   in.TermMonths,
		Payment:      payment,
		Total:        total,
		Overpayment:  total.Sub(in.Principal),
		Installments: annuity.Schedule(start, in.TermMonths, payment),
		Periods:      annuity.Amortize(in.Principal, in.RatePercent, payment, in.TermMonths),
	}, nil
}
