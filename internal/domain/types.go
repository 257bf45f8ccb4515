package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and on-screen format of every calendar date.
const DateLayout = "2006-01-02"

type LoanStatus string

const (
	LoanOpen      LoanStatus = "open"
	LoanRepaid    LoanStatus = "repaid"
	LoanCancelled LoanStatus = "cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s LoanStatus) Terminal() bool {
	return s == LoanRepaid || s == LoanCancelled
}

type Client struct {
	ID               int64
	Name             string
	Birthdate        string
	Phone            string
	Email            string
	RegistrationDate time.Time
}

type Loan struct {
	ID             int64
	Reference      string
	ClientID       int64
	ClientName     string
	Principal      decimal.Decimal
	RatePercent    decimal.Decimal
	TermMonths     int
	MonthlyPayment decimal.Decimal
	StartDate      time.Time
	Status         LoanStatus
	ClosedAt       *time.Time
}

type Payment struct {
	ID          int64
	LoanID      int64
	Number      int
	DueDate     time.Time
	Amount      decimal.Decimal
	Paid        bool
	PaymentDate *time.Time
}

// Overdue reports whether p was due before asOf and is still unpaid.
func (p *Payment) Overdue(asOf time.Time) bool {
	return !p.Paid && p.DueDate.Before(asOf)
}
