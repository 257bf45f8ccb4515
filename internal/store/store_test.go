package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/loandesk/internal/annuity"
	"github.com/vbonduro/loandesk/internal/db"
	"github.com/vbonduro/loandesk/internal/domain"
)

var day0 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func createClient(t *testing.T, d *sql.DB, name string) *domain.Client {
	t.Helper()
	c, err := NewClientStore(d).Create(context.Background(), &domain.Client{
		Name:             name,
		Birthdate:        "1990-05-01",
		Phone:            "+7 900 000-00-00",
		Email:            "client@example.com",
		RegistrationDate: day0,
	})
	require.NoError(t, err)
	return c
}

func createLoan(t *testing.T, d *sql.DB, clientID int64, ref string, term int) *domain.Loan {
	t.Helper()
	payment := decimal.RequireFromString("100.00")
	loan, err := NewLoanStore(d).Create(context.Background(), &domain.Loan{
		Reference:      ref,
		ClientID:       clientID,
		Principal:      decimal.NewFromInt(int64(100 * term)),
		RatePercent:    decimal.Zero,
		TermMonths:     term,
		MonthlyPayment: payment,
		StartDate:      day0,
		Status:         domain.LoanOpen,
	})
	require.NoError(t, err)
	require.NoError(t, NewPaymentStore(d).ReplaceSchedule(context.Background(), loan.ID, annuity.Schedule(day0, term, payment)))
	return loan
}
