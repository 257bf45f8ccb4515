package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/loandesk/internal/domain"
)

func TestLoanStoreCreate(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")

	loan := createLoan(t, d, client.ID, "ref-1", 12)
	assert.NotZero(t, loan.ID)
	assert.Equal(t, "ref-1", loan.Reference)
	assert.Equal(t, client.ID, loan.ClientID)
	assert.Equal(t, "Ivan", loan.ClientName)
	assert.Equal(t, "1200", loan.Principal.String())
	assert.Equal(t, "100.00", loan.MonthlyPayment.StringFixed(2))
	assert.Equal(t, 12, loan.TermMonths)
	assert.Equal(t, domain.LoanOpen, loan.Status)
	assert.True(t, loan.StartDate.Equal(day0))
	assert.Nil(t, loan.ClosedAt)
}

func TestLoanStoreCreate_UnknownClient(t *testing.T) {
	d := openTestDB(t)

	_, err := NewLoanStore(d).Create(context.Background(), &domain.Loan{
		Reference: "orphan",
		ClientID:  404,
		StartDate: day0,
		Status:    domain.LoanOpen,
	})
	assert.Error(t, err)
}

func TestLoanStoreList(t *testing.T) {
	d := openTestDB(t)
	ivan := createClient(t, d, "Ivan")
	anna := createClient(t, d, "Anna")

	createLoan(t, d, ivan.ID, "a", 3)
	createLoan(t, d, anna.ID, "b", 6)
	createLoan(t, d, ivan.ID, "c", 9)

	all, err := NewLoanStore(d).List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Ivan", "Anna", "Ivan"}, []string{all[0].ClientName, all[1].ClientName, all[2].ClientName})

	mine, err := NewLoanStore(d).ListByClientID(context.Background(), ivan.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a", mine[0].Reference)
	assert.Equal(t, "c", mine[1].Reference)
}

func TestLoanStoreClose(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 2)
	loans := NewLoanStore(d)
	ctx := context.Background()

	require.NoError(t, loans.Close(ctx, loan.ID, domain.LoanCancelled, day0.AddDate(0, 0, 3)))

	got, err := loans.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanCancelled, got.Status)
	require.NotNil(t, got.ClosedAt)
	assert.Equal(t, "2024-01-13", got.ClosedAt.Format(domain.DateLayout))

	err = loans.Close(ctx, loan.ID, domain.LoanRepaid, day0)
	assert.ErrorIs(t, err, domain.ErrLoanClosed)

	err = loans.Close(ctx, 99999, domain.LoanCancelled, day0)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanStoreClose_RequiresTerminalStatus(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 2)
	loans := NewLoanStore(d)
	ctx := context.Background()

	for _, status := range []domain.LoanStatus{domain.LoanOpen, "frozen"} {
		assert.ErrorIs(t, loans.Close(ctx, loan.ID, status, day0), domain.ErrInvalidInput, status)
	}

	got, err := loans.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanOpen, got.Status)
	assert.Nil(t, got.ClosedAt)
}

func TestLoanStoreDelete_CascadesSchedule(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 4)
	ctx := context.Background()

	require.NoError(t, NewLoanStore(d).Delete(ctx, loan.ID))

	payments, err := NewPaymentStore(d).ListByLoanID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	assert.ErrorIs(t, NewLoanStore(d).Delete(ctx, loan.ID), domain.ErrLoanNotFound)
}
