package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/loandesk/internal/annuity"
	"github.com/vbonduro/loandesk/internal/db"
	"github.com/vbonduro/loandesk/internal/domain"
)

func TestPaymentStoreListByLoanID(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 3)

	payments, err := NewPaymentStore(d).ListByLoanID(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	for i, p := range payments {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, loan.ID, p.LoanID)
		assert.False(t, p.Paid)
		assert.Nil(t, p.PaymentDate)
		assert.Equal(t, "100.00", p.Amount.StringFixed(2))
	}
	assert.Equal(t, "2024-02-09", payments[0].DueDate.Format(domain.DateLayout))
	assert.Equal(t, "2024-04-09", payments[2].DueDate.Format(domain.DateLayout))
}

func TestPaymentStoreReplaceSchedule(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 6)
	payments := NewPaymentStore(d)
	ctx := context.Background()

	replacement := annuity.Schedule(day0, 2, decimal.RequireFromString("250.50"))
	require.NoError(t, payments.ReplaceSchedule(ctx, loan.ID, replacement))

	list, err := payments.ListByLoanID(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "250.50", list[1].Amount.StringFixed(2))
}

func TestPaymentStoreSettle_NonFinalKeepsLoanOpen(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 2)
	payments := NewPaymentStore(d)
	ctx := context.Background()

	list, err := payments.ListByLoanID(ctx, loan.ID)
	require.NoError(t, err)

	paidOn := day0.AddDate(0, 0, 20)
	p, repaid, err := payments.Settle(ctx, list[0].ID, paidOn)
	require.NoError(t, err)
	assert.False(t, repaid)
	assert.True(t, p.Paid)
	require.NotNil(t, p.PaymentDate)
	assert.True(t, p.PaymentDate.Equal(paidOn))

	got, err := NewLoanStore(d).GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanOpen, got.Status)
}

func TestPaymentStoreSettle_FinalRepaysLoan(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 2)
	payments := NewPaymentStore(d)
	ctx := context.Background()

	list, err := payments.ListByLoanID(ctx, loan.ID)
	require.NoError(t, err)

	// Out of order on purpose: the last entry paid is number 1.
	_, repaid, err := payments.Settle(ctx, list[1].ID, day0)
	require.NoError(t, err)
	assert.False(t, repaid)
	_, repaid, err = payments.Settle(ctx, list[0].ID, day0)
	require.NoError(t, err)
	assert.True(t, repaid)

	got, err := NewLoanStore(d).GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanRepaid, got.Status)
	require.NotNil(t, got.ClosedAt)

	n, err := payments.CountPaid(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPaymentStoreSettle_Rejections(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", 3)
	payments := NewPaymentStore(d)
	ctx := context.Background()

	list, err := payments.ListByLoanID(ctx, loan.ID)
	require.NoError(t, err)

	_, _, err = payments.Settle(ctx, 99999, day0)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	_, _, err = payments.Settle(ctx, list[0].ID, day0)
	require.NoError(t, err)
	_, _, err = payments.Settle(ctx, list[0].ID, day0)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	require.NoError(t, NewLoanStore(d).Close(ctx, loan.ID, domain.LoanCancelled, day0))
	_, _, err = payments.Settle(ctx, list[1].ID, day0)
	assert.ErrorIs(t, err, domain.ErrLoanClosed)
}

func TestPaymentStoreListOverdue(t *testing.T) {
	d := openTestDB(t)
	client := createClient(t, d, "Ivan")
	open := createLoan(t, d, client.ID, "open", 3)
	cancelled := createLoan(t, d, client.ID, "cancelled", 3)
	payments := NewPaymentStore(d)
	loans := NewLoanStore(d)
	ctx := context.Background()

	require.NoError(t, loans.Close(ctx, cancelled.ID, domain.LoanCancelled, day0))

	list, err := payments.ListByLoanID(ctx, open.ID)
	require.NoError(t, err)
	_, _, err = payments.Settle(ctx, list[0].ID, day0)
	require.NoError(t, err)

	// Due dates are day0+30, +60, +90; as of day0+75 entries 1 and 2 are due,
	// and entry 1 is paid.
	overdue, err := payments.ListOverdue(ctx, day0.AddDate(0, 0, 75))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, open.ID, overdue[0].LoanID)
	assert.Equal(t, 2, overdue[0].Number)
}

func TestPaymentStoreSettle_RollsBackOnCountFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT loan_id, paid FROM payments WHERE id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"loan_id", "paid"}).AddRow(int64(3), false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM loans WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("open"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET paid = 1, payment_date = ? WHERE id = ?")).
		WithArgs("2024-01-10", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments WHERE loan_id = ? AND paid = 0")).
		WithArgs(int64(3)).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, repaid, err := NewPaymentStore(mockDB).Settle(context.Background(), 7, day0)
	require.Error(t, err)
	assert.False(t, repaid)
	assert.Contains(t, err.Error(), "failed to count unpaid payments")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentStoreReplaceSchedule_RollsBackOnInsertFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payments WHERE loan_id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO payments (loan_id, payment_number, due_date, amount)"))
	prep.ExpectExec().
		WithArgs(int64(5), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(int64(5), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err = NewPaymentStore(mockDB).ReplaceSchedule(context.Background(), 5,
		annuity.Schedule(day0, 3, decimal.NewFromInt(10)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert payment 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Settlements racing on separate connections to a WAL file database must all
// go through; each transaction takes the write lock when it begins.
func TestPaymentStoreSettle_ConcurrentOnFileDatabase(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "bank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	const term = 8
	client := createClient(t, d, "Ivan")
	loan := createLoan(t, d, client.ID, "ref", term)
	payments := NewPaymentStore(d)
	ctx := context.Background()

	list, err := payments.ListByLoanID(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, list, term)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		repaids int
	)
	for _, p := range list {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, repaid, err := payments.Settle(ctx, id, day0)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if repaid {
				repaids++
			}
		}(p.ID)
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, repaids)

	got, err := NewLoanStore(d).GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanRepaid, got.Status)
}
