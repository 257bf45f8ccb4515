package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/loandesk/internal/annuity"
	"github.com/vbonduro/loandesk/internal/domain"
)

type PaymentStore struct {
	db *sql.DB
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

const paymentColumns = `id, loan_id, payment_number, due_date, amount, paid, payment_date`

// ReplaceSchedule drops whatever schedule loanID has and writes installments
// in its place. Both steps share one transaction.
func (s *PaymentStore) ReplaceSchedule(ctx context.Context, loanID int64, installments []annuity.Installment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE loan_id = ?`, loanID); err != nil {
		return fmt.Errorf("failed to delete previous schedule: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO payments (loan_id, payment_number, due_date, amount) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare schedule insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, inst := range installments {
		if _, err := stmt.ExecContext(ctx, loanID, inst.Number, formatDate(inst.DueDate), inst.Amount); err != nil {
			return fmt.Errorf("failed to insert payment %d: %w", inst.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}

func (s *PaymentStore) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE id = ?
	`, id)

	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

func (s *PaymentStore) ListByLoanID(ctx context.Context, loanID int64) ([]*domain.Payment, error) {
	return s.list(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE loan_id = ? ORDER BY payment_number ASC
	`, loanID)
}

// ListOverdue returns unpaid payments of open loans that fell due before asOf,
// oldest first.
func (s *PaymentStore) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Payment, error) {
	return s.list(ctx, `
		SELECT p.id, p.loan_id, p.payment_number, p.due_date, p.amount, p.paid, p.payment_date
		FROM payments p JOIN loans l ON l.id = p.loan_id
		WHERE p.paid = 0 AND p.due_date < ? AND l.status = ?
		ORDER BY p.due_date ASC, p.loan_id ASC
	`, formatDate(asOf), string(domain.LoanOpen))
}

// CountPaid returns how many payments of loanID are settled.
func (s *PaymentStore) CountPaid(ctx context.Context, loanID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments WHERE loan_id = ? AND paid = 1
	`, loanID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count paid payments: %w", err)
	}
	return n, nil
}

// Settle marks a payment paid on paidOn. When it was the loan's last unpaid
// payment the loan becomes repaid in the same transaction. The returned bool
// reports whether that happened.
func (s *PaymentStore) Settle(ctx context.Context, paymentID int64, paidOn time.Time) (*domain.Payment, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var loanID int64
	var paid bool
	err = tx.QueryRowContext(ctx, `SELECT loan_id, paid FROM payments WHERE id = ?`, paymentID).Scan(&loanID, &paid)
	if err == sql.ErrNoRows {
		return nil, false, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get payment: %w", err)
	}
	if paid {
		return nil, false, domain.ErrAlreadyPaid
	}

	var status string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM loans WHERE id = ?`, loanID).Scan(&status); err != nil {
		return nil, false, fmt.Errorf("failed to get loan status: %w", err)
	}
	if domain.LoanStatus(status).Terminal() {
		return nil, false, domain.ErrLoanClosed
	}

	day := formatDate(paidOn)
	if _, err := tx.ExecContext(ctx, `UPDATE payments SET paid = 1, payment_date = ? WHERE id = ?`, day, paymentID); err != nil {
		return nil, false, fmt.Errorf("failed to mark payment paid: %w", err)
	}

	var unpaid int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE loan_id = ? AND paid = 0`, loanID).Scan(&unpaid); err != nil {
		return nil, false, fmt.Errorf("failed to count unpaid payments: %w", err)
	}

	repaid := unpaid == 0
	if repaid {
		if _, err := tx.ExecContext(ctx, `UPDATE loans SET status = ?, closed_at = ? WHERE id = ?`,
			string(domain.LoanRepaid), day, loanID); err != nil {
			return nil, false, fmt.Errorf("failed to close loan: %w", err)
		}
	}

	p, err := scanPayment(tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, paymentID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return p, repaid, nil
}

func (s *PaymentStore) list(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var payments []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

func scanPayment(row scanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	var due string
	var paidOn sql.NullString
	if err := row.Scan(&p.ID, &p.LoanID, &p.Number, &due, &p.Amount, &p.Paid, &paidOn); err != nil {
		return nil, err
	}

	var err error
	if p.DueDate, err = parseDate(due); err != nil {
		return nil, err
	}
	if p.PaymentDate, err = parseNullDate(paidOn); err != nil {
		return nil, err
	}
	return p, nil
}
