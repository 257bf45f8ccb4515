package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/loandesk/internal/domain"
)

type LoanStore struct {
	db *sql.DB
}

func NewLoanStore(db *sql.DB) *LoanStore {
	return &LoanStore{db: db}
}

const loanColumns = `l.id, l.reference, l.client_id, c.name, l.principal, l.rate_percent,
	l.term_months, l.monthly_payment, l.start_date, l.status, l.closed_at`

func (s *LoanStore) Create(ctx context.Context, l *domain.Loan) (*domain.Loan, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO loans (reference, client_id, principal, rate_percent, term_months, monthly_payment, start_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, l.Reference, l.ClientID, l.Principal, l.RatePercent, l.TermMonths, l.MonthlyPayment, formatDate(l.StartDate), string(l.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *LoanStore) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans l JOIN clients c ON c.id = l.client_id
		WHERE l.id = ?
	`, id)

	loan, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

func (s *LoanStore) List(ctx context.Context) ([]*domain.Loan, error) {
	return s.list(ctx, `
		SELECT `+loanColumns+`
		FROM loans l JOIN clients c ON c.id = l.client_id
		ORDER BY l.id ASC
	`)
}

func (s *LoanStore) ListByClientID(ctx context.Context, clientID int64) ([]*domain.Loan, error) {
	return s.list(ctx, `
		SELECT `+loanColumns+`
		FROM loans l JOIN clients c ON c.id = l.client_id
		WHERE l.client_id = ?
		ORDER BY l.id ASC
	`, clientID)
}

func (s *LoanStore) list(ctx context.Context, query string, args ...any) ([]*domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loans: %w", err)
	}

	return loans, nil
}

// Close moves an open loan into a terminal status. It returns
// domain.ErrLoanClosed when the loan exists but is no longer open.
func (s *LoanStore) Close(ctx context.Context, id int64, status domain.LoanStatus, on time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: cannot close loan %d as %q", domain.ErrInvalidInput, id, status)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE loans SET status = ?, closed_at = ? WHERE id = ? AND status = ?
	`, string(status), formatDate(on), id, string(domain.LoanOpen))
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		loan, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if loan == nil {
			return domain.ErrLoanNotFound
		}
		return domain.ErrLoanClosed
	}

	return nil
}

// Delete removes a loan and, through the cascade, its schedule.
func (s *LoanStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM loans WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

func scanLoan(row scanner) (*domain.Loan, error) {
	l := &domain.Loan{}
	var start, status string
	var closed sql.NullString
	if err := row.Scan(&l.ID, &l.Reference, &l.ClientID, &l.ClientName, &l.Principal, &l.RatePercent,
		&l.TermMonths, &l.MonthlyPayment, &start, &status, &closed); err != nil {
		return nil, err
	}

	var err error
	if l.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if l.ClosedAt, err = parseNullDate(closed); err != nil {
		return nil, err
	}
	l.Status = domain.LoanStatus(status)
	return l, nil
}
