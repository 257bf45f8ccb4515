package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/vbonduro/loandesk/internal/domain"
	"github.com/vbonduro/loandesk/internal/statement"
)

// StatementContentType is the content type of rendered statements.
const StatementContentType = "text/csv"

// ExportStatement renders the loan's schedule as CSV, archives it and returns
// the archive key. The key depends only on the loan, so exporting again
// replaces the earlier statement.
func (s *LoanService) ExportStatement(ctx context.Context, loanID int64) (string, error) {
	loan, payments, err := s.Schedule(ctx, loanID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteStatement(&buf, loan, payments); err != nil {
		return "", fmt.Errorf("failed to render statement: %w", err)
	}

	key := statement.Key(loan.ID, loan.Reference)
	if err := s.statements.Put(ctx, key, &buf); err != nil {
		return "", fmt.Errorf("failed to save statement: %w", err)
	}
	s.logger.Info("statement exported", "loan_id", loanID, "key", key)
	return key, nil
}

// OpenStatement returns a previously exported statement.
func (s *LoanService) OpenStatement(ctx context.Context, key string) (io.ReadCloser, string, error) {
	rc, err := s.statements.Open(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return rc, StatementContentType, nil
}

// discardStatement drops the archived statement of loan, if any. Failures
// are logged; the statement is only a snapshot.
func (s *LoanService) discardStatement(ctx context.Context, loan *domain.Loan) {
	key := statement.Key(loan.ID, loan.Reference)
	err := s.statements.Remove(ctx, key)
	switch {
	case err == nil:
		s.logger.Info("stale statement removed", "loan_id", loan.ID, "key", key)
	case errors.Is(err, statement.ErrNotFound):
	default:
		s.logger.Error("failed to remove stale statement", "loan_id", loan.ID, "key", key, "error", err)
	}
}

// WriteStatement writes one CSV row per payment, preceded by a header row.
func WriteStatement(w io.Writer, loan *domain.Loan, payments []*domain.Payment) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"reference", "client", "payment_number", "due_date", "amount", "paid", "payment_date"},
	}
	for _, p := range payments {
		paidOn := ""
		if p.PaymentDate != nil {
			paidOn = p.PaymentDate.Format(domain.DateLayout)
		}
		records = append(records, []string{
			loan.Reference,
			loan.ClientName,
			strconv.Itoa(p.Number),
			p.DueDate.Format(domain.DateLayout),
			p.Amount.StringFixed(2),
			strconv.FormatBool(p.Paid),
			paidOn,
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}
