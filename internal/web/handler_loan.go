package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vbonduro/loandesk/internal/domain"
	"github.com/vbonduro/loandesk/internal/service"
)

// scheduleRow is one payment as shown on the loan page.
type scheduleRow struct {
	*domain.Payment
	Late    bool
	Payable bool
}

func scheduleRows(loan *domain.Loan, payments []*domain.Payment, today time.Time) []scheduleRow {
	open := !loan.Status.Terminal()
	rows := make([]scheduleRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, scheduleRow{
			Payment: p,
			Late:    open && p.Overdue(today),
			Payable: open && !p.Paid,
		})
	}
	return rows
}

func loanPath(id int64) string {
	return "/loans/" + strconv.FormatInt(id, 10)
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.service.ListLoans(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to list loans")
		return
	}
	clients, err := s.service.ListClients(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to list clients")
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Loans": loans, "Clients": clients, "ActiveNav": "loans"},
		"base.html", "pages/loans.html", "partials/loan_row.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleOpenLoan(w http.ResponseWriter, r *http.Request) {
	clientID, err := formInt(r, "client_id")
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	principal, err := formDecimal(r, "principal")
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	rate, err := formDecimal(r, "rate")
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	term, err := formInt(r, "term")
	if err != nil {
		s.writeError(w, err, "")
		return
	}

	loan, _, err := s.service.OpenLoan(r.Context(), service.NewLoan{
		ClientID:    clientID,
		Principal:   principal,
		RatePercent: rate,
		TermMonths:  int(term),
	})
	if err != nil {
		s.writeError(w, err, "failed to open loan")
		return
	}
	redirect(w, r, loanPath(loan.ID))
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	loan, payments, err := s.service.Schedule(r.Context(), loanID)
	if err != nil {
		s.writeError(w, err, "failed to get loan")
		return
	}

	if err := s.renderPage(w,
		map[string]any{
			"Loan":      loan,
			"Schedule":  scheduleRows(loan, payments, s.service.Today()),
			"Statement": r.URL.Query().Get("statement"),
			"ActiveNav": "loans",
		},
		"base.html", "pages/loan_detail.html", "partials/payment_row.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleCancelLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	if _, err := s.service.CancelLoan(r.Context(), loanID); err != nil {
		s.writeError(w, err, "failed to cancel loan")
		return
	}
	redirect(w, r, loanPath(loanID))
}

func (s *Server) handleRegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	if _, err := s.service.RegenerateSchedule(r.Context(), loanID); err != nil {
		s.writeError(w, err, "failed to regenerate schedule")
		return
	}
	redirect(w, r, loanPath(loanID))
}
