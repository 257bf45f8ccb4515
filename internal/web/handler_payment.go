package web

import (
	"net/http"

	"github.com/vbonduro/loandesk/internal/domain"
)

func (s *Server) handlePayPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}

	settlement, err := s.service.PayPayment(r.Context(), paymentID)
	if err != nil {
		s.writeError(w, err, "failed to pay payment")
		return
	}

	// A settled row can be swapped in place unless the whole loan changed state.
	if r.Header.Get("HX-Request") == "true" && !settlement.Repaid {
		row := scheduleRows(settlement.Loan, []*domain.Payment{settlement.Payment}, s.service.Today())[0]
		if err := s.renderPartial(w, "partials/payment_row.html", row); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	redirect(w, r, loanPath(settlement.Loan.ID))
}
