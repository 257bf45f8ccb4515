package web

import (
	"net/http"

	"github.com/vbonduro/loandesk/internal/service"
)

// handleCalc prices a loan without recording it. With no query parameters it
// renders the empty form.
func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"ActiveNav": "calc"}

	if r.URL.Query().Has("principal") {
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

		quote, err := s.service.Quote(service.QuoteRequest{
			Principal:   principal,
			RatePercent: rate,
			TermMonths:  int(term),
		}, s.service.Today())
		if err != nil {
			s.writeError(w, err, "failed to price loan")
			return
		}
		data["Quote"] = quote
	}

	if err := s.renderPage(w, data, "base.html", "pages/calc.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
