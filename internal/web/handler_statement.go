package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/vbonduro/loandesk/internal/statement"
)

func (s *Server) handleExportStatement(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	key, err := s.service.ExportStatement(r.Context(), loanID)
	if err != nil {
		s.writeError(w, err, "failed to export statement")
		return
	}
	redirect(w, r, loanPath(loanID)+"?statement="+url.QueryEscape(key))
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	reader, contentType, err := s.service.OpenStatement(r.Context(), key)
	switch {
	case errors.Is(err, statement.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, statement.ErrInvalidKey):
		http.Error(w, "invalid statement key", http.StatusBadRequest)
		return
	case err != nil:
		s.logger.Error("open statement failed", "key", key, "error", err)
		http.Error(w, "failed to open statement", http.StatusInternalServerError)
		return
	}
	defer closeWithLog(reader, "statement reader", s.logger)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write statement failed", "key", key, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
