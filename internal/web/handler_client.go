package web

import (
	"net/http"
	"strconv"

	"github.com/vbonduro/loandesk/internal/service"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.service.ListClients(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to list clients")
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Clients": clients, "ActiveNav": "clients"},
		"base.html", "pages/clients.html", "partials/client_row.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.service.RegisterClient(r.Context(), service.NewClient{
		Name:      formValue(r, "name"),
		Birthdate: formValue(r, "birthdate"),
		Phone:     formValue(r, "phone"),
		Email:     formValue(r, "email"),
	})
	if err != nil {
		s.writeError(w, err, "failed to register client")
		return
	}

	// htmx appends the new row to the client table.
	if r.Header.Get("HX-Request") == "true" {
		if err := s.renderPartial(w, "partials/client_row.html", client); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	redirect(w, r, "/clients/"+strconv.FormatInt(client.ID, 10))
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	client, err := s.service.GetClient(r.Context(), clientID)
	if err != nil {
		s.writeError(w, err, "failed to get client")
		return
	}
	loans, err := s.service.ListClientLoans(r.Context(), clientID)
	if err != nil {
		s.writeError(w, err, "failed to list client loans")
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Client": client, "Loans": loans, "ActiveNav": "clients"},
		"base.html", "pages/client_detail.html", "partials/loan_row.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
