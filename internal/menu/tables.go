package menu

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vbonduro/loandesk/internal/annuity"
	"github.com/vbonduro/loandesk/internal/domain"
)

type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

// ClientTable renders clients one per row.
func ClientTable(clients []*domain.Client) string {
	t := newTable("ID", "Name", "Birthdate", "Phone", "Email", "Registered")
	for _, c := range clients {
		t.Row(
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Birthdate,
			c.Phone,
			c.Email,
			c.RegistrationDate.Format(domain.DateLayout),
		)
	}
	return t.Render()
}

// LoanTable renders loans one per row with their client's name.
func LoanTable(loans []*domain.Loan) string {
	t := newTable("ID", "Client", "Amount", "Rate", "Term", "Payment", "Start", "Status")
	for _, l := range loans {
		t.Row(
			strconv.FormatInt(l.ID, 10),
			l.ClientName,
			l.Principal.StringFixed(2),
			l.RatePercent.String()+"%",
			fmt.Sprintf("%d mo.", l.TermMonths),
			l.MonthlyPayment.StringFixed(2),
			l.StartDate.Format(domain.DateLayout),
			string(l.Status),
		)
	}
	return t.Render()
}

// ScheduleTable renders a loan's payments. Unpaid payments due before today
// are marked overdue.
func ScheduleTable(payments []*domain.Payment, today time.Time) string {
	t := newTable("Payment ID", "No.", "Due", "Amount", "Status")
	for _, p := range payments {
		t.Row(
			strconv.FormatInt(p.ID, 10),
			strconv.Itoa(p.Number),
			p.DueDate.Format(domain.DateLayout),
			p.Amount.StringFixed(2),
			paymentStatus(p, today),
		)
	}
	return t.Render()
}

// AmortizationTable renders the interest/principal split of each period.
func AmortizationTable(installments []annuity.Installment, periods []annuity.Period) string {
	t := newTable("No.", "Due", "Payment", "Interest", "Principal", "Balance")
	for i, p := range periods {
		due := ""
		if i < len(installments) {
			due = installments[i].DueDate.Format(domain.DateLayout)
		}
		t.Row(
			strconv.Itoa(p.Number),
			due,
			p.Payment.StringFixed(2),
			p.Interest.StringFixed(2),
			p.Principal.StringFixed(2),
			p.Balance.StringFixed(2),
		)
	}
	return t.Render()
}

func paymentStatus(p *domain.Payment, today time.Time) string {
	switch {
	case p.Paid && p.PaymentDate != nil:
		return "paid " + p.PaymentDate.Format(domain.DateLayout)
	case p.Paid:
		return "paid"
	case p.Overdue(today):
		return "overdue"
	default:
		return "unpaid"
	}
}
