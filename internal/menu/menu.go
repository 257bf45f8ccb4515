// Package menu implements the interactive text front end.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/vbonduro/loandesk/internal/domain"
	"github.com/vbonduro/loandesk/internal/service"
)

// desk is the subset of service.LoanService the menu drives.
type desk interface {
	RegisterClient(ctx context.Context, in service.NewClient) (*domain.Client, error)
	ListClients(ctx context.Context) ([]*domain.Client, error)
	OpenLoan(ctx context.Context, in service.NewLoan) (*domain.Loan, []*domain.Payment, error)
	ListLoans(ctx context.Context) ([]*domain.Loan, error)
	Schedule(ctx context.Context, loanID int64) (*domain.Loan, []*domain.Payment, error)
	PayPayment(ctx context.Context, paymentID int64) (*service.Settlement, error)
	Today() time.Time
}

var errBadInput = errors.New("invalid input")

type Menu struct {
	desk   desk
	in     *bufio.Scanner
	out    io.Writer
	styles styles
}

func New(d desk, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		desk:   d,
		in:     bufio.NewScanner(in),
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Run shows the menu until the user chooses exit or input ends. Bad input and
// failed operations are reported and the menu is shown again; only a failure
// to read input ends Run with an error.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.printMenu()
		choice, err := m.prompt("Choose an action")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = m.registerClient(ctx)
		case "2":
			err = m.openLoan(ctx)
		case "3":
			err = m.listClients(ctx)
		case "4":
			err = m.listLoans(ctx)
		case "5":
			err = m.showSchedule(ctx)
		case "6":
			err = m.payPayment(ctx)
		case "0":
			return nil
		default:
			m.fail("Unknown option %q.", choice)
			continue
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errBadInput):
			m.fail("Invalid input.")
		default:
			m.fail("Error: %v", err)
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, m.styles.title.Render("--- Bank remote client service ---"))
	fmt.Fprintln(m.out, "1. Register client")
	fmt.Fprintln(m.out, "2. Open loan")
	fmt.Fprintln(m.out, "3. List clients")
	fmt.Fprintln(m.out, "4. List loans")
	fmt.Fprintln(m.out, "5. View loan schedule")
	fmt.Fprintln(m.out, "6. Pay a payment")
	fmt.Fprintln(m.out, "0. Exit")
}

func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprintf(m.out, "%s: ", label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) promptID(label string) (int64, error) {
	s, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errBadInput
	}
	return id, nil
}

func (m *Menu) promptDecimal(label string) (decimal.Decimal, error) {
	s, err := m.prompt(label)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, errBadInput
	}
	return d, nil
}

func (m *Menu) ok(format string, args ...any) {
	fmt.Fprintln(m.out, m.styles.ok.Render(fmt.Sprintf(format, args...)))
}

func (m *Menu) fail(format string, args ...any) {
	fmt.Fprintln(m.out, m.styles.fail.Render(fmt.Sprintf(format, args...)))
}

func (m *Menu) registerClient(ctx context.Context) error {
	var in service.NewClient
	fields := []struct {
		label string
		dst   *string
	}{
		{"Client name", &in.Name},
		{"Birthdate (YYYY-MM-DD)", &in.Birthdate},
		{"Phone", &in.Phone},
		{"Email", &in.Email},
	}
	for _, f := range fields {
		v, err := m.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	client, err := m.desk.RegisterClient(ctx, in)
	if err != nil {
		return err
	}
	m.ok("Client registered with ID %d.", client.ID)
	return nil
}

func (m *Menu) openLoan(ctx context.Context) error {
	clientID, err := m.promptID("Client ID")
	if err != nil {
		return err
	}
	principal, err := m.promptDecimal("Loan amount")
	if err != nil {
		return err
	}
	rate, err := m.promptDecimal("Interest rate (%)")
	if err != nil {
		return err
	}
	term, err := m.promptID("Term (months)")
	if err != nil {
		return err
	}

	loan, payments, err := m.desk.OpenLoan(ctx, service.NewLoan{
		ClientID:    clientID,
		Principal:   principal,
		RatePercent: rate,
		TermMonths:  int(term),
	})
	if err != nil {
		return err
	}
	m.ok("Loan %d opened: %d payments of %s, reference %s.",
		loan.ID, len(payments), loan.MonthlyPayment.StringFixed(2), loan.Reference)
	return nil
}

func (m *Menu) listClients(ctx context.Context) error {
	clients, err := m.desk.ListClients(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, ClientTable(clients))
	return nil
}

func (m *Menu) listLoans(ctx context.Context) error {
	loans, err := m.desk.ListLoans(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, LoanTable(loans))
	return nil
}

func (m *Menu) showSchedule(ctx context.Context) error {
	loanID, err := m.promptID("Loan ID")
	if err != nil {
		return err
	}
	loan, payments, err := m.desk.Schedule(ctx, loanID)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, m.styles.title.Render(fmt.Sprintf("Payment schedule for loan %d (%s)", loan.ID, loan.Status)))
	fmt.Fprintln(m.out, ScheduleTable(payments, m.desk.Today()))
	return nil
}

func (m *Menu) payPayment(ctx context.Context) error {
	paymentID, err := m.promptID("Payment ID")
	if err != nil {
		return err
	}
	settlement, err := m.desk.PayPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	m.ok("Payment %d paid.", paymentID)
	if settlement.Repaid {
		m.ok("Loan %d is fully repaid.", settlement.Loan.ID)
	}
	return nil
}
