package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/vbonduro/loandesk/internal/annuity"
	"github.com/vbonduro/loandesk/internal/domain"
	"github.com/vbonduro/loandesk/internal/statement"
)

// clientRepository is the subset of store.ClientStore that LoanService requires.
type clientRepository interface {
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
}

// loanRepository is the subset of store.LoanStore that LoanService requires.
type loanRepository interface {
	Create(ctx context.Context, l *domain.Loan) (*domain.Loan, error)
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	List(ctx context.Context) ([]*domain.Loan, error)
	ListByClientID(ctx context.Context, clientID int64) ([]*domain.Loan, error)
	Close(ctx context.Context, id int64, status domain.LoanStatus, on time.Time) error
	Delete(ctx context.Context, id int64) error
}

// paymentRepository is the subset of store.PaymentStore that LoanService requires.
type paymentRepository interface {
	ReplaceSchedule(ctx context.Context, loanID int64, installments []annuity.Installment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByLoanID(ctx context.Context, loanID int64) ([]*domain.Payment, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Payment, error)
	CountPaid(ctx context.Context, loanID int64) (int, error)
	Settle(ctx context.Context, paymentID int64, paidOn time.Time) (*domain.Payment, bool, error)
}

type LoanService struct {
	clientStore  clientRepository
	loanStore    loanRepository
	paymentStore paymentRepository
	statements   statement.Store
	clock        clockwork.Clock
	validate     *validator.Validate
	logger       *slog.Logger
}

func NewLoanService(
	clientStore clientRepository,
	loanStore loanRepository,
	paymentStore paymentRepository,
	statements statement.Store,
	clock clockwork.Clock,
	logger *slog.Logger,
) *LoanService {
	return &LoanService{
		clientStore:  clientStore,
		loanStore:    loanStore,
		paymentStore: paymentStore,
		statements:   statements,
		clock:        clock,
		validate:     newValidator(),
		logger:       logger,
	}
}

// Today is the current date according to the service clock, at midnight UTC.
func (s *LoanService) Today() time.Time {
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *LoanService) RegisterClient(ctx context.Context, in NewClient) (*domain.Client, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, invalid(err)
	}

	client, err := s.clientStore.Create(ctx, &domain.Client{
		Name:             in.Name,
		Birthdate:        in.Birthdate,
		Phone:            in.Phone,
		Email:            in.Email,
		RegistrationDate: s.Today(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("client registered", "client_id", client.ID)
	return client, nil
}

func (s *LoanService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	return s.clientStore.List(ctx)
}

func (s *LoanService) GetClient(ctx context.Context, clientID int64) (*domain.Client, error) {
	client, err := s.clientStore.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

// OpenLoan records a new open loan starting today and writes its repayment
// schedule. If the schedule cannot be written the loan is removed again so no
// loan exists without a schedule.
func (s *LoanService) OpenLoan(ctx context.Context, in NewLoan) (*domain.Loan, []*domain.Payment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, invalid(err)
	}

	client, err := s.clientStore.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, nil, domain.ErrClientNotFound
	}

	payment := annuity.MonthlyPayment(in.Principal, in.RatePercent, in.TermMonths)
	loan, err := s.loanStore.Create(ctx, &domain.Loan{
		Reference:      uuid.NewString(),
		ClientID:       client.ID,
		Principal:      in.Principal,
		RatePercent:    in.RatePercent,
		TermMonths:     in.TermMonths,
		MonthlyPayment: payment,
		StartDate:      s.Today(),
		Status:         domain.LoanOpen,
	})
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.writeSchedule(ctx, loan)
	if err != nil {
		if derr := s.loanStore.Delete(ctx, loan.ID); derr != nil {
			s.logger.Error("failed to roll back loan after schedule error", "loan_id", loan.ID, "error", derr)
		}
		return nil, nil, err
	}

	s.logger.Info("loan opened",
		"loan_id", loan.ID,
		"client_id", client.ID,
		"principal", loan.Principal.String(),
		"rate_percent", loan.RatePercent.String(),
		"term_months", loan.TermMonths,
		"monthly_payment", payment.StringFixed(2),
	)
	return loan, payments, nil
}

func (s *LoanService) writeSchedule(ctx context.Context, loan *domain.Loan) ([]*domain.Payment, error) {
	installments := annuity.Schedule(loan.StartDate, loan.TermMonths, loan.MonthlyPayment)
	if err := s.paymentStore.ReplaceSchedule(ctx, loan.ID, installments); err != nil {
		return nil, fmt.Errorf("failed to write schedule: %w", err)
	}
	return s.paymentStore.ListByLoanID(ctx, loan.ID)
}

func (s *LoanService) ListLoans(ctx context.Context) ([]*domain.Loan, error) {
	return s.loanStore.List(ctx)
}

func (s *LoanService) ListClientLoans(ctx context.Context, clientID int64) ([]*domain.Loan, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.loanStore.ListByClientID(ctx, clientID)
}

func (s *LoanService) GetLoan(ctx context.Context, loanID int64) (*domain.Loan, error) {
	loan, err := s.loanStore.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}

// Schedule returns a loan with its payments in payment-number order.
func (s *LoanService) Schedule(ctx context.Context, loanID int64) (*domain.Loan, []*domain.Payment, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.paymentStore.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return loan, payments, nil
}

// RegenerateSchedule rebuilds the schedule of an open loan from its stored
// terms. Loans with any settled payment are refused, since replacing the
// schedule would discard those settlements.
func (s *LoanService) RegenerateSchedule(ctx context.Context, loanID int64) ([]*domain.Payment, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status.Terminal() {
		return nil, domain.ErrLoanClosed
	}

	paid, err := s.paymentStore.CountPaid(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if paid > 0 {
		return nil, domain.ErrScheduleHasPayments
	}

	payments, err := s.writeSchedule(ctx, loan)
	if err != nil {
		return nil, err
	}
	s.discardStatement(ctx, loan)
	s.logger.Info("schedule regenerated", "loan_id", loanID, "payments", len(payments))
	return payments, nil
}

// Settlement is the outcome of paying one scheduled payment.
type Settlement struct {
	Payment *domain.Payment
	Loan    *domain.Loan
	Repaid  bool
}

// PayPayment settles a scheduled payment today. Settling the last unpaid
// payment of a loan moves the loan to repaid.
func (s *LoanService) PayPayment(ctx context.Context, paymentID int64) (*Settlement, error) {
	payment, repaid, err := s.paymentStore.Settle(ctx, paymentID, s.Today())
	if err != nil {
		return nil, err
	}

	loan, err := s.GetLoan(ctx, payment.LoanID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment settled", "payment_id", paymentID, "loan_id", loan.ID, "number", payment.Number)
	if repaid {
		s.logger.Info("loan repaid", "loan_id", loan.ID)
	}
	return &Settlement{Payment: payment, Loan: loan, Repaid: repaid}, nil
}

// CancelLoan closes an open loan without repayment. Its schedule is kept.
func (s *LoanService) CancelLoan(ctx context.Context, loanID int64) (*domain.Loan, error) {
	if err := s.loanStore.Close(ctx, loanID, domain.LoanCancelled, s.Today()); err != nil {
		return nil, err
	}
	s.logger.Info("loan cancelled", "loan_id", loanID)
	return s.GetLoan(ctx, loanID)
}

// Overdue lists unpaid payments of open loans whose due date is before today.
func (s *LoanService) Overdue(ctx context.Context) ([]*domain.Payment, error) {
	return s.paymentStore.ListOverdue(ctx, s.Today())
}
