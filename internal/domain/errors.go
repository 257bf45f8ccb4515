package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrClientNotFound      = errors.New("client not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrAlreadyPaid         = errors.New("payment already paid")
	ErrLoanClosed          = errors.New("loan is not open")
	ErrScheduleHasPayments = errors.New("schedule already has settled payments")
)
