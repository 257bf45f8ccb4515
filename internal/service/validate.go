package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vbonduro/loandesk/internal/domain"
)

// NewClient is the input for registering a client.
type NewClient struct {
	Name      string `validate:"required,max=200"`
	Birthdate string `validate:"omitempty,datetime=2006-01-02"`
	Phone     string `validate:"max=50"`
	Email     string `validate:"omitempty,email,max=200"`
}

// NewLoan is the input for opening a loan. RatePercent is the nominal annual
// rate in percent, so 12 means 12% a year.
type NewLoan struct {
	ClientID    int64           `validate:"gt=0"`
	Principal   decimal.Decimal `validate:"gt=0,lte=1000000000"`
	RatePercent decimal.Decimal `validate:"gte=0,lt=1000"`
	TermMonths  int             `validate:"gt=0,lte=600"`
}

// QuoteRequest carries the terms for a payment calculation that is not
// persisted.
type QuoteRequest struct {
	Principal   decimal.Decimal `validate:"gt=0,lte=1000000000"`
	RatePercent decimal.Decimal `validate:"gte=0,lt=1000"`
	TermMonths  int             `validate:"gt=0,lte=600"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// invalid turns a validator failure into an error wrapping
// domain.ErrInvalidInput with one readable clause per field.
func invalid(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(e))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD form"
	case "gt":
		return field + " must be greater than " + e.Param()
	case "gte":
		return field + " must be at least " + e.Param()
	case "lt":
		return field + " must be less than " + e.Param()
	case "lte", "max":
		return field + " must be at most " + e.Param()
	default:
		return field + " is invalid"
	}
}
