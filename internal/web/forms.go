package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vbonduro/loandesk/internal/domain"
)

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// formDecimal accepts both "." and "," as the decimal separator.
func formDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(formValue(r, key), ",", ".")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
	}
	return d, nil
}

func formInt(r *http.Request, key string) (int64, error) {
	n, err := strconv.ParseInt(formValue(r, key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", domain.ErrInvalidInput, key)
	}
	return n, nil
}
