package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func badQuery(key, msg string, extra ...any) *pkgerrors.Error {
	details := map[string]any{"field": key}
	for i := 0; i+1 < len(extra); i += 2 {
		details[extra[i].(string)] = extra[i+1]
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// ParseQueryInt reads an optional integer parameter bounded by [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, badQuery(key, "query parameter must be numeric")
	case n < min || n > max:
		return 0, badQuery(key, "query parameter out of range", "min", min, "max", max)
	}
	return n, nil
}

// ParseQueryDecimal reads a required non-negative decimal parameter.
func ParseQueryDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return decimal.Zero, badQuery(key, "query parameter required")
	}
	d, err := decimal.NewFromString(raw)
	switch {
	case err != nil:
		return decimal.Zero, badQuery(key, "query parameter must be numeric")
	case d.IsNegative():
		return decimal.Zero, badQuery(key, "query parameter cannot be negative")
	}
	return d, nil
}
