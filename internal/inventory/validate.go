package inventory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
)

const (
	maxNameLen  = 100
	maxSpecsLen = 200
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// itemFields is the complete state that must hold after a create or edit.
type itemFields struct {
	ModelName      string
	Brand          string
	BasePrice      decimal.Decimal
	StockQuantity  int
	ReservedForB2B int
	Condition      enums.Condition
	Specifications string
}

func (f *itemFields) normalize() {
	f.ModelName = strings.TrimSpace(f.ModelName)
	f.Brand = strings.TrimSpace(f.Brand)
	f.Specifications = strings.TrimSpace(f.Specifications)
}

func (f itemFields) validate() error {
	var problems []fieldError
	add := func(field, format string, args ...any) {
		problems = append(problems, fieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if f.ModelName == "" {
		add("model_name", "is required")
	} else if utf8.RuneCountInString(f.ModelName) > maxNameLen {
		add("model_name", "must be at most %d characters", maxNameLen)
	}
	if f.Brand == "" {
		add("brand", "is required")
	} else if utf8.RuneCountInString(f.Brand) > maxNameLen {
		add("brand", "must be at most %d characters", maxNameLen)
	}
	if utf8.RuneCountInString(f.Specifications) > maxSpecsLen {
		add("specifications", "must be at most %d characters", maxSpecsLen)
	}
	if f.BasePrice.IsNegative() {
		add("base_price", "cannot be negative")
	}
	if f.StockQuantity < 0 {
		add("stock_quantity", "cannot be negative")
	}
	if f.ReservedForB2B < 0 {
		add("reserved_for_b2b", "cannot be negative")
	} else if f.ReservedForB2B > f.StockQuantity {
		add("reserved_for_b2b", "cannot exceed stock quantity")
	}
	if !f.Condition.IsValid() {
		add("condition", "unknown condition %q", f.Condition)
	}

	if len(problems) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, problems[0].Field+" "+problems[0].Message).WithDetails(problems)
}

func validatePriceOverrides(prices map[enums.Platform]decimal.Decimal) error {
	for platform, price := range prices {
		if !platform.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown platform %q", platform))
		}
		if price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("price on %s cannot be negative", platform.Label()))
		}
	}
	return nil
}
