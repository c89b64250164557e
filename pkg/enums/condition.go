package enums

import (
	"fmt"
	"strings"
)

// Condition is the internal grading of a refurbished phone.
type Condition string

const (
	ConditionNew       Condition = "New"
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionUsable    Condition = "Usable"
	ConditionScrap     Condition = "Scrap"
)

var validConditions = []Condition{
	ConditionNew,
	ConditionExcellent,
	ConditionGood,
	ConditionUsable,
	ConditionScrap,
}

// String implements fmt.Stringer.
func (c Condition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Condition.
func (c Condition) IsValid() bool {
	for _, candidate := range validConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCondition converts raw input into a Condition. Matching ignores case so
// spreadsheet cells like "good" or "SCRAP" resolve to the canonical value.
func ParseCondition(value string) (Condition, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validConditions {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid condition %q", value)
}
