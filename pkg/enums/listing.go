package enums

// ListingRule names the gate that blocked a listing attempt.
type ListingRule string

const (
	ListingRuleOutOfStock           ListingRule = "out_of_stock"
	ListingRuleUnsupportedCondition ListingRule = "unsupported_condition"
	ListingRuleUnprofitable         ListingRule = "unprofitable"
)

// String implements fmt.Stringer.
func (r ListingRule) String() string {
	return string(r)
}

// Outcome is the operator-facing result class of an operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeError   Outcome = "error"
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	return string(o)
}
