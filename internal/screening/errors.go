package screening

import "errors"

var (
	// ErrInvalidMeasurement is returned for non-positive height or weight.
	// It is fatal to a screening call.
	ErrInvalidMeasurement = errors.New("invalid measurement")

	// ErrUnknownCondition marks a condition key with no rule table entry.
	// The evaluator ignores such keys and reports them as warnings.
	ErrUnknownCondition = errors.New("unknown condition key")

	// ErrMalformedControlStatus marks a control status outside
	// controlled/uncontrolled. Callers fall back to uncontrolled.
	ErrMalformedControlStatus = errors.New("malformed control status")

	// ErrInvalidRuleTable is returned when a rule table resource fails validation.
	ErrInvalidRuleTable = errors.New("invalid rule table")
)
