package screening

import (
	"fmt"
	"strings"
)

// noneSentinel is the questionnaire's "none of the above" answer.
const noneSentinel = "none"

// Eligibility is the result of the BMI/comorbidity gate.
type Eligibility struct {
	Eligible      bool
	Message       string
	Comorbidities []string
}

// ineligibleWarnings is the counselling text returned with every ineligible result.
var ineligibleWarnings = []string{
	"Not eligible for anti-obesity medication at this time.",
	"Eligibility requires BMI >= 30, or BMI >= 27 with at least one weight-related comorbidity.",
	"Lifestyle modification is recommended: healthy eating patterns and at least 150 minutes of moderate activity per week.",
	"Reassess if BMI or comorbidity status changes.",
}

// CheckEligibility applies the screening gate. BMI >= 30 always qualifies;
// BMI in [27, 30) qualifies only with at least one comorbidity; anything
// below 27 never qualifies.
func CheckEligibility(bmi float64, comorbidities []string) Eligibility {
	present := filterAnswers(comorbidities)
	if bmi < overweightBMI {
		return Eligibility{
			Eligible: false,
			Message:  fmt.Sprintf("BMI %.2f is below %.0f", bmi, overweightBMI),
		}
	}
	if len(present) == 0 && bmi < obesityBMI {
		return Eligibility{
			Eligible: false,
			Message:  fmt.Sprintf("BMI %.2f is below %.0f with no weight-related comorbidity", bmi, obesityBMI),
		}
	}

	msg := fmt.Sprintf("BMI %.2f meets the obesity threshold", bmi)
	if bmi < obesityBMI {
		msg = fmt.Sprintf("BMI %.2f with %d weight-related comorbidit%s", bmi, len(present), plural(len(present), "y", "ies"))
	}
	return Eligibility{Eligible: true, Message: msg, Comorbidities: present}
}

// filterAnswers normalises checkbox answers, dropping blanks, duplicates and
// the "none" sentinel while keeping first-seen order.
func filterAnswers(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		key := normalizeKey(v)
		if key == "" || key == noneSentinel || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
