// Package screening turns a patient questionnaire snapshot into a ranked,
// auditable anti-obesity medication recommendation.
//
// The pipeline is BMI -> eligibility gate -> contraindications -> ranking.
// Every stage is a pure function of its inputs; the catalog and rule table
// are read-only after initialisation, so a Screener may be shared freely
// between goroutines.
package screening

import (
	"fmt"
)

// Stage names recorded in the audit trace.
const (
	StageBMI               = "BMI Calculation"
	StageEligibility       = "Eligibility Gate"
	StageContraindications = "First-Step - Health Status Exclusions"
	StageRanking           = "Second-Step - Eating Habits Display Order"
)

// Snapshot is the questionnaire data the engine reads. The engine never
// modifies it.
type Snapshot struct {
	Age                   int               `json:"age" yaml:"age"`
	Sex                   string            `json:"gender" yaml:"gender"`
	ChildbearingPotential bool              `json:"is_childbearing_age_woman" yaml:"is_childbearing_age_woman"`
	HeightFeet            int               `json:"height_ft" yaml:"height_ft"`
	HeightInches          int               `json:"height_in" yaml:"height_in"`
	WeightPounds          float64           `json:"weight_lb" yaml:"weight_lb"`
	Conditions            []string          `json:"health_conditions" yaml:"health_conditions"`
	ControlStatus         map[string]string `json:"condition_control_status" yaml:"condition_control_status"`
	Behaviors             []string          `json:"eating_habits" yaml:"eating_habits"`
	Symptoms              []string          `json:"symptoms" yaml:"symptoms"`
	Comorbidities         []string          `json:"comorbidities" yaml:"comorbidities"`
}

// behaviors merges the two questionnaire fields that carry eating-habit
// answers. Stored questionnaires use either name.
func (s Snapshot) behaviors() []string {
	out := make([]string, 0, len(s.Behaviors)+len(s.Symptoms))
	out = append(out, s.Behaviors...)
	return append(out, s.Symptoms...)
}

// StageTrace is one human-readable audit line. It is never read back by
// the pipeline.
type StageTrace struct {
	Stage   string `json:"step" yaml:"step"`
	Summary string `json:"result" yaml:"result"`
}

// Outcome is the complete, caller-owned result of one screening.
type Outcome struct {
	Eligible           bool             `json:"is_eligible"`
	EligibilityMessage string           `json:"eligibility_message"`
	BMI                float64          `json:"bmi"`
	BMICategory        string           `json:"bmi_category"`
	RuleTableVersion   string           `json:"rule_table_version"`
	InitialPool        []Drug           `json:"initial_drug_pool"`
	AbsoluteExclusions map[Drug]string  `json:"absolute_exclusions"`
	RelativeWarnings   map[Drug]string  `json:"relative_warnings"`
	Recommendations    []Recommendation `json:"recommended_drugs"`
	Warnings           []string         `json:"warnings"`
	Trace              []StageTrace     `json:"screening_steps"`
}

// RecommendedDrugs returns the ranked drugs without annotations.
func (o *Outcome) RecommendedDrugs() []Drug {
	out := make([]Drug, len(o.Recommendations))
	for i, r := range o.Recommendations {
		out[i] = r.Drug
	}
	return out
}

// Screener runs the screening pipeline against one rule table.
type Screener struct {
	rules *RuleTable
}

// NewScreener returns a Screener over rules, or the built-in table when nil.
func NewScreener(rules *RuleTable) *Screener {
	if rules == nil {
		rules = DefaultRuleTable()
	}
	return &Screener{rules: rules}
}

// Rules returns the table the Screener evaluates.
func (s *Screener) Rules() *RuleTable {
	return s.rules
}

// Screen runs the full pipeline. Only ErrInvalidMeasurement is fatal; every
// other input problem is reported in the outcome's warnings.
func (s *Screener) Screen(snap Snapshot) (*Outcome, error) {
	bmi, err := ComputeBMI(snap.HeightFeet, snap.HeightInches, snap.WeightPounds)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		BMI:                bmi,
		BMICategory:        bmiLabel(bmi),
		RuleTableVersion:   s.rules.Version(),
		InitialPool:        Catalog(),
		AbsoluteExclusions: map[Drug]string{},
		RelativeWarnings:   map[Drug]string{},
		Recommendations:    []Recommendation{},
		Warnings:           []string{},
	}
	out.trace(StageBMI, fmt.Sprintf("BMI %.2f from %d ft %d in, %g lb: %s",
		bmi, snap.HeightFeet, snap.HeightInches, snap.WeightPounds, ClassifyBMI(bmi)))

	gate := CheckEligibility(bmi, snap.Comorbidities)
	out.Eligible = gate.Eligible
	out.EligibilityMessage = gate.Message
	if !gate.Eligible {
		out.Warnings = append(out.Warnings, ineligibleWarnings...)
		out.trace(StageEligibility, "Ineligible: "+gate.Message+"; screening stopped")
		return out, nil
	}
	out.trace(StageEligibility, "Eligible: "+gate.Message)

	ev := s.rules.Evaluate(snap.Conditions, snap.ControlStatus)
	out.AbsoluteExclusions = ev.Absolute
	out.RelativeWarnings = ev.Relative
	out.Warnings = append(out.Warnings, ev.Notices...)
	if ev.PregnancyOverride {
		out.trace(StageContraindications, fmt.Sprintf("Pregnancy or breastfeeding reported: all %d medications excluded", len(ev.Absolute)))
	} else {
		out.trace(StageContraindications, fmt.Sprintf("Excluded %d medications based on health conditions, %d flagged for caution. Remaining: %d",
			len(ev.Absolute), len(ev.Relative), len(ev.Remaining)))
	}

	behaviors := snap.behaviors()
	profile := ClassifyBehaviors(behaviors)
	out.Recommendations = Rank(ev.Remaining, behaviors)
	out.trace(StageRanking, fmt.Sprintf("Generated %d ordered recommendations for %s symptom profile",
		len(out.Recommendations), profile))

	out.Warnings = append(out.Warnings, summaryWarnings(out, snap)...)
	return out, nil
}

func (o *Outcome) trace(stage, summary string) {
	o.Trace = append(o.Trace, StageTrace{Stage: stage, Summary: summary})
}

func summaryWarnings(o *Outcome, snap Snapshot) []string {
	var out []string
	if n := len(o.AbsoluteExclusions); n > 0 {
		out = append(out, fmt.Sprintf("%d medication%s excluded due to absolute contraindications", n, plural(n, "", "s")))
	}
	if n := len(o.RelativeWarnings); n > 0 {
		out = append(out, fmt.Sprintf("%d medication%s require%s caution or specialist clearance (relative contraindications)",
			n, plural(n, "", "s"), plural(n, "s", "")))
	}
	if len(o.Recommendations) == 0 {
		out = append(out, "No oral or injectable anti-obesity medication remains after screening; refer for specialist review")
		return out
	}
	if snap.ChildbearingPotential {
		for _, r := range o.Recommendations {
			if r.Drug == Qsymia || r.Drug == Topiramate {
				out = append(out, "Childbearing potential: confirm pregnancy status and reliable contraception before starting Qsymia or Topiramate")
				break
			}
		}
	}
	return out
}
