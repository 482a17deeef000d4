package screening

import (
	"fmt"
	"strings"
)

// ConditionKey identifies a health condition from the questionnaire.
type ConditionKey string

const (
	ConditionHypertension             ConditionKey = "hypertension"
	ConditionRecurrentKidneyStones    ConditionKey = "recurrent_kidney_stones"
	ConditionPlanningPregnancy        ConditionKey = "planning_pregnancy"
	ConditionPregnancyBreastfeeding   ConditionKey = "pregnancy_breastfeeding"
	ConditionTakingTamoxifen          ConditionKey = "taking_tamoxifen"
	ConditionADHD                     ConditionKey = "adhd"
	ConditionGlaucoma                 ConditionKey = "glaucoma"
	ConditionHistoryStroke            ConditionKey = "history_stroke"
	ConditionIntracranialHypertension ConditionKey = "intracranial_hypertension"
	ConditionHeartDisease             ConditionKey = "heart_disease"
	ConditionPsychiatricTreatment     ConditionKey = "psychiatric_treatment"
	ConditionHistoryDrugAbuse         ConditionKey = "history_drug_abuse"
	ConditionHyperthyroidism          ConditionKey = "hyperthyroidism"
	ConditionThyroidCancer            ConditionKey = "thyroid_cancer"
	ConditionHistoryPancreatitis      ConditionKey = "history_pancreatitis"
	ConditionGastroparesis            ConditionKey = "gastroparesis"
)

// conditionKeys is the closed set of keys a rule table may reference.
var conditionKeys = map[ConditionKey]bool{
	ConditionHypertension:             true,
	ConditionRecurrentKidneyStones:    true,
	ConditionPlanningPregnancy:        true,
	ConditionPregnancyBreastfeeding:   true,
	ConditionTakingTamoxifen:          true,
	ConditionADHD:                     true,
	ConditionGlaucoma:                 true,
	ConditionHistoryStroke:            true,
	ConditionIntracranialHypertension: true,
	ConditionHeartDisease:             true,
	ConditionPsychiatricTreatment:     true,
	ConditionHistoryDrugAbuse:         true,
	ConditionHyperthyroidism:          true,
	ConditionThyroidCancer:            true,
	ConditionHistoryPancreatitis:      true,
	ConditionGastroparesis:            true,
}

// statusAware lists the conditions whose rule depends on a ControlStatus.
var statusAware = map[ConditionKey]bool{
	ConditionHypertension:         true,
	ConditionGlaucoma:             true,
	ConditionPsychiatricTreatment: true,
	ConditionHyperthyroidism:      true,
}

// SupportsStatus reports whether the condition is qualified by a ControlStatus.
func (c ConditionKey) SupportsStatus() bool {
	return statusAware[c]
}

// ControlStatus qualifies conditions that can be clinically controlled.
// The zero value is StatusUncontrolled.
type ControlStatus uint8

const (
	StatusUncontrolled ControlStatus = iota
	StatusControlled
)

func (s ControlStatus) String() string {
	if s == StatusControlled {
		return "controlled"
	}
	return "uncontrolled"
}

// ParseControlStatus parses a questionnaire status answer. An empty value
// means "not answered" and yields the uncontrolled default without error.
func ParseControlStatus(v string) (ControlStatus, error) {
	switch normalizeKey(v) {
	case "", "uncontrolled":
		return StatusUncontrolled, nil
	case "controlled":
		return StatusControlled, nil
	default:
		return StatusUncontrolled, fmt.Errorf("%w: %q", ErrMalformedControlStatus, v)
	}
}

// Tier is the severity of a contraindication.
type Tier uint8

const (
	// Absolute removes the affected drugs from the pool.
	Absolute Tier = iota
	// Relative keeps the drugs but attaches a caution.
	Relative
)

func (t Tier) String() string {
	if t == Relative {
		return "relative"
	}
	return "absolute"
}

func parseTier(v string) (Tier, error) {
	switch normalizeKey(v) {
	case "absolute":
		return Absolute, nil
	case "relative":
		return Relative, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", v)
	}
}

// RuleEntry is one row of the contraindication table. Qualified is set
// for rows that only apply to one ControlStatus of the condition.
type RuleEntry struct {
	Condition ConditionKey
	Status    ControlStatus
	Qualified bool
	Tier      Tier
	Drugs     []Drug
	Reason    string
}

type ruleKey struct {
	condition ConditionKey
	status    ControlStatus
	qualified bool
}

func (e RuleEntry) key() ruleKey {
	return ruleKey{condition: e.Condition, status: e.Status, qualified: e.Qualified}
}

// RuleTable is an immutable contraindication table. Build one with
// DefaultRuleTable or LoadRuleTable; it is safe for concurrent reads.
type RuleTable struct {
	version string
	entries []RuleEntry
	index   map[ruleKey]int
}

// DefaultRuleTableVersion tags the built-in table.
const DefaultRuleTableVersion = "2024-table-1"

var defaultRules = mustRuleTable(DefaultRuleTableVersion, builtinEntries())

// DefaultRuleTable returns the built-in table.
func DefaultRuleTable() *RuleTable {
	return defaultRules
}

func builtinEntries() []RuleEntry {
	stimulants := []Drug{Phentermine, Vyvanse, Qsymia}
	topiramateCombo := []Drug{Qsymia, Topiramate}
	bupropionCombo := []Drug{Contrave, Bupropion}
	incretins := []Drug{Wegovy, Zepbound}
	hypertensive := []Drug{Phentermine, Vyvanse, Qsymia, Contrave, Bupropion}
	glaucoma := []Drug{Phentermine, Qsymia, Topiramate, Vyvanse}
	psychiatric := []Drug{Contrave, Bupropion, Topiramate, Qsymia}
	thyroid := []Drug{Phentermine, Qsymia}

	return []RuleEntry{
		qualified(ConditionHypertension, StatusUncontrolled, Absolute, "Excluded: Uncontrolled hypertension (BP >= 140/90)", hypertensive...),
		qualified(ConditionHypertension, StatusControlled, Relative, "Caution: Controlled hypertension - requires blood pressure monitoring", hypertensive...),
		absolute(ConditionRecurrentKidneyStones, "Excluded: Recurrent Kidney Stones", topiramateCombo...),
		absolute(ConditionPlanningPregnancy, "Excluded: Planning Pregnancy (within 3 months)", topiramateCombo...),
		absolute(ConditionPregnancyBreastfeeding, "Excluded: Pregnancy or breastfeeding - anti-obesity medication is not used during pregnancy or lactation", Catalog()...),
		absolute(ConditionTakingTamoxifen, "Excluded: Currently taking Tamoxifen", bupropionCombo...),
		absolute(ConditionADHD, "Excluded: ADD/ADHD", stimulants...),
		qualified(ConditionGlaucoma, StatusUncontrolled, Absolute, "Excluded: Glaucoma (unstable)", glaucoma...),
		qualified(ConditionGlaucoma, StatusControlled, Relative, "Caution: Controlled glaucoma - requires ophthalmology clearance", glaucoma...),
		absolute(ConditionHistoryStroke, "Excluded: History of stroke", stimulants...),
		absolute(ConditionIntracranialHypertension, "Excluded: Intracranial Hypertension", stimulants...),
		absolute(ConditionHeartDisease, "Excluded: Cardiovascular disease", stimulants...),
		qualified(ConditionPsychiatricTreatment, StatusUncontrolled, Absolute, "Excluded: Psychiatric disorders", psychiatric...),
		qualified(ConditionPsychiatricTreatment, StatusControlled, Relative, "Caution: Stable psychiatric disorder - requires psychiatrist clearance", psychiatric...),
		absolute(ConditionHistoryDrugAbuse, "Excluded: History of substance abuse", stimulants...),
		qualified(ConditionHyperthyroidism, StatusUncontrolled, Absolute, "Excluded: Thyroid dysfunction", thyroid...),
		qualified(ConditionHyperthyroidism, StatusControlled, Relative, "Caution: Controlled thyroid dysfunction - requires endocrinology clearance", thyroid...),
		absolute(ConditionThyroidCancer, "Excluded: Medullary thyroid cancer", incretins...),
		absolute(ConditionHistoryPancreatitis, "Excluded: History of pancreatitis", incretins...),
		absolute(ConditionGastroparesis, "Excluded: Gastroparesis", incretins...),
	}
}

func absolute(c ConditionKey, reason string, drugs ...Drug) RuleEntry {
	return RuleEntry{Condition: c, Tier: Absolute, Drugs: drugs, Reason: reason}
}

func qualified(c ConditionKey, s ControlStatus, tier Tier, reason string, drugs ...Drug) RuleEntry {
	return RuleEntry{Condition: c, Status: s, Qualified: true, Tier: tier, Drugs: drugs, Reason: reason}
}

func mustRuleTable(version string, entries []RuleEntry) *RuleTable {
	t, err := NewRuleTable(version, entries)
	if err != nil {
		panic(err)
	}
	return t
}

// NewRuleTable validates entries and builds an immutable table. Every
// status-aware condition needs a row per ControlStatus, other conditions
// exactly one unqualified row, and the pregnancy row must exclude the
// whole catalog.
func NewRuleTable(version string, entries []RuleEntry) (*RuleTable, error) {
	if strings.TrimSpace(version) == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidRuleTable)
	}

	t := &RuleTable{
		version: version,
		entries: make([]RuleEntry, 0, len(entries)),
		index:   make(map[ruleKey]int, len(entries)),
	}

	for i, e := range entries {
		if !conditionKeys[e.Condition] {
			return nil, fmt.Errorf("%w: row %d has unknown condition %q", ErrInvalidRuleTable, i, string(e.Condition))
		}
		if e.Qualified != e.Condition.SupportsStatus() {
			if e.Qualified {
				return nil, fmt.Errorf("%w: %s does not take a control status", ErrInvalidRuleTable, e.Condition)
			}
			return nil, fmt.Errorf("%w: %s requires a control status", ErrInvalidRuleTable, e.Condition)
		}
		if e.Tier != Absolute && e.Tier != Relative {
			return nil, fmt.Errorf("%w: %s has unknown tier %d", ErrInvalidRuleTable, e.Condition, e.Tier)
		}
		if len(e.Drugs) == 0 {
			return nil, fmt.Errorf("%w: %s affects no drugs", ErrInvalidRuleTable, e.Condition)
		}
		if strings.TrimSpace(e.Reason) == "" {
			return nil, fmt.Errorf("%w: %s has no reason", ErrInvalidRuleTable, e.Condition)
		}
		for _, d := range e.Drugs {
			if !d.Valid() {
				return nil, fmt.Errorf("%w: %s references unknown drug %d", ErrInvalidRuleTable, e.Condition, int(d))
			}
		}

		k := e.key()
		if _, dup := t.index[k]; dup {
			return nil, fmt.Errorf("%w: duplicate row for %s", ErrInvalidRuleTable, describeKey(k))
		}

		row := e
		row.Drugs = append([]Drug(nil), e.Drugs...)
		t.index[k] = len(t.entries)
		t.entries = append(t.entries, row)
	}

	for c := range statusAware {
		_, hasU := t.index[ruleKey{condition: c, status: StatusUncontrolled, qualified: true}]
		_, hasC := t.index[ruleKey{condition: c, status: StatusControlled, qualified: true}]
		if hasU != hasC {
			missing := StatusControlled
			if !hasU {
				missing = StatusUncontrolled
			}
			return nil, fmt.Errorf("%w: %s has no %s row", ErrInvalidRuleTable, c, missing)
		}
	}

	preg, ok := t.index[ruleKey{condition: ConditionPregnancyBreastfeeding}]
	if !ok {
		return nil, fmt.Errorf("%w: %s row is required", ErrInvalidRuleTable, ConditionPregnancyBreastfeeding)
	}
	pregRow := t.entries[preg]
	if pregRow.Tier != Absolute {
		return nil, fmt.Errorf("%w: %s must be absolute", ErrInvalidRuleTable, ConditionPregnancyBreastfeeding)
	}
	covered := newDrugSet(pregRow.Drugs)
	for _, d := range catalog {
		if !covered.has(d) {
			return nil, fmt.Errorf("%w: %s must exclude %s", ErrInvalidRuleTable, ConditionPregnancyBreastfeeding, d)
		}
	}

	return t, nil
}

func describeKey(k ruleKey) string {
	if k.qualified {
		return fmt.Sprintf("%s/%s", k.condition, k.status)
	}
	return string(k.condition)
}

// Version identifies the table revision.
func (t *RuleTable) Version() string {
	return t.version
}

// Entries returns a copy of the rows in declaration order.
func (t *RuleTable) Entries() []RuleEntry {
	out := make([]RuleEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e
		out[i].Drugs = append([]Drug(nil), e.Drugs...)
	}
	return out
}

// Knows reports whether the table has at least one row for the condition.
func (t *RuleTable) Knows(c ConditionKey) bool {
	if c.SupportsStatus() {
		_, ok := t.index[ruleKey{condition: c, status: StatusUncontrolled, qualified: true}]
		return ok
	}
	_, ok := t.index[ruleKey{condition: c}]
	return ok
}

// pregnancyRow returns the total-override row. NewRuleTable guarantees it
// exists and covers the whole catalog.
func (t *RuleTable) pregnancyRow() RuleEntry {
	return t.entries[t.index[ruleKey{condition: ConditionPregnancyBreastfeeding}]]
}

// Lookup returns the row for a condition. The status is ignored for
// conditions that do not support one.
func (t *RuleTable) Lookup(c ConditionKey, status ControlStatus) (RuleEntry, error) {
	k := ruleKey{condition: c}
	if c.SupportsStatus() {
		k = ruleKey{condition: c, status: status, qualified: true}
	}
	i, ok := t.index[k]
	if !ok {
		return RuleEntry{}, fmt.Errorf("%w: %q", ErrUnknownCondition, string(c))
	}
	return t.entries[i], nil
}
