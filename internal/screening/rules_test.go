package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleTable_CoversEveryCondition(t *testing.T) {
	rules := DefaultRuleTable()
	for c := range conditionKeys {
		assert.True(t, rules.Knows(c), "no rule for %s", c)
		if c.SupportsStatus() {
			for _, s := range []ControlStatus{StatusUncontrolled, StatusControlled} {
				_, err := rules.Lookup(c, s)
				assert.NoError(t, err, "%s/%s", c, s)
			}
		}
	}
}

func TestRuleTable_LookupUncontrolledHypertension(t *testing.T) {
	e, err := DefaultRuleTable().Lookup(ConditionHypertension, StatusUncontrolled)
	require.NoError(t, err)
	assert.Equal(t, Absolute, e.Tier)
	assert.ElementsMatch(t, []Drug{Phentermine, Vyvanse, Qsymia, Contrave, Bupropion}, e.Drugs)
	assert.Contains(t, e.Reason, "Uncontrolled")
}

func TestRuleTable_LookupControlledHypertensionIsRelative(t *testing.T) {
	e, err := DefaultRuleTable().Lookup(ConditionHypertension, StatusControlled)
	require.NoError(t, err)
	assert.Equal(t, Relative, e.Tier)
	assert.Len(t, e.Drugs, 5)
}

func TestRuleTable_LookupIgnoresStatusForPlainConditions(t *testing.T) {
	a, err := DefaultRuleTable().Lookup(ConditionADHD, StatusControlled)
	require.NoError(t, err)
	b, err := DefaultRuleTable().Lookup(ConditionADHD, StatusUncontrolled)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRuleTable_LookupUnknown(t *testing.T) {
	_, err := DefaultRuleTable().Lookup("migraine", StatusUncontrolled)
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestRuleTable_EntriesAreCopies(t *testing.T) {
	rules := DefaultRuleTable()
	entries := rules.Entries()
	entries[0].Drugs[0] = Zepbound
	entries[0].Reason = "changed"

	again := rules.Entries()
	assert.NotEqual(t, "changed", again[0].Reason)
	assert.NotEqual(t, Zepbound, again[0].Drugs[0])
}

func TestParseControlStatus(t *testing.T) {
	s, err := ParseControlStatus(" Controlled ")
	require.NoError(t, err)
	assert.Equal(t, StatusControlled, s)

	s, err = ParseControlStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusUncontrolled, s)

	s, err = ParseControlStatus("mostly")
	assert.ErrorIs(t, err, ErrMalformedControlStatus)
	assert.Equal(t, StatusUncontrolled, s)
}

func TestNewRuleTable_Validation(t *testing.T) {
	base := builtinEntries()
	withRow := func(e RuleEntry) []RuleEntry {
		return append(append([]RuleEntry(nil), base...), e)
	}
	without := func(c ConditionKey, s ControlStatus) []RuleEntry {
		var out []RuleEntry
		for _, e := range base {
			if e.Condition == c && e.Status == s {
				continue
			}
			out = append(out, e)
		}
		return out
	}

	cases := []struct {
		name    string
		version string
		entries []RuleEntry
	}{
		{"missing version", "", base},
		{"unknown condition", "v", withRow(absolute("migraine", "x", Qsymia))},
		{"status on plain condition", "v", withRow(qualified(ConditionADHD, StatusControlled, Relative, "x", Qsymia))},
		{"plain row for status condition", "v", withRow(absolute(ConditionGlaucoma, "x", Qsymia))},
		{"duplicate row", "v", withRow(absolute(ConditionADHD, "again", Qsymia))},
		{"no drugs", "v", append(without(ConditionGastroparesis, StatusUncontrolled), absolute(ConditionGastroparesis, "x"))},
		{"empty reason", "v", append(without(ConditionGastroparesis, StatusUncontrolled), absolute(ConditionGastroparesis, " ", Wegovy))},
		{"unknown drug", "v", append(without(ConditionGastroparesis, StatusUncontrolled), absolute(ConditionGastroparesis, "x", Drug(99)))},
		{"missing controlled row", "v", without(ConditionHyperthyroidism, StatusControlled)},
		{"missing pregnancy row", "v", without(ConditionPregnancyBreastfeeding, StatusUncontrolled)},
		{"partial pregnancy row", "v", append(without(ConditionPregnancyBreastfeeding, StatusUncontrolled),
			absolute(ConditionPregnancyBreastfeeding, "x", Qsymia))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRuleTable(tc.version, tc.entries)
			assert.ErrorIs(t, err, ErrInvalidRuleTable)
		})
	}
}

func TestNewRuleTable_CopiesInput(t *testing.T) {
	entries := builtinEntries()
	rules, err := NewRuleTable("v", entries)
	require.NoError(t, err)

	entries[0].Drugs[0] = Wegovy
	e, err := rules.Lookup(entries[0].Condition, entries[0].Status)
	require.NoError(t, err)
	assert.NotEqual(t, Wegovy, e.Drugs[0])
}
