package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hniuh721/aom-screening-app/internal/screening"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestScreenCommandJSON(t *testing.T) {
	path := writeFile(t, "patient.json", `{
		"age": 35,
		"height_ft": 5,
		"height_in": 4,
		"weight_lb": 185,
		"comorbidities": ["hypertension"],
		"eating_habits": ["binge_eating"],
		"health_conditions": ["history_pancreatitis"]
	}`)

	out, err := execute(t, "screen", "--file", path)
	require.NoError(t, err)

	var outcome struct {
		Eligible bool              `json:"is_eligible"`
		BMI      float64           `json:"bmi"`
		Absolute map[string]string `json:"absolute_exclusions"`
		Ranked   []struct {
			Medication string `json:"medication"`
		} `json:"recommended_drugs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.True(t, outcome.Eligible)
	assert.Equal(t, 31.75, outcome.BMI)
	assert.Contains(t, outcome.Absolute, "Wegovy")
	assert.Contains(t, outcome.Absolute, "Zepbound")
	require.NotEmpty(t, outcome.Ranked)
	assert.Equal(t, "Phentermine", outcome.Ranked[0].Medication)
}

func TestScreenCommandYAML(t *testing.T) {
	path := writeFile(t, "patient.yaml", `
height_ft: 5
height_in: 6
weight_lb: 170
comorbidities: [none]
`)

	out, err := execute(t, "screen", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"is_eligible": false`)
	assert.Contains(t, out, `"bmi": 27.44`)
}

func TestScreenCommandAcceptsStoredQuestionnaireSymptoms(t *testing.T) {
	path := writeFile(t, "patient.json", `{
		"height_ft": 5,
		"height_in": 4,
		"weight_lb": 185,
		"comorbidities": ["hypertension"],
		"symptoms": ["emotional_eating"]
	}`)

	out, err := execute(t, "screen", "--file", path)
	require.NoError(t, err)

	var outcome struct {
		Ranked []struct {
			Medication string `json:"medication"`
			Reasoning  string `json:"reasoning"`
		} `json:"recommended_drugs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	require.NotEmpty(t, outcome.Ranked)
	assert.Equal(t, "Contrave", outcome.Ranked[0].Medication)
	assert.Equal(t, "prioritized by symptom profile", outcome.Ranked[0].Reasoning)
}

func TestScreenCommandRejectsUnknownField(t *testing.T) {
	path := writeFile(t, "patient.json", `{"height_ft": 5, "height_in": 4, "weight_lb": 185, "weight_kg": 84}`)
	_, err := execute(t, "screen", "--file", path)
	if err == nil || !strings.Contains(err.Error(), "weight_kg") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestScreenCommandInvalidMeasurement(t *testing.T) {
	path := writeFile(t, "patient.yaml", "height_ft: 0\nheight_in: 0\nweight_lb: 185\n")
	_, err := execute(t, "screen", "--file", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, screening.ErrInvalidMeasurement)
}

func TestScreenCommandRequiresFile(t *testing.T) {
	_, err := execute(t, "screen")
	if err == nil {
		t.Fatal("expected error when --file is missing")
	}
}

func TestRulesExportThenCheck(t *testing.T) {
	exported, err := execute(t, "rules", "export")
	require.NoError(t, err)
	assert.Contains(t, exported, "version: "+screening.DefaultRuleTableVersion)

	path := writeFile(t, "rules.yaml", exported)
	out, err := execute(t, "rules", "check", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ok: %s (%d rules)\n", screening.DefaultRuleTableVersion, len(screening.DefaultRuleTable().Entries())), out)
}

func TestRulesCheckRejectsIncompleteTable(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
version: broken
rules:
  - condition: gastroparesis
    tier: absolute
    drugs: [Wegovy]
    reason: "Excluded: Gastroparesis"
`)
	_, err := execute(t, "rules", "check", "--file", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, screening.ErrInvalidRuleTable)
}

func TestScreenCommandUsesCustomRules(t *testing.T) {
	rules := writeFile(t, "rules.yaml", `
version: clinic-test
rules:
  - condition: pregnancy_breastfeeding
    tier: absolute
    drugs: [Phentermine, Topiramate, Qsymia, Contrave, Naltrexone, Bupropion, Vyvanse, Wegovy, Zepbound]
    reason: "Excluded: Pregnancy"
`)
	patient := writeFile(t, "patient.yaml", `
height_ft: 5
height_in: 4
weight_lb: 185
comorbidities: [diabetes]
health_conditions: [history_pancreatitis]
`)

	out, err := execute(t, "screen", "--file", patient, "--rules", rules)
	require.NoError(t, err)
	assert.Contains(t, out, `"rule_table_version": "clinic-test"`)
	assert.Contains(t, out, "Unrecognized health condition")
}

func TestLoadRulesDefaultsToBuiltin(t *testing.T) {
	table, err := loadRules("")
	require.NoError(t, err)
	assert.Equal(t, screening.DefaultRuleTableVersion, table.Version())

	_, err = loadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
