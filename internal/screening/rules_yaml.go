package screening

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk layout of a versioned rule table.
type ruleFile struct {
	Version string    `yaml:"version"`
	Rules   []ruleRow `yaml:"rules"`
}

type ruleRow struct {
	Condition string   `yaml:"condition"`
	Status    string   `yaml:"status,omitempty"`
	Tier      string   `yaml:"tier"`
	Drugs     []string `yaml:"drugs,flow"`
	Reason    string   `yaml:"reason"`
}

// LoadRuleTable decodes and validates a YAML rule table.
func LoadRuleTable(r io.Reader) (*RuleTable, error) {
	var f ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidRuleTable, err)
	}

	entries := make([]RuleEntry, 0, len(f.Rules))
	for i, row := range f.Rules {
		e, err := row.entry()
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", ErrInvalidRuleTable, i, err)
		}
		entries = append(entries, e)
	}

	return NewRuleTable(f.Version, entries)
}

func (row ruleRow) entry() (RuleEntry, error) {
	tier, err := parseTier(row.Tier)
	if err != nil {
		return RuleEntry{}, err
	}

	e := RuleEntry{
		Condition: ConditionKey(normalizeKey(row.Condition)),
		Tier:      tier,
		Reason:    row.Reason,
	}
	if row.Status != "" {
		status, err := ParseControlStatus(row.Status)
		if err != nil {
			return RuleEntry{}, err
		}
		e.Status = status
		e.Qualified = true
	}

	for _, name := range row.Drugs {
		d, err := ParseDrug(name)
		if err != nil {
			return RuleEntry{}, err
		}
		e.Drugs = append(e.Drugs, d)
	}
	return e, nil
}

// WriteYAML encodes the table in the layout LoadRuleTable reads.
func (t *RuleTable) WriteYAML(w io.Writer) error {
	f := ruleFile{Version: t.version, Rules: make([]ruleRow, 0, len(t.entries))}
	for _, e := range t.entries {
		row := ruleRow{
			Condition: string(e.Condition),
			Tier:      e.Tier.String(),
			Reason:    e.Reason,
		}
		if e.Qualified {
			row.Status = e.Status.String()
		}
		for _, d := range e.Drugs {
			row.Drugs = append(row.Drugs, d.String())
		}
		f.Rules = append(f.Rules, row)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode rule table: %w", err)
	}
	return enc.Close()
}
