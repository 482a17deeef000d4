package screening

import (
	"fmt"
	"sort"
)

type conditionAlias struct {
	key       ConditionKey
	status    ControlStatus
	hasStatus bool
}

// conditionAliases maps questionnaire answers that fold a status into the key.
var conditionAliases = map[string]conditionAlias{
	"uncontrolled_hypertension": {key: ConditionHypertension, status: StatusUncontrolled, hasStatus: true},
	"controlled_hypertension":   {key: ConditionHypertension, status: StatusControlled, hasStatus: true},
	"glaucoma_unstable":         {key: ConditionGlaucoma, status: StatusUncontrolled, hasStatus: true},
	"adhd_on_medication":        {key: ConditionADHD},
	"substance_abuse_history":   {key: ConditionHistoryDrugAbuse},
}

// Evaluation partitions the catalog for one patient.
type Evaluation struct {
	Remaining []Drug
	Absolute  map[Drug]string
	Relative  map[Drug]string
	// Notices reports ignored or defaulted input; each becomes a warning.
	Notices []string
	// PregnancyOverride is set when the pregnancy row excluded the whole pool.
	PregnancyOverride bool
}

type resolvedCondition struct {
	key    ConditionKey
	status ControlStatus
}

// Evaluate applies the table to the patient's conditions in order.
//
// Absolute reasons are last-write-wins, relative reasons first-write-wins,
// and an absolute exclusion always clears a relative warning for the same
// drug regardless of which condition came first. Unknown keys are skipped
// with a notice; malformed statuses fall back to uncontrolled with a notice.
func (t *RuleTable) Evaluate(conditions []string, statuses map[string]string) Evaluation {
	resolved, notices := t.resolve(conditions, statuses)

	ev := Evaluation{
		Absolute: make(map[Drug]string),
		Relative: make(map[Drug]string),
		Notices:  notices,
	}

	for _, c := range resolved {
		if c.key != ConditionPregnancyBreastfeeding {
			continue
		}
		entry := t.pregnancyRow()
		for _, d := range catalog {
			ev.Absolute[d] = entry.Reason
		}
		ev.Remaining = []Drug{}
		ev.PregnancyOverride = true
		return ev
	}

	for _, c := range resolved {
		entry, err := t.Lookup(c.key, c.status)
		if err != nil {
			ev.Notices = append(ev.Notices, fmt.Sprintf("Condition %q ignored: %v", string(c.key), err))
			continue
		}
		switch entry.Tier {
		case Absolute:
			for _, d := range entry.Drugs {
				ev.Absolute[d] = entry.Reason
				delete(ev.Relative, d)
			}
		case Relative:
			for _, d := range entry.Drugs {
				if _, excluded := ev.Absolute[d]; excluded {
					continue
				}
				if _, warned := ev.Relative[d]; !warned {
					ev.Relative[d] = entry.Reason
				}
			}
		}
	}

	ev.Remaining = make([]Drug, 0, len(catalog))
	for _, d := range catalog {
		if _, excluded := ev.Absolute[d]; !excluded {
			ev.Remaining = append(ev.Remaining, d)
		}
	}
	return ev
}

// resolve normalises raw answers into table keys with their control status.
func (t *RuleTable) resolve(conditions []string, statuses map[string]string) ([]resolvedCondition, []string) {
	normStatuses, notices := normalizeStatuses(statuses)

	var out []resolvedCondition
	for _, raw := range filterAnswers(conditions) {
		c := resolvedCondition{key: ConditionKey(raw)}
		alias, aliased := conditionAliases[raw]
		if aliased {
			c.key = alias.key
		}

		if !t.Knows(c.key) {
			notices = append(notices, fmt.Sprintf("Unrecognized health condition %q ignored", raw))
			continue
		}

		if c.key.SupportsStatus() {
			switch {
			case aliased && alias.hasStatus:
				c.status = alias.status
			default:
				answer, ok := normStatuses[string(c.key)]
				if !ok {
					answer = normStatuses[raw]
				}
				status, err := ParseControlStatus(answer)
				if err != nil {
					notices = append(notices, fmt.Sprintf("Control status %q for %s not recognized; treated as uncontrolled", answer, c.key))
				}
				c.status = status
			}
		}
		out = append(out, c)
	}
	return out, notices
}

// normalizeStatuses folds status-map keys to their normalised form. When
// several keys fold together, an already-normalised key wins; otherwise the
// lowest key in byte order does. Disagreeing values produce a notice.
func normalizeStatuses(statuses map[string]string) (map[string]string, []string) {
	keys := make([]string, 0, len(statuses))
	for k := range statuses {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(statuses))
	source := make(map[string]string, len(statuses))
	var notices []string
	for _, k := range keys {
		nk := normalizeKey(k)
		prev, seen := source[nk]
		if !seen {
			out[nk] = statuses[k]
			source[nk] = k
			continue
		}
		ignored := k
		if k == nk && prev != nk {
			out[nk] = statuses[k]
			source[nk] = k
			ignored = prev
		}
		if normalizeKey(statuses[prev]) != normalizeKey(statuses[k]) {
			notices = append(notices, fmt.Sprintf("Conflicting control statuses for %s; %q ignored", nk, ignored))
		}
	}
	return out, notices
}
