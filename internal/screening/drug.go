package screening

import (
	"fmt"
	"strings"
)

// Drug identifies one medication in the screening pool.
type Drug int

const (
	Phentermine Drug = iota
	Topiramate
	Qsymia
	Contrave
	Naltrexone
	Bupropion
	Vyvanse
	Wegovy
	Zepbound

	drugCount
)

var drugNames = [drugCount]string{
	Phentermine: "Phentermine",
	Topiramate:  "Topiramate",
	Qsymia:      "Qsymia",
	Contrave:    "Contrave",
	Naltrexone:  "Naltrexone",
	Bupropion:   "Bupropion",
	Vyvanse:     "Vyvanse",
	Wegovy:      "Wegovy",
	Zepbound:    "Zepbound",
}

// catalog is the canonical pool order. It doubles as the fallback ranking.
var catalog = func() []Drug {
	out := make([]Drug, 0, drugCount)
	for d := Drug(0); d < drugCount; d++ {
		out = append(out, d)
	}
	return out
}()

// Catalog returns the drug pool in canonical display order.
func Catalog() []Drug {
	out := make([]Drug, len(catalog))
	copy(out, catalog)
	return out
}

func (d Drug) Valid() bool {
	return d >= 0 && d < drugCount
}

func (d Drug) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Drug(%d)", int(d))
	}
	return drugNames[d]
}

func (d Drug) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown drug %d", int(d))
	}
	return []byte(drugNames[d]), nil
}

func (d *Drug) UnmarshalText(text []byte) error {
	parsed, err := ParseDrug(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDrug resolves a display name case-insensitively.
func ParseDrug(name string) (Drug, error) {
	n := strings.TrimSpace(name)
	for _, d := range catalog {
		if strings.EqualFold(drugNames[d], n) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown drug %q", name)
}

// drugSet is a fixed-size membership set indexed by Drug.
type drugSet [drugCount]bool

func newDrugSet(drugs []Drug) drugSet {
	var s drugSet
	for _, d := range drugs {
		if d.Valid() {
			s[d] = true
		}
	}
	return s
}

func (s drugSet) has(d Drug) bool {
	return d.Valid() && s[d]
}
