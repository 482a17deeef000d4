package screening

const (
	reasonPrioritized = "prioritized by symptom profile"
	reasonRetained    = "retained after screening"
)

// Profile is the symptom presentation derived from eating-habit answers.
type Profile uint8

const (
	ProfileNone Profile = iota
	ProfileAppetite
	ProfileBehavioral
	ProfileMixed
)

func (p Profile) String() string {
	switch p {
	case ProfileAppetite:
		return "appetite"
	case ProfileBehavioral:
		return "behavioral"
	case ProfileMixed:
		return "mixed"
	default:
		return "none"
	}
}

var (
	appetiteKeys = map[string]bool{
		"excessive_appetite": true,
		"lack_of_satiety":    true,
		"lack_satiety":       true,
		"binge_eating":       true,
	}
	behavioralKeys = map[string]bool{
		"emotional_eating":  true,
		"night_eating":      true,
		"frequent_snacking": true,
	}

	priorityOrder = map[Profile][]Drug{
		ProfileMixed:      {Qsymia, Contrave},
		ProfileAppetite:   {Phentermine, Vyvanse, Qsymia, Topiramate},
		ProfileBehavioral: {Contrave, Topiramate, Naltrexone, Bupropion},
	}
)

// Recommendation is one ranked drug. Rank is 1-based and only orders display.
type Recommendation struct {
	Drug      Drug   `json:"medication" yaml:"medication"`
	Rank      int    `json:"priority" yaml:"priority"`
	Reasoning string `json:"reasoning" yaml:"reasoning"`
}

// ClassifyBehaviors derives the profile from eating-habit answers.
func ClassifyBehaviors(behaviors []string) Profile {
	var appetite, behavioral bool
	for _, b := range filterAnswers(behaviors) {
		appetite = appetite || appetiteKeys[b]
		behavioral = behavioral || behavioralKeys[b]
	}
	switch {
	case appetite && behavioral:
		return ProfileMixed
	case appetite:
		return ProfileAppetite
	case behavioral:
		return ProfileBehavioral
	default:
		return ProfileNone
	}
}

// Rank orders the remaining drugs: profile priorities first, then the rest
// in catalog order. Every remaining drug appears exactly once.
func Rank(remaining []Drug, behaviors []string) []Recommendation {
	pool := newDrugSet(remaining)
	out := make([]Recommendation, 0, len(remaining))
	var emitted drugSet

	emit := func(d Drug, reasoning string) {
		emitted[d] = true
		out = append(out, Recommendation{Drug: d, Rank: len(out) + 1, Reasoning: reasoning})
	}

	for _, d := range priorityOrder[ClassifyBehaviors(behaviors)] {
		if pool.has(d) && !emitted.has(d) {
			emit(d, reasonPrioritized)
		}
	}
	for _, d := range catalog {
		if pool.has(d) && !emitted.has(d) {
			emit(d, reasonRetained)
		}
	}
	return out
}
