package layout

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EventKind labels a grid row or a plenum session
type EventKind string

const (
	EventRegular      EventKind = "regular"
	EventKeynote      EventKind = "keynote"
	EventLunch        EventKind = "lunch"
	EventRaffle       EventKind = "raffle"
	EventRegistration EventKind = "registration"
	// EventOther is a plenum session whose title matched no keyword set
	EventOther EventKind = "other"
)

// Classifier decides which plenum event a session title describes
type Classifier interface {
	Classify(title string) EventKind
}

// KeywordSet maps case-insensitive title substrings to an event kind
type KeywordSet struct {
	Kind     EventKind
	Keywords []string
}

// KeywordClassifier matches titles against keyword sets in order; the first set
// with a matching keyword wins.
type KeywordClassifier struct {
	Sets []KeywordSet
}

// DefaultKeywordSets is the precedence used when a venue supplies no overrides.
// Registration is tested first so that "Welcome & Registration" is a registration
// window, not a keynote.
func DefaultKeywordSets() []KeywordSet {
	return []KeywordSet{
		{Kind: EventRegistration, Keywords: []string{"registration", "check-in", "check in", "sign-in", "sign in"}},
		{Kind: EventLunch, Keywords: []string{"lunch", "break", "meal"}},
		{Kind: EventRaffle, Keywords: []string{"raffle", "closing", "prize", "giveaway"}},
		{Kind: EventKeynote, Keywords: []string{"keynote", "opening", "welcome"}},
	}
}

// NewKeywordClassifier returns a classifier with the default keyword sets
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Sets: DefaultKeywordSets()}
}

// Classify implements Classifier
func (c *KeywordClassifier) Classify(title string) EventKind {
	lower := strings.ToLower(title)
	for _, set := range c.Sets {
		for _, kw := range set.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return set.Kind
			}
		}
	}
	return EventOther
}

// keywordFile is the YAML shape of a venue keyword override file:
//
//	registration: [registration, badge pickup]
//	lunch: [lunch, "food court"]
type keywordFile struct {
	Registration []string `yaml:"registration"`
	Lunch        []string `yaml:"lunch"`
	Raffle       []string `yaml:"raffle"`
	Keynote      []string `yaml:"keynote"`
}

// LoadKeywordSets reads a YAML keyword file. Kinds absent from the file keep their
// default keywords; precedence stays registration, lunch, raffle, keynote.
func LoadKeywordSets(path string) (*KeywordClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyword file: %w", err)
	}
	return ParseKeywordSets(data)
}

// ParseKeywordSets decodes YAML keyword overrides
func ParseKeywordSets(data []byte) (*KeywordClassifier, error) {
	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parsing keyword file: %w", err)
	}

	overrides := map[EventKind][]string{
		EventRegistration: kf.Registration,
		EventLunch:        kf.Lunch,
		EventRaffle:       kf.Raffle,
		EventKeynote:      kf.Keynote,
	}

	sets := DefaultKeywordSets()
	for i := range sets {
		if kws := overrides[sets[i].Kind]; len(kws) > 0 {
			sets[i].Keywords = kws
		}
	}
	return &KeywordClassifier{Sets: sets}, nil
}
