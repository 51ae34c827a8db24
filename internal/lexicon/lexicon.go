// Package lexicon is the single source of truth for keyword-based domain
// inference. Both the action-pack synthesizer and the permission filter match
// insight text against the same lexicon.
package lexicon

import (
	"regexp"
	"strings"

	"github.com/aristath/wellness/internal/domain"
)

// Default keyword sets, one alternation per domain.
const (
	SleepPattern     = `sleep|bed|insomnia|hours`
	ActivityPattern  = `steps|walk|activity|active|workout`
	NutritionPattern = `sugar|sweet|dessert|carb|nutrition|calorie`
	VitalsPattern    = `heart|hr|resting`
)

// Matches records which domains a piece of text mentions.
type Matches struct {
	Sleep     bool
	Activity  bool
	Nutrition bool
	Vitals    bool
}

// Has reports whether d was matched.
func (m Matches) Has(d domain.Domain) bool {
	switch d {
	case domain.DomainSleep:
		return m.Sleep
	case domain.DomainActivity:
		return m.Activity
	case domain.DomainNutrition:
		return m.Nutrition
	case domain.DomainVitals:
		return m.Vitals
	}
	return false
}

// Any reports whether at least one domain matched.
func (m Matches) Any() bool {
	return m.Sleep || m.Activity || m.Nutrition || m.Vitals
}

// Domains returns the matched domains in display order.
func (m Matches) Domains() []domain.Domain {
	var out []domain.Domain
	for _, d := range domain.Domains {
		if m.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Lexicon matches lower-cased text against one regexp per domain.
type Lexicon struct {
	patterns map[domain.Domain]*regexp.Regexp
}

// New compiles a lexicon from per-domain alternations. Domains without a
// pattern never match.
func New(patterns map[domain.Domain]string) (*Lexicon, error) {
	l := &Lexicon{patterns: make(map[domain.Domain]*regexp.Regexp, len(patterns))}
	for d, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		l.patterns[d] = re
	}
	return l, nil
}

var defaultLexicon = mustDefault()

func mustDefault() *Lexicon {
	l, err := New(map[domain.Domain]string{
		domain.DomainSleep:     SleepPattern,
		domain.DomainActivity:  ActivityPattern,
		domain.DomainNutrition: NutritionPattern,
		domain.DomainVitals:    VitalsPattern,
	})
	if err != nil {
		panic(err)
	}
	return l
}

// Default returns the shared lexicon.
func Default() *Lexicon {
	return defaultLexicon
}

// Mentions reports whether text matches the keyword set of d.
func (l *Lexicon) Mentions(text string, d domain.Domain) bool {
	re, ok := l.patterns[d]
	if !ok {
		return false
	}
	return re.MatchString(strings.ToLower(text))
}

// Match tests text against every domain.
func (l *Lexicon) Match(text string) Matches {
	lower := strings.ToLower(text)
	test := func(d domain.Domain) bool {
		re, ok := l.patterns[d]
		return ok && re.MatchString(lower)
	}
	return Matches{
		Sleep:     test(domain.DomainSleep),
		Activity:  test(domain.DomainActivity),
		Nutrition: test(domain.DomainNutrition),
		Vitals:    test(domain.DomainVitals),
	}
}
