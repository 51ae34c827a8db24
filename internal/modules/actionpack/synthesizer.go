package actionpack

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/lexicon"
	"github.com/aristath/wellness/pkg/formulas"
)

// Effect sizes are reported within ±maxEffectPercent.
const maxEffectPercent = 60

// sleepThresholdHours is quoted in the sleep/resting-HR rationale.
const sleepThresholdHours = 6

var (
	topSleepRe     = regexp.MustCompile(`sleep`)
	topNutritionRe = regexp.MustCompile(`sugar|nutrition`)
)

// Synthesizer maps insights to action packs using a shared domain lexicon.
type Synthesizer struct {
	lexicon *lexicon.Lexicon
}

// NewSynthesizer creates a synthesizer. A nil lexicon selects lexicon.Default().
func NewSynthesizer(lex *lexicon.Lexicon) *Synthesizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Synthesizer{lexicon: lex}
}

// EffectPercent rounds and clamps the insight's effect size, nil when absent or non-finite.
func EffectPercent(insight domain.Insight) *int {
	v := insight.EffectPercent()
	if v == nil || !formulas.IsFinite(*v) {
		return nil
	}
	n := int(formulas.Clamp(formulas.RoundHalfUp(*v), -maxEffectPercent, maxEffectPercent))
	return &n
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func effectText(effect *int) string {
	if effect == nil {
		return "a measurable shift versus baseline"
	}
	return signed(*effect) + "% versus baseline"
}

func tryLabel() string {
	return fmt.Sprintf("Try for %d days", DefaultDays)
}

func repeatStep() []string {
	return []string{fmt.Sprintf("Repeat for %d days and watch for persistence.", DefaultDays)}
}

// Build derives an action pack from one insight. It never fails: text that
// matches no domain yields a generic consistency recommendation.
func (s *Synthesizer) Build(insight domain.Insight) ActionPack {
	m := s.lexicon.Match(insight.Text())
	effect := EffectPercent(insight)

	if insight.Type == domain.InsightAnomaly {
		return anomalyPack(m, effect)
	}
	return correlationPack(m, effect)
}

func anomalyPack(m lexicon.Matches, effect *int) ActionPack {
	switch {
	case m.Vitals:
		return ActionPack{
			Action:          "Today: keep intensity moderate and prioritize hydration and rest.",
			Because:         fmt.Sprintf("Because resting HR deviated from the recent baseline (%s).", effectText(effect)),
			HowToTest:       repeatStep(),
			TimeWindowLabel: tryLabel(),
			Tags:            []string{TagVitals, TagRecovery},
		}
	case m.Sleep:
		return ActionPack{
			Action:          "Tonight: keep a consistent sleep window and avoid late screens.",
			Because:         fmt.Sprintf("Because sleep deviated from the recent baseline (%s).", effectText(effect)),
			HowToTest:       repeatStep(),
			TimeWindowLabel: tryLabel(),
			Tags:            []string{TagSleep},
		}
	case m.Nutrition:
		return ActionPack{
			Action:          "Today: plan a balanced snack (protein + fiber) to reduce sugar swings.",
			Because:         fmt.Sprintf("Because nutrition deviated from the recent baseline (%s).", effectText(effect)),
			HowToTest:       repeatStep(),
			TimeWindowLabel: tryLabel(),
			Tags:            []string{TagNutrition},
		}
	}
	return ActionPack{
		Action:          "Today: do a quick check-in and keep the day lighter than usual if needed.",
		Because:         fmt.Sprintf("Because an unusual pattern was detected (%s).", effectText(effect)),
		HowToTest:       repeatStep(),
		TimeWindowLabel: tryLabel(),
		Tags:            []string{TagAnomaly},
	}
}

func correlationPack(m lexicon.Matches, effect *int) ActionPack {
	switch {
	case m.Sleep && m.Nutrition:
		suffix := ""
		if effect != nil {
			suffix = fmt.Sprintf(" (%s%%)", signed(*effect))
		}
		return ActionPack{
			Action:  "Tonight: target 7–8 hours of sleep with a consistent bedtime.",
			Because: "Because lower sleep tends to align with higher sugar the next day" + suffix + ".",
			HowToTest: []string{
				fmt.Sprintf("Pick a %d-day window. Keep meals steady; change only sleep timing.", DefaultDays),
				"Compare next-day sugar to the recent baseline.",
			},
			TimeWindowLabel: tryLabel(),
			Tags:            []string{TagSleep, TagNutrition},
		}
	case m.Sleep && m.Activity:
		return ActionPack{
			Action:  "Tonight: protect sleep and schedule a short walk the next day.",
			Because: "Because sleep and steps tend to move together across recent days.",
			HowToTest: []string{
				fmt.Sprintf("For %d days, keep wake time consistent.", DefaultDays),
				"Add one 15–20 minute walk and compare steps to baseline.",
			},
			TimeWindowLabel: tryLabel(),
			Tags:            []string{TagSleep, TagActivity},
		}
	case m.Sleep && m.Vitals:
		return ActionPack{
			Action:  "Tonight: do a 10–15 minute wind-down routine and aim for earlier sleep.",
			Because: fmt.Sprintf("Because lower sleep tends to align with higher resting HR (threshold ~%dh).", sleepThresholdHours),
			HowToTest: []string{
				fmt.Sprintf("For %d days, keep caffeine cutoff earlier in the day.", DefaultDays),
				"Compare next-morning resting HR to baseline.",
			},
			TimeWindowLabel: tryLabel(),
			Tags:            []string{TagSleep, TagVitals},
		}
	}
	return ActionPack{
		Action:  "Today: keep one lever steady (sleep, steps, or sugar) to confirm directionality.",
		Because: "Because stable inputs make patterns easier to validate.",
		HowToTest: []string{
			fmt.Sprintf("Run a %d-day check: change only one variable.", DefaultDays),
			"Revisit after a few data points to see if the pattern holds.",
		},
		TimeWindowLabel: tryLabel(),
		Tags:            []string{TagConsistency},
	}
}

// ChooseTop picks the insight to act on: the first anomaly, else the first
// insight mentioning both sleep and sugar/nutrition, else the first insight.
// Returns nil for an empty list.
func ChooseTop(insights []domain.Insight) *domain.Insight {
	for i := range insights {
		if insights[i].Type == domain.InsightAnomaly {
			return &insights[i]
		}
	}
	for i := range insights {
		t := strings.ToLower(insights[i].Text())
		if topSleepRe.MatchString(t) && topNutritionRe.MatchString(t) {
			return &insights[i]
		}
	}
	if len(insights) == 0 {
		return nil
	}
	return &insights[0]
}

// FilterByPermissions drops insights that mention any disabled domain.
func (s *Synthesizer) FilterByPermissions(insights []domain.Insight, perms domain.Permissions) []domain.Insight {
	out := make([]domain.Insight, 0, len(insights))
	for _, in := range insights {
		if len(perms.Missing(s.lexicon.Match(in.Text()).Domains()...)) > 0 {
			continue
		}
		out = append(out, in)
	}
	return out
}

// Top filters insights by permission, chooses the top one and builds its pack.
// Both results are nil when nothing survives the filter.
func (s *Synthesizer) Top(insights []domain.Insight, perms domain.Permissions) (*domain.Insight, *ActionPack) {
	top := ChooseTop(s.FilterByPermissions(insights, perms))
	if top == nil {
		return nil, nil
	}
	pack := s.Build(*top)
	return top, &pack
}
