package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// InsightType classifies a detected pattern.
type InsightType string

const (
	InsightCorrelation InsightType = "correlation"
	InsightAnomaly     InsightType = "anomaly"
)

// Insight is a pattern detected by the upstream insight service.
type Insight struct {
	ID              string      `json:"id"`
	Type            InsightType `json:"type"`
	Title           string      `json:"title"`
	Summary         string      `json:"summary"`
	Evidence        *Evidence   `json:"evidence,omitempty"`
	ResponsibleNote string      `json:"responsible_note,omitempty"`
}

// Text is the title and summary joined for keyword matching.
func (i Insight) Text() string {
	return i.Title + " " + i.Summary
}

// EffectPercent returns the evidence effect size, if any.
func (i Insight) EffectPercent() *float64 {
	if i.Evidence == nil {
		return nil
	}
	return i.Evidence.EffectPercent
}

// Evidence carries the effect size plus whatever else the detector attached.
type Evidence struct {
	EffectPercent *float64       `json:"effect_percent"`
	Fields        map[string]any `json:"-"`
}

// effectKeys are the spellings detectors have used for the effect size, in priority order.
var effectKeys = []string{"effect_percent", "effectPct", "delta_percent", "deltaPct"}

// UnmarshalJSON normalises the effect size into EffectPercent. The first
// non-null key wins; a non-numeric value there leaves the effect unset.
func (e *Evidence) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	e.Fields = fields
	e.EffectPercent = nil
	for _, k := range effectKeys {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := numeric(v); ok {
			e.EffectPercent = &f
		}
		break
	}
	return nil
}

// MarshalJSON writes the extra fields alongside the normalised effect_percent.
func (e Evidence) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = v
	}
	for _, k := range effectKeys[1:] {
		delete(out, k)
	}
	if e.EffectPercent != nil {
		out["effect_percent"] = *e.EffectPercent
	} else {
		out["effect_percent"] = nil
	}
	return json.Marshal(out)
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
