// Package domain holds the data model shared by the analytical modules: the
// column-wise daily time series, permission and goal sets, and externally
// detected insights.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MetricKey names one metric column of a TimeSeries.
type MetricKey string

const (
	SleepHours    MetricKey = "sleep_hours"
	Steps         MetricKey = "steps"
	ActiveMinutes MetricKey = "active_minutes"
	Calories      MetricKey = "calories"
	SugarG        MetricKey = "sugar_g"
	RestingHR     MetricKey = "resting_hr"
)

// MetricKeys lists every metric column in wire order.
var MetricKeys = []MetricKey{SleepHours, Steps, ActiveMinutes, Calories, SugarG, RestingHR}

var (
	// ErrMisalignedSeries is returned when a metric column length differs from the date column.
	ErrMisalignedSeries = errors.New("metric column length does not match date column")
	// ErrUnorderedDates is returned when dates are not strictly increasing.
	ErrUnorderedDates = errors.New("dates must be strictly increasing")
)

// Values is one metric column. Missing days are stored as NaN so that index i
// keeps referring to the same day across columns; on the wire they are null.
type Values []float64

// MarshalJSON encodes non-finite entries as null.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

// UnmarshalJSON decodes a column, mapping null and non-numeric entries to NaN.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("metric column: %w", err)
	}
	out := make(Values, len(raw))
	for i, r := range raw {
		out[i] = parseLoose(strings.TrimSpace(string(r)))
	}
	*v = out
	return nil
}

// UnmarshalYAML decodes a YAML sequence, mapping ~/null and non-numeric entries to NaN.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("metric column: expected sequence at line %d", node.Line)
	}
	out := make(Values, len(node.Content))
	for i, item := range node.Content {
		if item.Tag == "!!null" {
			out[i] = math.NaN()
			continue
		}
		out[i] = parseLoose(item.Value)
	}
	*v = out
	return nil
}

func parseLoose(s string) float64 {
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// TimeSeries is an ordered run of daily records stored column-wise.
type TimeSeries struct {
	Date          []string `json:"date" yaml:"date"`
	SleepHours    Values   `json:"sleep_hours" yaml:"sleep_hours"`
	Steps         Values   `json:"steps" yaml:"steps"`
	ActiveMinutes Values   `json:"active_minutes" yaml:"active_minutes"`
	Calories      Values   `json:"calories" yaml:"calories"`
	SugarG        Values   `json:"sugar_g" yaml:"sugar_g"`
	RestingHR     Values   `json:"resting_hr" yaml:"resting_hr"`
}

// Len returns the number of days in the series.
func (s TimeSeries) Len() int {
	return len(s.Date)
}

// Empty reports whether the series holds no days.
func (s TimeSeries) Empty() bool {
	return len(s.Date) == 0
}

// Column returns the values of one metric, or nil for an unknown key.
func (s TimeSeries) Column(key MetricKey) []float64 {
	switch key {
	case SleepHours:
		return s.SleepHours
	case Steps:
		return s.Steps
	case ActiveMinutes:
		return s.ActiveMinutes
	case Calories:
		return s.Calories
	case SugarG:
		return s.SugarG
	case RestingHR:
		return s.RestingHR
	}
	return nil
}

// IndexOf returns the index of date, or -1.
func (s TimeSeries) IndexOf(date string) int {
	for i, d := range s.Date {
		if d == date {
			return i
		}
	}
	return -1
}

// LastIndex returns the last valid index, or 0 for an empty series.
func (s TimeSeries) LastIndex() int {
	if len(s.Date) == 0 {
		return 0
	}
	return len(s.Date) - 1
}

// LastDate returns the most recent date in the series.
func (s TimeSeries) LastDate() (string, bool) {
	if len(s.Date) == 0 {
		return "", false
	}
	return s.Date[len(s.Date)-1], true
}

// Validate checks column alignment and date ordering. ISO dates compare
// lexically, so string comparison is enough.
func (s TimeSeries) Validate() error {
	for _, key := range MetricKeys {
		if got := len(s.Column(key)); got != len(s.Date) {
			return fmt.Errorf("%w: %s has %d values for %d dates", ErrMisalignedSeries, key, got, len(s.Date))
		}
	}
	for i := 1; i < len(s.Date); i++ {
		if s.Date[i] <= s.Date[i-1] {
			return fmt.Errorf("%w: %q follows %q", ErrUnorderedDates, s.Date[i], s.Date[i-1])
		}
	}
	return nil
}

// Tail returns the last n days. The result shares backing arrays with s.
func (s TimeSeries) Tail(n int) TimeSeries {
	if n <= 0 {
		return TimeSeries{}
	}
	if n >= len(s.Date) {
		return s
	}
	from := len(s.Date) - n
	cut := func(v Values) Values {
		if len(v) < from {
			return v
		}
		return v[from:]
	}
	return TimeSeries{
		Date:          s.Date[from:],
		SleepHours:    cut(s.SleepHours),
		Steps:         cut(s.Steps),
		ActiveMinutes: cut(s.ActiveMinutes),
		Calories:      cut(s.Calories),
		SugarG:        cut(s.SugarG),
		RestingHR:     cut(s.RestingHR),
	}
}
