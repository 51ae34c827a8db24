package testing

import (
	"time"

	"github.com/aristath/wellness/internal/domain"
)

const dateLayout = "2006-01-02"

// Day is one row of synthetic metrics.
type Day struct {
	SleepHours    float64
	Steps         float64
	ActiveMinutes float64
	Calories      float64
	SugarG        float64
	RestingHR     float64
}

// TypicalDay is a plausible, fully populated day.
func TypicalDay() Day {
	return Day{
		SleepHours:    7,
		Steps:         8000,
		ActiveMinutes: 45,
		Calories:      2200,
		SugarG:        50,
		RestingHR:     60,
	}
}

// SeriesOf builds n consecutive days starting at start (YYYY-MM-DD).
func SeriesOf(start string, n int, day func(i int) Day) domain.TimeSeries {
	s := domain.TimeSeries{}
	first, err := time.Parse(dateLayout, start)
	if err != nil {
		panic(err)
	}
	for i := 0; i < n; i++ {
		s = appendDay(s, first.AddDate(0, 0, i).Format(dateLayout), day(i))
	}
	return s
}

// AppendDays extends s with days dated after its last date.
func AppendDays(s domain.TimeSeries, days ...Day) domain.TimeSeries {
	last, ok := s.LastDate()
	if !ok {
		panic("AppendDays needs a non-empty series")
	}
	t, err := time.Parse(dateLayout, last)
	if err != nil {
		panic(err)
	}
	out := clone(s)
	for i, d := range days {
		out = appendDay(out, t.AddDate(0, 0, i+1).Format(dateLayout), d)
	}
	return out
}

// SleepSugarSeries builds n days where sleep alternates between 5h (even
// days) and 7.5h (odd days) and sugar is 60g the day after short sleep and
// 50g otherwise, i.e. short sleep is followed by +20% sugar.
func SleepSugarSeries(start string, n int) domain.TimeSeries {
	return SeriesOf(start, n, func(i int) Day {
		d := TypicalDay()
		d.SleepHours = 7.5
		if i%2 == 0 {
			d.SleepHours = 5
		}
		d.SugarG = 50
		if i > 0 && (i-1)%2 == 0 {
			d.SugarG = 60
		}
		return d
	})
}

func appendDay(s domain.TimeSeries, date string, d Day) domain.TimeSeries {
	s.Date = append(s.Date, date)
	s.SleepHours = append(s.SleepHours, d.SleepHours)
	s.Steps = append(s.Steps, d.Steps)
	s.ActiveMinutes = append(s.ActiveMinutes, d.ActiveMinutes)
	s.Calories = append(s.Calories, d.Calories)
	s.SugarG = append(s.SugarG, d.SugarG)
	s.RestingHR = append(s.RestingHR, d.RestingHR)
	return s
}

func clone(s domain.TimeSeries) domain.TimeSeries {
	return domain.TimeSeries{
		Date:          append([]string(nil), s.Date...),
		SleepHours:    append(domain.Values(nil), s.SleepHours...),
		Steps:         append(domain.Values(nil), s.Steps...),
		ActiveMinutes: append(domain.Values(nil), s.ActiveMinutes...),
		Calories:      append(domain.Values(nil), s.Calories...),
		SugarG:        append(domain.Values(nil), s.SugarG...),
		RestingHR:     append(domain.Values(nil), s.RestingHR...),
	}
}
