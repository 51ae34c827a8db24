package whatif

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/modules/window"
	"github.com/aristath/wellness/pkg/formulas"
)

// Data requirements.
const (
	MinHistoryDays = 12
	MinPairs       = 10
)

// DefaultBaselineDays is used when a request leaves the baseline unset.
const DefaultBaselineDays = 30

// BlockReason says why no projection was produced.
type BlockReason string

const (
	BlockedPermission   BlockReason = "permission"
	BlockedInsufficient BlockReason = "insufficient_data"
)

// Request selects the relationship to project.
type Request struct {
	X            domain.MetricKey `json:"x"`
	Y            domain.MetricKey `json:"y"`
	LagDays      int              `json:"lagDays"`
	Scenario     float64          `json:"scenario"`
	BaselineDays int              `json:"baselineDays"`
}

// Debug exposes the numbers behind a projection.
type Debug struct {
	PointsUsed      int     `json:"pointsUsed"`
	Slope           float64 `json:"slope"`
	BaselineX       float64 `json:"baselineX"`
	BaselineY       float64 `json:"baselineY"`
	ScenarioX       float64 `json:"scenarioX"`
	PredictedDeltaY float64 `json:"predictedDeltaY"`
	Pct             float64 `json:"pct"`
	LagDays         int     `json:"lagDays"`
}

// Result is either blocked with a message or a sentence with debug numbers.
type Result struct {
	Blocked  bool        `json:"blocked"`
	Reason   BlockReason `json:"reason,omitempty"`
	Message  string      `json:"message,omitempty"`
	Sentence string      `json:"sentence,omitempty"`
	Debug    *Debug      `json:"debug,omitempty"`
}

func blocked(reason BlockReason, msg string) Result {
	return Result{Blocked: true, Reason: reason, Message: msg}
}

// normalize validates metric keys and fills defaults. Lag is 0 or 1.
func (r Request) normalize() (Request, Metric, Metric, error) {
	x, ok := Lookup(r.X)
	if !ok {
		return r, Metric{}, Metric{}, fmt.Errorf("%w: %q", ErrUnknownMetric, r.X)
	}
	y, ok := Lookup(r.Y)
	if !ok {
		return r, Metric{}, Metric{}, fmt.Errorf("%w: %q", ErrUnknownMetric, r.Y)
	}
	if r.LagDays != 0 {
		r.LagDays = 1
	}
	if r.BaselineDays <= 0 {
		r.BaselineDays = DefaultBaselineDays
	}
	r.Scenario = x.Clamp(r.Scenario)
	return r, x, y, nil
}

// Simulate projects the effect of moving X to the scenario value on Y.
// Only unknown metric keys produce an error; permission and data problems
// are reported as blocked results.
func Simulate(series domain.TimeSeries, perms domain.Permissions, req Request) (Result, error) {
	req, xMeta, yMeta, err := req.normalize()
	if err != nil {
		return Result{}, err
	}

	if missing := perms.Missing(xMeta.Domain, yMeta.Domain); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, d := range missing {
			names[i] = string(d)
		}
		return blocked(BlockedPermission, fmt.Sprintf(
			"Enable %s in Settings → Data Permissions to run this What-If.", strings.Join(names, " + "),
		)), nil
	}

	xArr := series.Column(req.X)
	yArr := series.Column(req.Y)
	n := min(series.Len(), len(xArr), len(yArr))
	if n < MinHistoryDays {
		return blocked(BlockedInsufficient, "Not enough data yet to estimate this relationship."), nil
	}

	xs, ys := pairs(xArr[:n], yArr[:n], req.LagDays)
	if len(xs) < MinPairs {
		return blocked(BlockedInsufficient, "Not enough clean paired data points to compute a What-If."), nil
	}

	slope := formulas.OLSSlope(xs, ys)

	base := window.Window{Start: max(0, n-req.BaselineDays), End: n}
	baselineX := window.Mean(xArr, base)
	baselineY := window.Mean(yArr, base)

	predictedDeltaY := (req.Scenario - baselineX) * slope
	pct := 0.0
	if baselineY > 0 {
		pct = predictedDeltaY / baselineY * 100
	}

	return Result{
		Sentence: sentence(xMeta, yMeta, req, pct),
		Debug: &Debug{
			PointsUsed:      len(xs),
			Slope:           slope,
			BaselineX:       baselineX,
			BaselineY:       baselineY,
			ScenarioX:       req.Scenario,
			PredictedDeltaY: predictedDeltaY,
			Pct:             pct,
			LagDays:         req.LagDays,
		},
	}, nil
}

// pairs builds (x[t], y[t+lag]) for t in [0, n-lag), keeping finite pairs only.
func pairs(xArr, yArr []float64, lag int) (xs, ys []float64) {
	n := len(xArr)
	for t := 0; t+lag < n; t++ {
		x, y := xArr[t], yArr[t+lag]
		if formulas.IsFinite(x) && formulas.IsFinite(y) {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func sentence(x, y Metric, req Request, pct float64) string {
	decimals := 1
	if x.Key == domain.Steps {
		decimals = 0
	}
	lagLabel := "same day"
	if req.LagDays == 1 {
		lagLabel = "next day"
	}
	return fmt.Sprintf("%s%s %s → %s %s (%s, vs %dd baseline)",
		strconv.FormatFloat(req.Scenario, 'f', decimals, 64), x.Unit, x.Label,
		formulas.SignedPercent(pct), y.Label, lagLabel, req.BaselineDays)
}
