package domain

// Domain is one of the four metric categories gated by user permission.
type Domain string

const (
	DomainSleep     Domain = "sleep"
	DomainActivity  Domain = "activity"
	DomainNutrition Domain = "nutrition"
	DomainVitals    Domain = "vitals"
)

// Domains lists every domain in display order.
var Domains = []Domain{DomainSleep, DomainActivity, DomainNutrition, DomainVitals}

// Permissions gates visibility and computation per domain.
type Permissions struct {
	Sleep     bool `json:"sleep"`
	Activity  bool `json:"activity"`
	Nutrition bool `json:"nutrition"`
	Vitals    bool `json:"vitals"`
}

// DefaultPermissions enables every domain.
func DefaultPermissions() Permissions {
	return Permissions{Sleep: true, Activity: true, Nutrition: true, Vitals: true}
}

// Allows reports whether d is enabled. Unknown domains are never allowed.
func (p Permissions) Allows(d Domain) bool {
	switch d {
	case DomainSleep:
		return p.Sleep
	case DomainActivity:
		return p.Activity
	case DomainNutrition:
		return p.Nutrition
	case DomainVitals:
		return p.Vitals
	}
	return false
}

// Missing returns the disabled domains among ds, without duplicates, in input order.
func (p Permissions) Missing(ds ...Domain) []Domain {
	var out []Domain
	seen := make(map[Domain]bool, len(ds))
	for _, d := range ds {
		if p.Allows(d) || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// Goals holds optional numeric targets.
type Goals struct {
	SleepTargetHours *float64 `json:"sleepTargetHours,omitempty"`
	StepsTarget      *float64 `json:"stepsTarget,omitempty"`
	SugarMaxG        *float64 `json:"sugarMaxG,omitempty"`
}

// HasAny reports whether at least one goal is set.
func (g Goals) HasAny() bool {
	return g.SleepTargetHours != nil || g.StepsTarget != nil || g.SugarMaxG != nil
}
