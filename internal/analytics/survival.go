package analytics

import (
	"sort"
	"time"

	"rotabot/internal/domain"
	"rotabot/internal/schema"
)

// BuildFrame prepares spells for Kaplan-Meier analysis. A spell counts as an
// event when it ended in an RV or BXF separation; otherwise it is censored
// at the cutoff. Spells with an unknown hire date or a negative duration are
// dropped.
func BuildFrame(spells []domain.Record, cutoff time.Time) []domain.SurvivalObs {
	var frame []domain.SurvivalObs
	for _, s := range spells {
		if s.FechaIngreso.IsZero() {
			continue
		}
		event := 0
		reference := cutoff
		if s.Separated() {
			reference = s.FechaBaja
			tipo := schema.CanonicalTipoBaja(s.TipoBaja)
			if tipo == domain.TipoRV || tipo == domain.TipoBXF {
				event = 1
			}
		}
		days := int(reference.Sub(s.FechaIngreso) / (24 * time.Hour))
		if days < 0 {
			continue
		}
		frame = append(frame, domain.SurvivalObs{Record: s, DurationDays: days, Event: event})
	}
	return frame
}

// KMCurve is the Kaplan-Meier estimator. At each distinct event duration t,
// S is multiplied by (1 - deaths/at_risk), with the risk set counted over
// all observations (censored included) still at duration >= t. The curve
// always starts at (0, 1.0) and is a right-continuous step function.
func KMCurve(frame []domain.SurvivalObs) []domain.KMPoint {
	eventTimes := make(map[int]bool)
	for _, o := range frame {
		if o.Event == 1 {
			eventTimes[o.DurationDays] = true
		}
	}
	times := make([]int, 0, len(eventTimes))
	for t := range eventTimes {
		times = append(times, t)
	}
	sort.Ints(times)

	curve := []domain.KMPoint{{TDays: 0, S: 1.0}}
	s := 1.0
	for _, t := range times {
		atRisk, deaths := 0, 0
		for _, o := range frame {
			if o.DurationDays >= t {
				atRisk++
			}
			if o.DurationDays == t && o.Event == 1 {
				deaths++
			}
		}
		if atRisk == 0 {
			continue
		}
		s *= 1 - float64(deaths)/float64(atRisk)
		curve = append(curve, domain.KMPoint{TDays: t, S: s})
	}
	return curve
}

// SAt evaluates the step function at a given day: the S of the last point
// with t <= day, or 1.0 before the first point.
func SAt(curve []domain.KMPoint, day int) float64 {
	s := 1.0
	for _, p := range curve {
		if p.TDays > day {
			break
		}
		s = p.S
	}
	return s
}

// HazardBin is the conditional probability of an event in (t1, t2] given
// survival to t1. Nil when nobody is at risk at t1.
func HazardBin(frame []domain.SurvivalObs, t1, t2 int) *float64 {
	atRisk, events := 0, 0
	for _, o := range frame {
		if o.DurationDays >= t1 {
			atRisk++
		}
		if o.Event == 1 && o.DurationDays > t1 && o.DurationDays <= t2 {
			events++
		}
	}
	if atRisk == 0 {
		return nil
	}
	return domain.FloatPtr(float64(events) / float64(atRisk))
}

// Median is the smallest duration at which the curve falls to S <= 0.5, or
// nil if it never does.
func Median(curve []domain.KMPoint) *int {
	for _, p := range curve {
		if p.S <= 0.5 {
			return domain.IntPtr(p.TDays)
		}
	}
	return nil
}

// ConditionalMonth restricts survival to the cohort at risk when the period
// opens and walks it day by day through the month. The risk set is
// decremented with the month's separation list matched by employee id; this
// deliberately differs from re-deriving exact KM durations.
func ConditionalMonth(spells, eventsMes []domain.Record, p domain.Period) []domain.KMConditionalPoint {
	var cohort []domain.Record
	for _, s := range spells {
		if s.FechaIngreso.IsZero() || s.FechaIngreso.After(p.Start) {
			continue
		}
		if !s.Separated() || s.FechaBaja.After(p.Start) {
			cohort = append(cohort, s)
		}
	}
	if len(cohort) == 0 {
		return nil
	}

	eventDate := make(map[string]time.Time, len(eventsMes))
	for _, e := range eventsMes {
		eventDate[e.Empleado] = e.FechaBaja
	}

	perDay := make(map[string]int)
	for _, s := range cohort {
		d, ok := eventDate[s.Empleado]
		if !ok || d.Before(p.Start) || d.After(p.End) {
			continue
		}
		perDay[d.Format("2006-01-02")]++
	}

	n := len(cohort)
	s := 1.0
	rows := []domain.KMConditionalPoint{{
		Fecha: p.Start.AddDate(0, 0, -1), S: 1.0, AtRisk: n, Events: 0,
	}}
	for day := p.Start; !day.After(p.End); day = day.AddDate(0, 0, 1) {
		e := perDay[day.Format("2006-01-02")]
		if n > 0 && e > 0 {
			s *= 1 - float64(e)/float64(n)
			n -= e
		}
		rows = append(rows, domain.KMConditionalPoint{Fecha: day, S: s, AtRisk: n, Events: e})
	}
	return rows
}

// minGroupSize is the smallest group or cohort reported in survival output.
const minGroupSize = 5

// GroupCurves partitions a survival frame by a categorical field, drops
// groups under 5 members, and reports each group's survival milestones,
// highest-risk first (ascending S(90)).
func GroupCurves(frame []domain.SurvivalObs, field string) []domain.KMGroup {
	groups := make(map[string][]domain.SurvivalObs)
	for _, o := range frame {
		key := o.Field(field)
		if key == "" {
			key = MissingValue
		}
		groups[key] = append(groups[key], o)
	}

	var out []domain.KMGroup
	for name, sub := range groups {
		if len(sub) < minGroupSize {
			continue
		}
		curve := KMCurve(sub)
		out = append(out, domain.KMGroup{
			Group: name,
			N:     len(sub),
			S30:   SAt(curve, 30),
			S60:   SAt(curve, 60),
			S90:   SAt(curve, 90),
			S180:  SAt(curve, 180),
			S365:  SAt(curve, 365),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].S90 != out[j].S90 {
			return out[i].S90 < out[j].S90
		}
		return out[i].Group < out[j].Group
	})
	return out
}

// HireCohorts partitions the full spell population by hire year-month, drops
// cohorts under 5 members, and reports each cohort's 90-day survival in
// chronological order. Each cohort gets its own survival frame and curve.
func HireCohorts(spells []domain.Record, cutoff time.Time) []domain.Cohort {
	groups := make(map[string][]domain.Record)
	for _, s := range spells {
		if s.FechaIngreso.IsZero() {
			continue
		}
		key := s.FechaIngreso.UTC().Format("2006-01")
		groups[key] = append(groups[key], s)
	}

	var out []domain.Cohort
	for label, sub := range groups {
		if len(sub) < minGroupSize {
			continue
		}
		curve := KMCurve(BuildFrame(sub, cutoff))
		out = append(out, domain.Cohort{Cohorte: label, Size: len(sub), S90: SAt(curve, 90)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cohorte < out[j].Cohorte })
	return out
}

// SurvivalSummary bundles the milestone metrics, the median, the three early
// hazard bins, and the conditional-month tail.
func SurvivalSummary(frame []domain.SurvivalObs, curve []domain.KMPoint, cond []domain.KMConditionalPoint) domain.SurvivalMetrics {
	sEndCond := 1.0
	if len(cond) > 0 {
		sEndCond = cond[len(cond)-1].S
	}
	return domain.SurvivalMetrics{
		S30:           SAt(curve, 30),
		S60:           SAt(curve, 60),
		S90:           SAt(curve, 90),
		S180:          SAt(curve, 180),
		S365:          SAt(curve, 365),
		Mediana:       Median(curve),
		Haz0a30:       HazardBin(frame, 0, 30),
		Haz31a60:      HazardBin(frame, 30, 60),
		Haz61a90:      HazardBin(frame, 60, 90),
		SEndCond:      sEndCond,
		HazardCondMes: 1 - sEndCond,
	}
}
