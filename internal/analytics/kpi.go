// Package analytics computes the statistical sections of the attrition
// report: headcount and rotation KPIs, Pareto concentration tables,
// Kaplan-Meier survival curves and the monthly trend regression. Everything
// here is a pure function of spells plus the resolved period.
package analytics

import (
	"time"

	"rotabot/internal/domain"
)

// HeadcountAt counts the spells active on day d: hired on or before d and
// either still employed or separated strictly after d.
func HeadcountAt(spells []domain.Record, d time.Time) int {
	n := 0
	for _, s := range spells {
		if s.FechaIngreso.IsZero() || s.FechaIngreso.After(d) {
			continue
		}
		if !s.Separated() || s.FechaBaja.After(d) {
			n++
		}
	}
	return n
}

// ComputeKPIs builds the headcount/rotation bundle for the period. The
// rotation percentage is nil when the active headcount is zero.
func ComputeKPIs(spells, active, bajasMes []domain.Record, p domain.Period) domain.KPIs {
	distinct := make(map[string]bool, len(active))
	for _, r := range active {
		distinct[r.Empleado] = true
	}

	k := domain.KPIs{
		HCActivosC1: len(distinct),
		BajasMes:    len(bajasMes),
		HCIni:       HeadcountAt(spells, p.Start),
		HCFin:       HeadcountAt(spells, p.End.AddDate(0, 0, 1)),
	}
	k.HCProm = float64(k.HCIni+k.HCFin) / 2
	if k.HCActivosC1 > 0 {
		k.RotacionPct = domain.FloatPtr(float64(k.BajasMes) / float64(k.HCActivosC1) * 100)
	}
	return k
}
