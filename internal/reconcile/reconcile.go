// Package reconcile merges the three normalized record sets into one
// per-employee timeline and resolves the reporting period.
package reconcile

import (
	"rotabot/internal/domain"
	"rotabot/internal/schema"
)

// Fields the Matriz cross-reference may backfill on a Bajas row.
var backfillFields = []string{
	domain.FieldTipoBaja,
	domain.FieldMotivoBaja,
	domain.FieldTurno,
	domain.FieldPuesto,
	domain.FieldArea,
	domain.FieldSupervisor,
	domain.FieldNombre,
}

func matrizKey(r domain.Record) string {
	return r.Empleado + "_" + r.FechaBaja.Format("2006-01-02")
}

// EnrichBajas backfills missing categorical fields on each separation row
// from the Matriz row sharing (empleado, fecha_baja), then canonicalizes
// tipo_baja. If afterwards no row is typed RV/BXF but Matriz carries such
// typed rows, an employee→type map from Matriz (first occurrence wins) is
// applied to rows still typed OTRO.
func EnrichBajas(bajas, matriz []domain.Record) []domain.Record {
	lookup := make(map[string]domain.Record, len(matriz))
	for _, m := range matriz {
		if m.Empleado != "" && m.Separated() {
			key := matrizKey(m)
			if _, ok := lookup[key]; !ok {
				lookup[key] = m
			}
		}
	}

	out := make([]domain.Record, len(bajas))
	for i, b := range bajas {
		enriched := b
		if b.Empleado != "" && b.Separated() {
			if m, ok := lookup[matrizKey(b)]; ok {
				for _, f := range backfillFields {
					if enriched.Field(f) == "" && m.Field(f) != "" {
						enriched.SetField(f, m.Field(f))
					}
				}
			}
		}
		enriched.TipoBaja = schema.CanonicalTipoBaja(enriched.TipoBaja)
		out[i] = enriched
	}

	hasRVBXF := false
	for _, b := range out {
		if b.TipoBaja == domain.TipoRV || b.TipoBaja == domain.TipoBXF {
			hasRVBXF = true
			break
		}
	}
	matHasTipo := false
	for _, m := range matriz {
		if m.TipoBaja != "" {
			matHasTipo = true
			break
		}
	}
	if hasRVBXF || !matHasTipo {
		return out
	}

	byEmployee := make(map[string]string)
	for _, m := range matriz {
		tipo := schema.CanonicalTipoBaja(m.TipoBaja)
		if m.Empleado == "" || (tipo != domain.TipoRV && tipo != domain.TipoBXF) {
			continue
		}
		if _, ok := byEmployee[m.Empleado]; !ok {
			byEmployee[m.Empleado] = tipo
		}
	}
	for i, b := range out {
		if b.TipoBaja == domain.TipoOtro {
			if tipo, ok := byEmployee[b.Empleado]; ok {
				out[i].TipoBaja = tipo
			}
		}
	}
	return out
}

// Merge overlays primary onto secondary: every non-empty primary field wins,
// secondary only fills the gaps. This is the single precedence rule for
// cross-source merging (Bajas over Matriz, separation row over active row).
func Merge(primary, secondary domain.Record) domain.Record {
	merged := secondary
	for _, f := range []string{
		domain.FieldEmpleado, domain.FieldNombre, domain.FieldClase,
		domain.FieldTurno, domain.FieldPuesto, domain.FieldArea,
		domain.FieldSupervisor, domain.FieldTipoBaja, domain.FieldMotivoBaja,
	} {
		if v := primary.Field(f); v != "" {
			merged.SetField(f, v)
		}
	}
	if !primary.FechaIngreso.IsZero() {
		merged.FechaIngreso = primary.FechaIngreso
	}
	if !primary.FechaBaja.IsZero() {
		merged.FechaBaja = primary.FechaBaja
	}
	for k, v := range primary.Extra {
		if v != "" {
			merged.SetField(k, v)
		}
	}
	return merged
}

// BuildSpells unifies Active and Bajas rows into exactly one spell per
// employee id. Bajas rows overlay the matching active row unless the spell
// already carries a separation date; a separated spell is never overwritten.
func BuildSpells(active, bajas []domain.Record) []domain.Record {
	index := make(map[string]int, len(active))
	spells := make([]domain.Record, 0, len(active))

	for _, a := range active {
		if i, ok := index[a.Empleado]; ok {
			if !spells[i].Separated() {
				spells[i] = Merge(a, spells[i])
			}
			continue
		}
		index[a.Empleado] = len(spells)
		spells = append(spells, a)
	}
	for _, b := range bajas {
		i, ok := index[b.Empleado]
		if !ok {
			index[b.Empleado] = len(spells)
			spells = append(spells, b)
			continue
		}
		if !spells[i].Separated() {
			spells[i] = Merge(b, spells[i])
		}
	}
	return spells
}

// FilterClass1 keeps the rows whose class code reads as class 1.
func FilterClass1(records []domain.Record) []domain.Record {
	var out []domain.Record
	for _, r := range records {
		if schema.IsClass1(r.Clase) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRVBXF keeps the rows whose canonical separation type is RV or BXF.
func FilterRVBXF(records []domain.Record) []domain.Record {
	var out []domain.Record
	for _, r := range records {
		tipo := schema.CanonicalTipoBaja(r.TipoBaja)
		if tipo == domain.TipoRV || tipo == domain.TipoBXF {
			out = append(out, r)
		}
	}
	return out
}

// MonthlySource unifies the month's Bajas and Matriz rows per employee for
// Pareto and text analysis. Bajas fields win over Matriz fields.
func MonthlySource(bajasMes, matrizMes []domain.Record) []domain.Record {
	bajasBy := make(map[string]domain.Record, len(bajasMes))
	var order []string
	for _, r := range bajasMes {
		if r.Empleado == "" {
			continue
		}
		if _, ok := bajasBy[r.Empleado]; !ok {
			bajasBy[r.Empleado] = r
			order = append(order, r.Empleado)
		}
	}
	matrizBy := make(map[string]domain.Record, len(matrizMes))
	for _, r := range matrizMes {
		if r.Empleado == "" {
			continue
		}
		if _, ok := matrizBy[r.Empleado]; !ok {
			matrizBy[r.Empleado] = r
		}
		if _, ok := bajasBy[r.Empleado]; !ok {
			bajasBy[r.Empleado] = domain.Record{}
			order = append(order, r.Empleado)
		}
	}

	out := make([]domain.Record, 0, len(order))
	for _, emp := range order {
		out = append(out, Merge(bajasBy[emp], matrizBy[emp]))
	}
	return out
}

// Between keeps the rows whose separation date falls inside the period,
// bounds inclusive.
func Between(records []domain.Record, p domain.Period) []domain.Record {
	var out []domain.Record
	for _, r := range records {
		if !r.Separated() {
			continue
		}
		if !r.FechaBaja.Before(p.Start) && !r.FechaBaja.After(p.End) {
			out = append(out, r)
		}
	}
	return out
}
