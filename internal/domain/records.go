package domain

import "time"

// RawRecord is one spreadsheet row as delivered by a row source: arbitrary
// column headers mapped to scalar cell values (string, number, date or nil).
type RawRecord map[string]any

// Record is a RawRecord remapped onto the canonical field vocabulary.
// Unmapped columns are retained verbatim in Extra under their normalized
// header. A zero FechaIngreso/FechaBaja means the date is unknown.
type Record struct {
	Empleado     string
	Nombre       string
	FechaIngreso time.Time
	FechaBaja    time.Time
	Clase        string
	Turno        string
	Puesto       string
	Area         string
	Supervisor   string
	TipoBaja     string
	MotivoBaja   string
	Extra        map[string]string
}

// Canonical separation types.
const (
	TipoRV   = "RV"   // voluntary resignation
	TipoBXF  = "BXF"  // absence-based termination
	TipoOtro = "OTRO" // everything else
)

// Canonical field names, in the vocabulary of the source spreadsheets.
const (
	FieldEmpleado     = "empleado"
	FieldNombre       = "nombre"
	FieldFechaIngreso = "fecha_ingreso"
	FieldFechaBaja    = "fecha_baja"
	FieldClase        = "clase"
	FieldTurno        = "turno"
	FieldPuesto       = "puesto"
	FieldArea         = "area"
	FieldSupervisor   = "supervisor"
	FieldTipoBaja     = "tipo_baja"
	FieldMotivoBaja   = "motivo_baja"
)

// Field returns the value of a canonical field or, failing that, of an
// unmapped column, as a string. Dates are formatted as 2006-01-02.
func (r Record) Field(name string) string {
	switch name {
	case FieldEmpleado:
		return r.Empleado
	case FieldNombre:
		return r.Nombre
	case FieldFechaIngreso:
		if r.FechaIngreso.IsZero() {
			return ""
		}
		return r.FechaIngreso.Format("2006-01-02")
	case FieldFechaBaja:
		if r.FechaBaja.IsZero() {
			return ""
		}
		return r.FechaBaja.Format("2006-01-02")
	case FieldClase:
		return r.Clase
	case FieldTurno:
		return r.Turno
	case FieldPuesto:
		return r.Puesto
	case FieldArea:
		return r.Area
	case FieldSupervisor:
		return r.Supervisor
	case FieldTipoBaja:
		return r.TipoBaja
	case FieldMotivoBaja:
		return r.MotivoBaja
	}
	return r.Extra[name]
}

// SetField assigns a canonical field by name; non-canonical names go to
// Extra. Date fields are not settable through here.
func (r *Record) SetField(name, value string) {
	switch name {
	case FieldEmpleado:
		r.Empleado = value
	case FieldNombre:
		r.Nombre = value
	case FieldClase:
		r.Clase = value
	case FieldTurno:
		r.Turno = value
	case FieldPuesto:
		r.Puesto = value
	case FieldArea:
		r.Area = value
	case FieldSupervisor:
		r.Supervisor = value
	case FieldTipoBaja:
		r.TipoBaja = value
	case FieldMotivoBaja:
		r.MotivoBaja = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[name] = value
	}
}

// Separated reports whether the spell has a known separation date.
func (r Record) Separated() bool {
	return !r.FechaBaja.IsZero()
}

// CorrectionsMap maps an exact separation comment to the category a human
// assigned to it. It survives across runs and always overrides whatever the
// classifier (remote or keyword) produced.
type CorrectionsMap map[string]string

// SurvivalObs is one spell prepared for Kaplan-Meier analysis: observed
// duration in days and whether the spell ended in a countable event
// (separation with canonical type RV or BXF) or is censored.
type SurvivalObs struct {
	Record
	DurationDays int
	Event        int
}
