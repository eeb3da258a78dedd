// Package schema canonicalizes the arbitrary column layout of the three
// workforce spreadsheet exports onto a fixed field vocabulary.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"rotabot/internal/domain"
)

// aliasSet is one canonical field with its header aliases, tested in order.
type aliasSet struct {
	field   string
	aliases []string
}

// Alias candidates in priority order. The mapping is resolved once against
// the first record of a batch; the first alias present in its headers wins.
var fieldAliases = []aliasSet{
	{domain.FieldEmpleado, []string{"empleado", "empleado_", "empleado_#", "empleado#", "id_empleado", "no_empleado", "identificador", "num_empleado", "numero_empleado", "employee_id"}},
	{domain.FieldNombre, []string{"nombre", "nombre_empleado", "empleado_nombre", "nombre_completo", "employee_name", "name", "nombre_trabajador"}},
	{domain.FieldFechaIngreso, []string{"fecha_ingreso", "fecha_de_ingreso", "fecha_contratacion", "fecha_de_alta", "f_alta", "alta", "fecha_alta", "fecha_de_alta_en_el_sistema"}},
	{domain.FieldFechaBaja, []string{"fecha_baja", "fecha_de_baja", "fecha_de_baja_en_el_sistema", "fecha_ultimo_dia", "fecha_de_ultimo_dia_de_trabajo_udt", "f_baja", "fecha_evento_baja", "baja"}},
	{domain.FieldClase, []string{"clase", "clase_personal", "clase_de_personal", "categoria", "class", "clasificacion", "clasificacion_personal", "grupo", "nivel"}},
	{domain.FieldTurno, []string{"turno", "shift"}},
	{domain.FieldPuesto, []string{"puesto", "posicion", "position", "job_title", "cargo"}},
	{domain.FieldArea, []string{"area", "departamento", "depto", "dept", "area_depto"}},
	{domain.FieldSupervisor, []string{"supervisor", "jefe", "lider", "lead", "manager"}},
	{domain.FieldTipoBaja, []string{"tipo_baja", "tipo_de_baja_en_el_sistema", "clasificacion_baja", "tipo", "causa_baja_tipo"}},
	{domain.FieldMotivoBaja, []string{"motivo_baja", "razon_de_renuncia", "motivo", "causa_baja", "razon_baja", "razon_capturada_en_sistema"}},
}

var diacriticReplacer = strings.NewReplacer(
	"á", "a", "ä", "a", "à", "a", "â", "a",
	"é", "e", "ë", "e", "è", "e", "ê", "e",
	"í", "i", "ï", "i", "ì", "i", "î", "i",
	"ó", "o", "ö", "o", "ò", "o", "ô", "o",
	"ú", "u", "ü", "u", "ù", "u", "û", "u",
	"ñ", "n",
	"Á", "a", "Ä", "a", "É", "e", "Ë", "e",
	"Í", "i", "Ï", "i", "Ó", "o", "Ö", "o",
	"Ú", "u", "Ü", "u", "Ñ", "n",
)

// Fold lowercases and strips Spanish diacritics.
func Fold(s string) string {
	return diacriticReplacer.Replace(strings.ToLower(s))
}

// NormalizeHeader folds a column header and collapses every run of
// non-alphanumeric characters to a single underscore.
func NormalizeHeader(h string) string {
	folded := Fold(strings.TrimSpace(h))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range folded {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// CellString renders a raw cell value the way the spreadsheets mean it:
// numbers lose their spurious ".0", nil becomes empty.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// MapColumns canonicalizes a batch of raw rows. The alias mapping is global:
// it is fixed by the first record's headers and applied to the whole batch.
// Unmatched headers pass through under their normalized name. When no column
// maps to empleado, synthetic temp_<source>_<row+1> ids are assigned; when
// none maps to clase, every row defaults to class "1".
func MapColumns(raw []domain.RawRecord, source string) []domain.Record {
	if len(raw) == 0 {
		return nil
	}

	normalizedFirst := make(map[string]bool)
	for header := range raw[0] {
		normalizedFirst[NormalizeHeader(header)] = true
	}

	mapping := make(map[string]string)
	mapped := make(map[string]bool)
	for _, set := range fieldAliases {
		for _, alias := range set.aliases {
			if normalizedFirst[alias] {
				mapping[alias] = set.field
				mapped[set.field] = true
				break
			}
		}
	}

	out := make([]domain.Record, 0, len(raw))
	for i, row := range raw {
		var rec domain.Record
		for header, value := range row {
			key := NormalizeHeader(header)
			if canon, ok := mapping[key]; ok {
				key = canon
			}
			switch key {
			case domain.FieldFechaIngreso:
				rec.FechaIngreso = ParseDate(value)
			case domain.FieldFechaBaja:
				rec.FechaBaja = ParseDate(value)
			default:
				rec.SetField(key, CellString(value))
			}
		}
		if !mapped[domain.FieldEmpleado] {
			rec.Empleado = fmt.Sprintf("temp_%s_%d", source, i+1)
		}
		rec.Empleado = strings.TrimSpace(rec.Empleado)
		if rec.Clase == "" {
			rec.Clase = "1"
		}
		out = append(out, rec)
	}
	return out
}

// IsClass1 tests the class code against the accepted spellings of class 1.
func IsClass1(v string) bool {
	s := strings.ToUpper(strings.TrimSpace(v))
	switch s {
	case "1", "01", "CLASE 1", "CLASE1":
		return true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f >= 0 && int(f) == 1
	}
	return false
}

// CanonicalTipoBaja buckets a free-form separation type into RV, BXF or OTRO.
func CanonicalTipoBaja(v string) string {
	s := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(v)), ".", "")
	switch {
	case strings.Contains(s, "RENUNCIA") || s == domain.TipoRV:
		return domain.TipoRV
	case strings.Contains(s, "FALTA") || s == domain.TipoBXF || strings.Contains(s, "CONSECUTIV"):
		return domain.TipoBXF
	default:
		return domain.TipoOtro
	}
}
