// Package motives turns free-text separation comments into a fixed
// 16-category breakdown, delegating to the LLM classifier when available
// and falling back to deterministic keyword matching when it is not. Human
// corrections always win over either path.
package motives

import (
	"regexp"
	"strings"

	"rotabot/internal/schema"
)

// FallbackCategory is assigned when no taxonomy keyword matches a comment or
// the comment is too short to classify.
const FallbackCategory = "Otros/Revisar"

// Category is one taxonomy bucket with the keyword phrases that identify it
// in the local classifier. Categories are tested in declaration order; the
// first hit wins.
type Category struct {
	Name     string
	Keywords []string
}

// Taxonomy is the closed 16-category set for separation reasons.
var Taxonomy = []Category{
	{"Mejor Oportunidad Salarial / Laboral", []string{"mejor oportunidad", "mejor oferta", "ofrecieron mas", "otro trabajo", "otra empresa", "empleo mejor pagado", "mejor pagado", "paga mejor", "sube sueldo", "cambio por salario", "cambio por sueldo", "cambio laboral"}},
	{"Problemas con el supervisor", []string{"jefe", "jefa", "supervisor", "lider", "coordinador", "gerente", "mando", "maltrato", "gritos", "humillacion", "falta de respeto", "prepotencia", "favoritismo", "injusticia", "represalias", "amenazas", "acoso laboral", "hostigamiento", "mal liderazgo", "abuso autoridad"}},
	{"Horarios / Turnos", []string{"turno", "rolar", "nocturno", "noche", "jornada", "horario", "horas extra", "descanso", "fin de semana", "12x12", "4x3", "disponibilidad", "entrada", "salida"}},
	{"Problemas con el área", []string{"area", "departamento", "depto", "linea", "no me gusta el area", "cambio de area", "me cambiaron de area"}},
	{"Falta de herramientas", []string{"falta de herramienta", "no hay herramientas", "equipo insuficiente", "equipo defectuoso", "no hay material", "insumos insuficientes"}},
	{"No le gusto el trabajo", []string{"no me gusto el trabajo", "no me gusto el puesto", "no era lo que esperaba", "no me adapte", "no me acostumbre", "no me convence"}},
	{"Problemas de salud", []string{"salud", "enfermo", "enfermedad", "operacion", "lesion", "dolor", "consulta medica", "medico", "terapia", "hospital", "incapacidad", "embarazo"}},
	{"Problema de transporte", []string{"transporte", "camion", "ruta", "retrasos transporte", "traslado", "distancia", "lejos", "no hay transporte"}},
	{"Problemas legales", []string{"legal", "proceso legal", "demanda", "cita judicial", "carcel", "policia", "detenido"}},
	{"Escuela", []string{"estudios", "escuela", "universidad", "prepa", "clases", "tareas", "examen", "horario escolar"}},
	{"Cuidado de hijos / Familiar enfermo", []string{"cuidado de hijos", "hijo enfermo", "familiar enfermo", "cuidar a mi mama", "cuidar a mi papa", "guarderia"}},
	{"Cambio de residencia / ciudad", []string{"mudanza", "cambio de residencia", "cambio de ciudad", "me voy a otra ciudad", "regreso a mi ciudad"}},
	{"Muerte de familiar", []string{"fallecimiento", "muerte de", "luto", "duelo", "funeral"}},
	{"Atender asuntos fuera de la ciudad", []string{"viaje", "salir de la ciudad", "fuera de la ciudad", "asuntos personales fuera"}},
	{"Ambiente laboral", []string{"ambiente", "clima", "equipo", "companeros", "conflictos", "chismes", "pleitos", "bullying", "discriminacion", "estres", "toxico", "mal ambiente"}},
	{"Capacitacion", []string{"capacitacion", "falta de capacitacion", "no me capacitaron", "entrenamiento", "no me ensenaron", "poca capacitacion"}},
}

// CategoryNames lists the taxonomy in declaration order.
func CategoryNames() []string {
	names := make([]string, len(Taxonomy))
	for i, c := range Taxonomy {
		names[i] = c.Name
	}
	return names
}

type compiledCategory struct {
	name     string
	patterns []*regexp.Regexp
}

var compiledTaxonomy = compileTaxonomy()

func compileTaxonomy() []compiledCategory {
	out := make([]compiledCategory, len(Taxonomy))
	for i, c := range Taxonomy {
		cc := compiledCategory{name: c.Name}
		for _, kw := range c.Keywords {
			cc.patterns = append(cc.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(schema.Fold(kw))+`\b`))
		}
		out[i] = cc
	}
	return out
}

// minCommentLen is the shortest trimmed comment worth classifying.
const minCommentLen = 5

// AssignClosedSet is the deterministic local classifier: diacritic-fold the
// comment and test each category's keywords as whole-word matches, first
// hit wins.
func AssignClosedSet(comment string) string {
	t := schema.Fold(strings.TrimSpace(comment))
	if len(t) < minCommentLen {
		return FallbackCategory
	}
	for _, cc := range compiledTaxonomy {
		for _, p := range cc.patterns {
			if p.MatchString(t) {
				return cc.name
			}
		}
	}
	return FallbackCategory
}
