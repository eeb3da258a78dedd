package motives

import (
	"regexp"
	"sort"

	"rotabot/internal/domain"
	"rotabot/internal/schema"
)

// Exit-survey headers are preferred over anything else; the generic pattern
// is the last resort.
var priorityColPatterns = []*regexp.Regexp{
	regexp.MustCompile(`encuesta.*salida.*4frh`),
	regexp.MustCompile(`4frh.*encuesta.*salida`),
	regexp.MustCompile(`encuesta.*salida`),
}

var genericColPattern = regexp.MustCompile(`encuesta|salida|coment|observac|motivo`)

// candidateColumns lists the searchable headers of a record set: passthrough
// columns first (sorted, so detection is deterministic), then the canonical
// motivo_baja field as last resort when any row populates it.
func candidateColumns(records []domain.Record) []string {
	if len(records) == 0 {
		return nil
	}
	extra := make([]string, 0, len(records[0].Extra))
	for k := range records[0].Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, r := range records {
		if r.MotivoBaja != "" {
			return append(extra, domain.FieldMotivoBaja)
		}
	}
	return extra
}

// DetectTextColumn finds the column holding free-text separation comments,
// or "" when none exists.
func DetectTextColumn(records []domain.Record) string {
	columns := candidateColumns(records)
	for _, p := range priorityColPatterns {
		for _, c := range columns {
			if p.MatchString(schema.Fold(c)) {
				return c
			}
		}
	}
	for _, c := range columns {
		if genericColPattern.MatchString(schema.Fold(c)) {
			return c
		}
	}
	return ""
}
