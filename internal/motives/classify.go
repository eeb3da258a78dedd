package motives

import (
	"log"
	"sort"
	"strings"

	"rotabot/internal/config"
	"rotabot/internal/domain"
	"rotabot/internal/integrations/llm"
	"rotabot/internal/reconcile"
)

// maxCards caps the per-category breakdown shown in the report.
const maxCards = 12

// remoteClassifyFn is swapped out in tests.
var remoteClassifyFn = llm.ClassifyComments

// Result is the motives bundle plus the final category assigned to each
// classified record, so the caller can rebuild the motive Pareto from
// categories instead of raw motivo_baja text.
type Result struct {
	Data       domain.MotivesData
	Categories []string
}

// Categorize classifies the free-text comments of the month's separations.
// The remote classifier is used when credentials are configured; any
// deviation from it (error or wrong-length response) falls back to the
// keyword classifier for the whole batch. Human corrections are applied
// last and always win.
func Categorize(cfg config.Config, source []domain.Record, corrections domain.CorrectionsMap) Result {
	textCol := DetectTextColumn(source)
	if textCol == "" {
		return Result{Data: domain.MotivesData{HasData: false}}
	}

	type row struct {
		rec     domain.Record
		comment string
	}
	var rows []row
	for _, r := range source {
		c := strings.TrimSpace(r.Field(textCol))
		if len(c) < minCommentLen {
			continue
		}
		rows = append(rows, row{rec: r, comment: c})
	}
	if len(rows) == 0 {
		return Result{Data: domain.MotivesData{HasData: false, TextCol: textCol}}
	}

	comments := make([]string, len(rows))
	for i, r := range rows {
		comments[i] = r.comment
	}

	analysisType := domain.AnalysisKeywords
	categories := make([]string, len(comments))
	if cfg.LLMEnabled() {
		remote, usage, err := remoteClassifyFn(cfg, comments, CategoryNames(), corrections)
		if err != nil {
			log.Printf("motives: remote classification failed, falling back to keywords: %v", err)
		} else if len(remote) != len(comments) {
			log.Printf("motives: remote returned %d categories for %d comments, falling back to keywords", len(remote), len(comments))
		} else {
			log.Printf("motives: remote classification ok comments=%d tokens=%d", len(comments), usage.TotalTokens())
			copy(categories, remote)
			analysisType = domain.AnalysisML
		}
	}
	if analysisType == domain.AnalysisKeywords {
		for i, c := range comments {
			categories[i] = AssignClosedSet(c)
		}
	}

	// Corrections are exact-comment overrides and beat both classifiers.
	overridden := 0
	for i, c := range comments {
		if cat, ok := corrections[c]; ok {
			categories[i] = cat
			overridden++
		}
	}
	if overridden > 0 {
		log.Printf("motives: applied %d human corrections", overridden)
	}

	counts := make(map[string]int)
	details := make(map[string][]domain.MotiveDetail)
	for i, r := range rows {
		cat := categories[i]
		counts[cat]++
		fecha := ""
		if !r.rec.FechaBaja.IsZero() {
			fecha = r.rec.FechaBaja.Format("2006-01-02")
		}
		details[cat] = append(details[cat], domain.MotiveDetail{
			Empleado:   r.rec.Empleado,
			Nombre:     r.rec.Nombre,
			FechaBaja:  fecha,
			Comentario: r.comment,
		})
	}

	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	barras := make([]domain.MotiveBar, 0, len(names))
	for _, n := range names {
		barras = append(barras, domain.MotiveBar{Category: n, Bajas: counts[n]})
	}

	cards := make([]domain.MotiveCategory, 0, maxCards)
	for _, n := range names {
		if len(cards) == maxCards {
			break
		}
		d := details[n]
		sort.SliceStable(d, func(i, j int) bool { return d[i].FechaBaja > d[j].FechaBaja })
		cards = append(cards, domain.MotiveCategory{Category: n, Count: counts[n], Details: d})
	}

	return Result{
		Data: domain.MotivesData{
			Barras:       barras,
			Cards:        cards,
			HasData:      true,
			TextCol:      textCol,
			AnalysisType: analysisType,
		},
		Categories: categories,
	}
}

// EnrichDetails fills employee profile gaps in the month's source rows using
// the reconciled spells, keeping the row's own values when present.
func EnrichDetails(source, spells []domain.Record) []domain.Record {
	byID := make(map[string]domain.Record, len(spells))
	for _, s := range spells {
		byID[s.Empleado] = s
	}
	out := make([]domain.Record, len(source))
	for i, r := range source {
		if s, ok := byID[r.Empleado]; ok {
			out[i] = reconcile.Merge(r, s)
		} else {
			out[i] = r
		}
	}
	return out
}
