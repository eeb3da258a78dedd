// Package report runs the analysis engines in order and assembles their
// output into the single document handed to consumers.
package report

import (
	"log"
	"time"

	"github.com/google/uuid"

	"rotabot/internal/analytics"
	"rotabot/internal/config"
	"rotabot/internal/domain"
	"rotabot/internal/fetch"
	"rotabot/internal/integrations/llm"
	"rotabot/internal/motives"
	"rotabot/internal/reconcile"
	"rotabot/internal/schema"
)

// Swapped out in tests.
var summarizeFn = llm.GenerateSummary
var categorizeFn = motives.Categorize

// Build computes the full attrition report for one run. Recoverable data
// problems degrade their section and are logged; nothing here returns an
// error.
func Build(cfg config.Config, in fetch.Inputs, clientName, monthToken string, corrections domain.CorrectionsMap, now time.Time) domain.Report {
	activo := schema.MapColumns(in.Activo, "activo")
	bajas := schema.MapColumns(in.Bajas, "bajas")
	matriz := schema.MapColumns(in.Matriz, "matriz")
	log.Printf("report: mapped rows activo=%d bajas=%d matriz=%d", len(activo), len(bajas), len(matriz))

	bajasEnriched := reconcile.EnrichBajas(bajas, matriz)
	period := reconcile.ResolvePeriod(monthToken, bajasEnriched, matriz, now)
	log.Printf("report: period %s .. %s", period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"))

	actC1 := reconcile.FilterClass1(activo)
	bajC1All := reconcile.FilterClass1(bajasEnriched)
	bajC1 := reconcile.FilterRVBXF(bajC1All)
	matC1 := reconcile.FilterRVBXF(reconcile.FilterClass1(matriz))

	spells := reconcile.BuildSpells(actC1, bajC1)

	bajasMes := reconcile.Between(bajC1, period)
	matrizMes := reconcile.Between(matC1, period)
	kpis := analytics.ComputeKPIs(spells, actC1, bajasMes, period)

	paretoSource := reconcile.MonthlySource(bajasMes, matrizMes)
	pareto := domain.ParetoData{
		Turno:      analytics.ParetoTable(analytics.FieldValues(paretoSource, domain.FieldTurno)),
		Puesto:     analytics.ParetoTable(analytics.FieldValues(paretoSource, domain.FieldPuesto)),
		Area:       analytics.ParetoTable(analytics.FieldValues(paretoSource, domain.FieldArea)),
		Supervisor: analytics.ParetoTable(analytics.FieldValues(paretoSource, domain.FieldSupervisor)),
	}

	frame := analytics.BuildFrame(spells, now)
	kmGlobal := analytics.KMCurve(frame)
	kmCond := analytics.ConditionalMonth(spells, bajasMes, period)
	survival := analytics.SurvivalSummary(frame, kmGlobal, kmCond)
	byTurno := analytics.GroupCurves(frame, domain.FieldTurno)
	byPuesto := analytics.GroupCurves(frame, domain.FieldPuesto)
	cohorts := analytics.HireCohorts(spells, now)

	trend := analytics.ComputeTrend(bajC1All)
	yoy := analytics.YearOverYear(trend)

	detailsSource := motives.EnrichDetails(paretoSource, spells)
	motivesResult := categorizeFn(cfg, detailsSource, corrections)
	if len(motivesResult.Categories) > 0 {
		pareto.MotivoBaja = analytics.ParetoTable(motivesResult.Categories)
	} else {
		pareto.MotivoBaja = analytics.ParetoTable(analytics.FieldValues(paretoSource, domain.FieldMotivoBaja))
	}

	r := domain.Report{
		RunID:         uuid.NewString(),
		ClientName:    clientName,
		GeneratedAt:   now.UTC(),
		Period:        period,
		KPIs:          kpis,
		Pareto:        pareto,
		KMGlobal:      kmGlobal,
		KMCond:        kmCond,
		Survival:      survival,
		SurvByTurno:   byTurno,
		SurvByPuesto:  byPuesto,
		Cohorts:       cohorts,
		Trend:         trend,
		HistoricalYoY: yoy,
		Motivos:       motivesResult.Data,
	}

	if cfg.LLMEnabled() {
		summary, usage, err := summarizeFn(cfg, Digest(r))
		if err != nil {
			log.Printf("report: summary generation failed, continuing without it: %v", err)
		} else {
			log.Printf("report: summary generated tokens=%d", usage.TotalTokens())
			r.AISummary = summary
		}
	} else {
		log.Printf("report: no LLM credentials, skipping narrative summary")
	}

	return r
}
