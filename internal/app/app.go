// Package app wires config, storage, row sources and the report pipeline
// into a runnable program.
package app

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	slackapi "github.com/slack-go/slack"
	"gopkg.in/yaml.v3"

	"rotabot/internal/config"
	"rotabot/internal/domain"
	"rotabot/internal/fetch"
	"rotabot/internal/integrations/slack"
	"rotabot/internal/report"
	"rotabot/internal/storage/sqlite"
)

func Main() {
	cfg := config.LoadConfig()

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	os.MkdirAll(cfg.ReportOutputDir, 0755)

	log.Println("Starting rotabot...")

	if strings.TrimSpace(cfg.ReportSchedule) == "" {
		if err := RunOnce(cfg, db); err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		return
	}
	runScheduled(cfg, db)
}

// RunOnce executes one full analysis run: load inputs, build the report,
// persist artifacts and run history, and notify Slack when configured. Only
// a failing row source returns an error.
func RunOnce(cfg config.Config, db *sql.DB) error {
	inputs, err := fetch.LoadAll(
		fetch.CSVFile{Path: cfg.ActivoPath, Source: "activo"},
		fetch.CSVFile{Path: cfg.BajasPath, Source: "bajas"},
		fetch.CSVFile{Path: cfg.MatrizPath, Source: "matriz"},
	)
	if err != nil {
		return err
	}

	clientName, monthToken := fetch.ParseInputNames(cfg.ActivoPath, cfg.BajasPath, cfg.MatrizPath)
	if cfg.ClientName != "" {
		clientName = cfg.ClientName
	}

	importCorrections(cfg, db)

	corrections, err := sqlite.LoadCorrections(db)
	if err != nil {
		log.Printf("Loading corrections failed, classifying without them: %v", err)
		corrections = nil
	}

	r := report.Build(cfg, inputs, clientName, monthToken, corrections, time.Now())

	jsonPath, err := report.WriteJSON(r, cfg.ReportOutputDir)
	if err != nil {
		log.Printf("Writing JSON report failed: %v", err)
	} else {
		log.Printf("Report written: %s", jsonPath)
	}
	if mdPath, err := report.WriteMarkdown(r, cfg.ReportOutputDir); err != nil {
		log.Printf("Writing Markdown report failed: %v", err)
	} else {
		log.Printf("Report written: %s", mdPath)
	}

	if err := sqlite.InsertRun(db, sqlite.RunRecord{
		RunID:       r.RunID,
		ClientName:  r.ClientName,
		PeriodYM:    r.Period.Start.Format("2006-01"),
		HCActivos:   r.KPIs.HCActivosC1,
		BajasMes:    r.KPIs.BajasMes,
		RotacionPct: r.KPIs.RotacionPct,
		GeneratedAt: r.GeneratedAt,
	}); err != nil {
		log.Printf("Recording run history failed: %v", err)
	}

	if cfg.SlackEnabled() {
		api := slackapi.New(cfg.SlackBotToken)
		_ = slack.NotifyReport(api, cfg.ReportChannelID, r, jsonPath)
	}
	return nil
}

// importCorrections folds the reviewer-maintained reclassification file
// (YAML comment -> category) into the corrections store. Failures are
// logged; the run proceeds with whatever the store already holds.
func importCorrections(cfg config.Config, db *sql.DB) {
	if cfg.CorrectionsPath == "" {
		return
	}
	data, err := os.ReadFile(cfg.CorrectionsPath)
	if err != nil {
		log.Printf("Reading corrections file failed: %v", err)
		return
	}
	var m domain.CorrectionsMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		log.Printf("Parsing corrections file %s failed: %v", cfg.CorrectionsPath, err)
		return
	}
	if len(m) == 0 {
		return
	}
	if err := sqlite.MergeCorrections(db, m); err != nil {
		log.Printf("Merging corrections failed: %v", err)
		return
	}
	log.Printf("Merged %d corrections from %s", len(m), cfg.CorrectionsPath)
}

// runScheduled re-runs the analysis on a 5-field cron expression (minute
// hour day-of-month month day-of-week), e.g. "0 7 1 * *" for the 1st of
// each month at 07:00.
func runScheduled(cfg config.Config, db *sql.DB) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(cfg.ReportSchedule)
	if err != nil {
		log.Fatalf("Invalid report_schedule '%s': %v", cfg.ReportSchedule, err)
	}
	log.Printf("Report runs scheduled (cron: %s)", cfg.ReportSchedule)

	for {
		now := time.Now().In(cfg.Location)
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		time.Sleep(wait)

		if err := RunOnce(cfg, db); err != nil {
			log.Printf("Scheduled run error: %v", err)
		}
	}
}
