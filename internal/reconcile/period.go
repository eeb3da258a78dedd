package reconcile

import (
	"strings"
	"time"

	"rotabot/internal/domain"
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// MonthNameToNum resolves a Spanish month name token; 0 when unknown.
func MonthNameToNum(s string) time.Month {
	return spanishMonths[strings.ToLower(strings.TrimSpace(s))]
}

// ResolvePeriod determines the closed month interval the report covers, in
// UTC. Resolution order: a Spanish month-name token taken from the input
// file names, else the month of the latest separation date across enriched
// Bajas and Matriz, else the current month.
func ResolvePeriod(monthToken string, bajas, matriz []domain.Record, now time.Time) domain.Period {
	now = now.UTC()
	year, month := now.Year(), now.Month()

	if m := MonthNameToNum(monthToken); m != 0 {
		month = m
	} else {
		var maxBaja time.Time
		for _, r := range bajas {
			if r.FechaBaja.After(maxBaja) {
				maxBaja = r.FechaBaja
			}
		}
		for _, r := range matriz {
			if r.FechaBaja.After(maxBaja) {
				maxBaja = r.FechaBaja
			}
		}
		if !maxBaja.IsZero() {
			year, month = maxBaja.UTC().Year(), maxBaja.UTC().Month()
		}
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return domain.Period{Start: start, End: end}
}
