package analytics

import (
	"math"
	"sort"
	"strings"

	"rotabot/internal/domain"
)

// Core80Cutoff is the cumulative-percentage boundary for the Core 80
// classification. The 0.01 tolerance absorbs rounding at the 80% line and is
// intentional; do not tighten it to 80.0.
const Core80Cutoff = 80.01

// MissingValue is the sentinel bucket for null or blank categorical values.
const MissingValue = "SIN DATO"

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParetoTable builds a frequency-concentration table over a categorical
// series: counts sorted descending, 2-decimal percentages, a running
// cumulative and the Core 80 / Cola 20 split.
func ParetoTable(values []string) []domain.ParetoRecord {
	total := len(values)
	if total == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, v := range values {
		key := strings.TrimSpace(v)
		if key == "" {
			key = MissingValue
		}
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := make([]domain.ParetoRecord, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		pct := round2(float64(counts[k]) / float64(total) * 100)
		cumulative += pct
		classification := domain.ParetoCola20
		if cumulative <= Core80Cutoff {
			classification = domain.ParetoCore80
		}
		out = append(out, domain.ParetoRecord{
			Value:          k,
			Bajas:          counts[k],
			Percentage:     pct,
			Cumulative:     round2(cumulative),
			Classification: classification,
		})
	}
	return out
}

// FieldValues extracts one field across a record set, for Pareto input.
func FieldValues(records []domain.Record, field string) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Field(field)
	}
	return out
}
