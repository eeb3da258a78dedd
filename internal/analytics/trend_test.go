package analytics

import (
	"math"
	"testing"
	"time"

	"rotabot/internal/domain"
)

func bajasForMonths(counts map[string]int) []domain.Record {
	var out []domain.Record
	for ym, n := range counts {
		t, _ := time.Parse("2006-01", ym)
		for i := 0; i < n; i++ {
			out = append(out, domain.Record{FechaBaja: t.AddDate(0, 0, 10)})
		}
	}
	return out
}

func TestComputeTrend_WorkedExample(t *testing.T) {
	// Monthly counts 5, 7, 9: slope 2, intercept 5, perfect fit.
	bajas := bajasForMonths(map[string]int{"2024-01": 5, "2024-02": 7, "2024-03": 9})
	trend := ComputeTrend(bajas)

	if !trend.HasData {
		t.Fatal("expected HasData with 3 months")
	}
	if trend.Stats.Slope <= 0 {
		t.Errorf("slope = %v, want positive", trend.Stats.Slope)
	}
	if math.Abs(trend.Stats.Slope-2) > 1e-9 || math.Abs(trend.Stats.Intercept-5) > 1e-9 {
		t.Errorf("fit = (%v, %v), want (2, 5)", trend.Stats.Slope, trend.Stats.Intercept)
	}
	if math.Abs(trend.Stats.R2-1) > 1e-9 {
		t.Errorf("r2 = %v, want 1", trend.Stats.R2)
	}
	if trend.Stats.TotalBajas != 21 || trend.Stats.Periods != 3 {
		t.Errorf("stats = %+v", trend.Stats)
	}

	if len(trend.Forecasts) != 2 {
		t.Fatalf("expected 2 forecasts, got %d", len(trend.Forecasts))
	}
	if trend.Forecasts[0].YM != "2024-04" || trend.Forecasts[1].YM != "2024-05" {
		t.Errorf("forecast months = %s, %s", trend.Forecasts[0].YM, trend.Forecasts[1].YM)
	}
	if math.Abs(trend.Forecasts[0].Bajas-11) > 1e-9 || math.Abs(trend.Forecasts[1].Bajas-13) > 1e-9 {
		t.Errorf("forecast values = %v, %v; want 11, 13", trend.Forecasts[0].Bajas, trend.Forecasts[1].Bajas)
	}
}

func TestComputeTrend_TooFewMonths(t *testing.T) {
	bajas := bajasForMonths(map[string]int{"2024-01": 5, "2024-02": 7})
	trend := ComputeTrend(bajas)
	if trend.HasData {
		t.Fatal("expected HasData=false with 2 months")
	}
	if trend.Stats != nil || len(trend.Forecasts) != 0 {
		t.Errorf("degraded trend should be empty: %+v", trend)
	}
}

func TestComputeTrend_ConstantSeries(t *testing.T) {
	bajas := bajasForMonths(map[string]int{"2024-01": 4, "2024-02": 4, "2024-03": 4})
	trend := ComputeTrend(bajas)
	if trend.Stats.R2 != 1 {
		t.Errorf("r2 for constant series = %v, want 1", trend.Stats.R2)
	}
	if trend.Stats.Slope != 0 {
		t.Errorf("slope = %v, want 0", trend.Stats.Slope)
	}
}

func TestNextYM(t *testing.T) {
	if got := NextYM("2024-12"); got != "2025-01" {
		t.Errorf("NextYM(2024-12) = %s", got)
	}
	if got := NextYM("2024-04"); got != "2024-05" {
		t.Errorf("NextYM(2024-04) = %s", got)
	}
}

func TestYearOverYear(t *testing.T) {
	trend := domain.TrendData{
		HasData: true,
		Historical: []domain.TrendPoint{
			{YM: "2023-03", Bajas: 10},
			{YM: "2023-04", Bajas: 0},
			{YM: "2023-05", Bajas: 0},
			{YM: "2024-03", Bajas: 12},
			{YM: "2024-04", Bajas: 3},
			{YM: "2024-05", Bajas: 0},
		},
	}
	out := YearOverYear(trend)
	byYM := make(map[string]domain.YoYPoint)
	for _, p := range out {
		byYM[p.YM] = p
	}

	if p := byYM["2023-03"]; p.Previous != nil || p.VariationPct != nil {
		t.Errorf("no prior year should give nil comparison: %+v", p)
	}
	if p := byYM["2024-03"]; p.VariationPct == nil || math.Abs(*p.VariationPct-20) > 1e-9 {
		t.Errorf("2024-03 variation = %v, want 20", p.VariationPct)
	}
	if p := byYM["2024-04"]; !domain.IsInf(p.VariationPct) {
		t.Errorf("2024-04 should be +Inf, got %v", p.VariationPct)
	}
	if p := byYM["2024-05"]; p.VariationPct == nil || *p.VariationPct != 0 {
		t.Errorf("2024-05 should be 0, got %v", p.VariationPct)
	}
}

func TestYearOverYear_NoData(t *testing.T) {
	if out := YearOverYear(domain.TrendData{}); out != nil {
		t.Fatalf("expected nil without trend data, got %v", out)
	}
}
