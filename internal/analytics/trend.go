package analytics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"rotabot/internal/domain"
)

// minTrendMonths is the fewest distinct months required before fitting a
// regression. Below it the trend section carries HasData=false.
const minTrendMonths = 3

// forecastPeriods is how many future months the fitted line is extended.
const forecastPeriods = 2

func linearRegression(x, y []float64) (m, b, r2 float64) {
	n := float64(len(x))
	if len(x) < 2 {
		if len(y) > 0 {
			b = y[0]
		}
		return 0, b, 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}
	m = (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	b = (sumY - m*sumX) / n

	yMean := sumY / n
	var ssTot, ssRes float64
	for i := range x {
		ssTot += (y[i] - yMean) * (y[i] - yMean)
		res := y[i] - (m*x[i] + b)
		ssRes += res * res
	}
	if ssTot == 0 {
		return m, b, 1
	}
	return m, b, 1 - ssRes/ssTot
}

// NextYM rolls a year-month label forward one month.
func NextYM(ym string) string {
	parts := strings.SplitN(ym, "-", 2)
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	month++
	if month > 12 {
		month = 1
		year++
	}
	return fmt.Sprintf("%d-%02d", year, month)
}

// ComputeTrend aggregates all class-1 separations (any canonical type) into
// monthly counts and fits an ordinary least squares line over them, plus a
// two-period forecast. With fewer than three distinct months no regression
// is attempted.
func ComputeTrend(bajas []domain.Record) domain.TrendData {
	monthly := make(map[string]int)
	for _, r := range bajas {
		if !r.Separated() {
			continue
		}
		monthly[r.FechaBaja.UTC().Format("2006-01")]++
	}

	months := make([]string, 0, len(monthly))
	for ym := range monthly {
		months = append(months, ym)
	}
	sort.Strings(months)

	trend := domain.TrendData{}
	if len(months) < minTrendMonths {
		return trend
	}
	trend.HasData = true

	x := make([]float64, len(months))
	y := make([]float64, len(months))
	total := 0
	for i, ym := range months {
		x[i] = float64(i)
		y[i] = float64(monthly[ym])
		total += monthly[ym]
		trend.Historical = append(trend.Historical, domain.TrendPoint{YM: ym, Bajas: monthly[ym]})
	}

	m, b, r2 := linearRegression(x, y)
	trend.Stats = &domain.TrendStats{
		Slope: m, Intercept: b, R2: r2,
		Periods: len(months), TotalBajas: total,
	}
	trend.Fitted = make([]float64, len(months))
	for i := range months {
		trend.Fitted[i] = m*float64(i) + b
	}

	ym := months[len(months)-1]
	for i := 1; i <= forecastPeriods; i++ {
		ym = NextYM(ym)
		trend.Forecasts = append(trend.Forecasts, domain.ForecastPoint{
			YM:    ym,
			Bajas: m*float64(len(months)+i-1) + b,
		})
	}
	return trend
}

// YearOverYear compares every historical month against the same calendar
// month one year earlier within the same series. Variation is nil without a
// prior-year point, +Inf when the prior month was zero and this one is not,
// and 0 when both are zero.
func YearOverYear(trend domain.TrendData) []domain.YoYPoint {
	if !trend.HasData {
		return nil
	}
	byYM := make(map[string]int, len(trend.Historical))
	for _, p := range trend.Historical {
		byYM[p.YM] = p.Bajas
	}

	out := make([]domain.YoYPoint, 0, len(trend.Historical))
	for _, p := range trend.Historical {
		parts := strings.SplitN(p.YM, "-", 2)
		year, _ := strconv.Atoi(parts[0])
		prevYM := fmt.Sprintf("%d-%s", year-1, parts[1])

		point := domain.YoYPoint{YM: p.YM, Current: p.Bajas}
		if prev, ok := byYM[prevYM]; ok {
			point.Previous = domain.IntPtr(prev)
			switch {
			case prev > 0:
				point.VariationPct = domain.FloatPtr((float64(p.Bajas)/float64(prev) - 1) * 100)
			case p.Bajas > 0:
				point.VariationPct = domain.FloatPtr(math.Inf(1))
			default:
				point.VariationPct = domain.FloatPtr(0)
			}
		}
		out = append(out, point)
	}
	return out
}
