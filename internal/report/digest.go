package report

import (
	"fmt"
	"math"
	"strings"

	"rotabot/internal/domain"
)

// Digest renders the computed report as the plain-text fact sheet the
// narrative prompt is grounded on. Only values actually present in the
// report appear; missing ones are written as N/A so the model cannot invent
// them.
func Digest(r domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Análisis de Rotación de Personal para %s\n", r.ClientName)
	fmt.Fprintf(&b, "Periodo: %s - %s\n\n", r.Period.Start.Format("02/01/2006"), r.Period.End.Format("02/01/2006"))

	b.WriteString("1. Situación General (KPIs):\n")
	fmt.Fprintf(&b, "- Rotación Mensual: %s\n", pctOrNA(r.KPIs.RotacionPct, 2))
	fmt.Fprintf(&b, "- Bajas del Mes (Clase 1): %d\n", r.KPIs.BajasMes)
	fmt.Fprintf(&b, "- Headcount Activo (Clase 1): %d\n", r.KPIs.HCActivosC1)
	if r.Trend.Stats != nil {
		fmt.Fprintf(&b, "- Tendencia de Bajas: %s.\n", trendLabel(r.Trend.Stats.Slope))
	}
	if last := lastYoY(r.HistoricalYoY); last != nil && last.VariationPct != nil && !domain.IsInf(last.VariationPct) {
		direction := "más"
		if *last.VariationPct <= 0 {
			direction = "menos"
		}
		fmt.Fprintf(&b, "- Comparativa Anual: este mes tuvo un %.1f%% %s bajas que el mismo mes del año anterior.\n", math.Abs(*last.VariationPct), direction)
	}

	b.WriteString("\n2. Diagnóstico de Causa Raíz (dónde y por qué):\n")
	fmt.Fprintf(&b, "- Turno con más bajas: %s\n", paretoLeader(r.Pareto.Turno))
	fmt.Fprintf(&b, "- Puesto con más bajas: %s\n", paretoLeader(r.Pareto.Puesto))
	fmt.Fprintf(&b, "- Supervisor con más bajas: %s\n", paretoLeader(r.Pareto.Supervisor))
	b.WriteString("- Principales motivos de salida (comentarios de empleados):\n")
	for i := 0; i < 3; i++ {
		if i < len(r.Motivos.Barras) {
			fmt.Fprintf(&b, "  %d. %s (%d casos)\n", i+1, r.Motivos.Barras[i].Category, r.Motivos.Barras[i].Bajas)
		} else {
			fmt.Fprintf(&b, "  %d. N/A\n", i+1)
		}
	}

	b.WriteString("\n3. Diagnóstico de Retención (cuándo se van):\n")
	fmt.Fprintf(&b, "- Retención a 90 días (S90): %.1f%% (de cada 100 nuevos ingresos, %.0f causan baja antes de 3 meses).\n",
		r.Survival.S90*100, 100-r.Survival.S90*100)
	fmt.Fprintf(&b, "- Riesgo de baja en los primeros 30 días: %s\n", pct100OrNA(r.Survival.Haz0a30))
	fmt.Fprintf(&b, "- Riesgo de baja entre el día 31 y 60: %s\n", pct100OrNA(r.Survival.Haz31a60))
	if r.Survival.Mediana != nil {
		fmt.Fprintf(&b, "- Mediana de supervivencia: %d días.\n", *r.Survival.Mediana)
	} else {
		b.WriteString("- Mediana de supervivencia: no alcanzada (más del 50% permanece más allá del periodo observado).\n")
	}
	fmt.Fprintf(&b, "- Probabilidad de baja dentro del mes para quien lo inició activo: %.1f%%\n", r.Survival.HazardCondMes*100)

	return b.String()
}

func trendLabel(slope float64) string {
	switch {
	case slope > 0.1:
		return "En aumento"
	case slope < -0.1:
		return "En disminución"
	default:
		return "Estable"
	}
}

func lastYoY(points []domain.YoYPoint) *domain.YoYPoint {
	if len(points) == 0 {
		return nil
	}
	return &points[len(points)-1]
}

func paretoLeader(rows []domain.ParetoRecord) string {
	if len(rows) == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%s (%d bajas, %.1f%% del total)", rows[0].Value, rows[0].Bajas, rows[0].Percentage)
}

func pctOrNA(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f%%", decimals, *v)
}

func pct100OrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}
