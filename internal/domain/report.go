package domain

import (
	"math"
	"time"
)

// Period is the closed calendar-month interval a report covers, in UTC.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Pareto classification labels.
const (
	ParetoCore80 = "Core 80"
	ParetoCola20 = "Cola 20"
)

type ParetoRecord struct {
	Value          string  `json:"value"`
	Bajas          int     `json:"bajas"`
	Percentage     float64 `json:"percentage"`
	Cumulative     float64 `json:"cumulative"`
	Classification string  `json:"classification"`
}

type ParetoData struct {
	Turno      []ParetoRecord `json:"turno"`
	Puesto     []ParetoRecord `json:"puesto"`
	Area       []ParetoRecord `json:"area"`
	Supervisor []ParetoRecord `json:"supervisor"`
	MotivoBaja []ParetoRecord `json:"motivo_baja"`
}

// KMPoint is one step of a Kaplan-Meier survival curve.
type KMPoint struct {
	TDays int     `json:"t_dias"`
	S     float64 `json:"S"`
}

// KMConditionalPoint is one day of the month-conditional survival walk.
type KMConditionalPoint struct {
	Fecha  time.Time `json:"fecha"`
	S      float64   `json:"S"`
	AtRisk int       `json:"at_risk"`
	Events int       `json:"events"`
}

type SurvivalMetrics struct {
	S30           float64  `json:"S30"`
	S60           float64  `json:"S60"`
	S90           float64  `json:"S90"`
	S180          float64  `json:"S180"`
	S365          float64  `json:"S365"`
	Mediana       *int     `json:"mediana"`
	Haz0a30       *float64 `json:"haz_0_30"`
	Haz31a60      *float64 `json:"haz_31_60"`
	Haz61a90      *float64 `json:"haz_61_90"`
	SEndCond      float64  `json:"S_end_cond"`
	HazardCondMes float64  `json:"hazard_cond_mes"`
}

// KMGroup is the survival fingerprint of one categorical group.
type KMGroup struct {
	Group string  `json:"group"`
	N     int     `json:"n"`
	S30   float64 `json:"S30"`
	S60   float64 `json:"S60"`
	S90   float64 `json:"S90"`
	S180  float64 `json:"S180"`
	S365  float64 `json:"S365"`
}

// Cohort is one hire year-month cohort with its 90-day survival.
type Cohort struct {
	Cohorte string  `json:"cohorte"`
	Size    int     `json:"size"`
	S90     float64 `json:"S90"`
}

type TrendPoint struct {
	YM    string `json:"ym"`
	Bajas int    `json:"bajas"`
}

type TrendStats struct {
	Slope      float64 `json:"slope"`
	Intercept  float64 `json:"intercept"`
	R2         float64 `json:"r2"`
	Periods    int     `json:"periods"`
	TotalBajas int     `json:"total_bajas"`
}

type ForecastPoint struct {
	YM    string  `json:"ym"`
	Bajas float64 `json:"bajas"`
}

type TrendData struct {
	Historical []TrendPoint    `json:"historical"`
	Stats      *TrendStats     `json:"stats"`
	Fitted     []float64       `json:"fitted"`
	Forecasts  []ForecastPoint `json:"forecasts"`
	HasData    bool            `json:"has_data"`
}

// YoYPoint compares one historical month against the same calendar month one
// year earlier. Previous is nil when no prior-year point exists in the
// series; VariationPct is then nil too. When the prior month had zero
// separations and this one has more, VariationPct is +Inf.
type YoYPoint struct {
	YM           string   `json:"ym"`
	Current      int      `json:"current"`
	Previous     *int     `json:"previous"`
	VariationPct *float64 `json:"variation_pct"`
}

// Categorization methods reported alongside motive results.
const (
	AnalysisML       = "ml"
	AnalysisKeywords = "keywords"
)

type MotiveBar struct {
	Category string `json:"category"`
	Bajas    int    `json:"bajas"`
}

type MotiveDetail struct {
	Empleado   string `json:"empleado"`
	Nombre     string `json:"nombre"`
	FechaBaja  string `json:"fecha_baja"`
	Comentario string `json:"comentario"`
}

type MotiveCategory struct {
	Category string         `json:"category"`
	Count    int            `json:"count"`
	Details  []MotiveDetail `json:"details"`
}

type MotivesData struct {
	Barras       []MotiveBar      `json:"barras"`
	Cards        []MotiveCategory `json:"cards"`
	HasData      bool             `json:"has_data"`
	TextCol      string           `json:"text_col"`
	AnalysisType string           `json:"analysis_type"`
}

type KPIs struct {
	HCActivosC1 int      `json:"hc_activos_c1"`
	BajasMes    int      `json:"bajas_mes"`
	RotacionPct *float64 `json:"rotacion_pct"`
	HCIni       int      `json:"hc_ini"`
	HCFin       int      `json:"hc_fin"`
	HCProm      float64  `json:"hc_prom"`
}

type ActionItem struct {
	Accion string `json:"accion"`
	Porque string `json:"porque"`
	Como   string `json:"como"`
}

// Summary is the optional narrative section. Nil in the report whenever the
// summary collaborator is unavailable or fails.
type Summary struct {
	Summary string       `json:"summary"`
	Actions []ActionItem `json:"actions"`
}

// Report is the single structured document handed to presentation and export
// consumers.
type Report struct {
	RunID         string               `json:"run_id"`
	ClientName    string               `json:"client_name"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Period        Period               `json:"period"`
	KPIs          KPIs                 `json:"kpis"`
	Pareto        ParetoData           `json:"pareto"`
	KMGlobal      []KMPoint            `json:"km_global"`
	KMCond        []KMConditionalPoint `json:"km_cond"`
	Survival      SurvivalMetrics      `json:"survival_metrics"`
	SurvByTurno   []KMGroup            `json:"surv_by_turno"`
	SurvByPuesto  []KMGroup            `json:"surv_by_puesto"`
	Cohorts       []Cohort             `json:"cohorts"`
	Trend         TrendData            `json:"trend"`
	HistoricalYoY []YoYPoint           `json:"historical_yoy"`
	Motivos       MotivesData          `json:"motivos"`
	AISummary     *Summary             `json:"ai_summary"`
}

// FloatPtr and IntPtr build optional-value fields.
func FloatPtr(v float64) *float64 { return &v }
func IntPtr(v int) *int           { return &v }

// IsInf reports whether a YoY variation is the +Inf marker.
func IsInf(v *float64) bool {
	return v != nil && math.IsInf(*v, 1)
}
