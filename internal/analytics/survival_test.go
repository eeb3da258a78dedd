package analytics

import (
	"math"
	"testing"
	"time"

	"rotabot/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildFrame(t *testing.T) {
	cutoff := day(2024, 6, 1)
	spells := []domain.Record{
		// Worked example: hired 2024-01-01, RV on 2024-04-15 = event at t=105.
		{Empleado: "E1", FechaIngreso: day(2024, 1, 1), FechaBaja: day(2024, 4, 15), TipoBaja: domain.TipoRV},
		// Still active: censored at cutoff.
		{Empleado: "E2", FechaIngreso: day(2024, 3, 1)},
		// Separated for another reason: censored at separation.
		{Empleado: "E3", FechaIngreso: day(2024, 1, 1), FechaBaja: day(2024, 2, 1), TipoBaja: "término"},
		// No hire date: dropped.
		{Empleado: "E4", FechaBaja: day(2024, 3, 1), TipoBaja: domain.TipoRV},
		// Negative duration: dropped.
		{Empleado: "E5", FechaIngreso: day(2024, 5, 1), FechaBaja: day(2024, 4, 1), TipoBaja: domain.TipoRV},
	}
	frame := BuildFrame(spells, cutoff)
	if len(frame) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(frame))
	}
	if frame[0].DurationDays != 105 || frame[0].Event != 1 {
		t.Errorf("E1: t=%d event=%d, want t=105 event=1", frame[0].DurationDays, frame[0].Event)
	}
	if frame[1].DurationDays != 92 || frame[1].Event != 0 {
		t.Errorf("E2: t=%d event=%d, want t=92 event=0", frame[1].DurationDays, frame[1].Event)
	}
	if frame[2].DurationDays != 31 || frame[2].Event != 0 {
		t.Errorf("E3: t=%d event=%d, want t=31 event=0", frame[2].DurationDays, frame[2].Event)
	}
}

func TestKMCurve_Properties(t *testing.T) {
	frame := []domain.SurvivalObs{
		{DurationDays: 10, Event: 1},
		{DurationDays: 20, Event: 1},
		{DurationDays: 20, Event: 1},
		{DurationDays: 30, Event: 0},
		{DurationDays: 40, Event: 1},
		{DurationDays: 50, Event: 0},
	}
	curve := KMCurve(frame)

	if curve[0].TDays != 0 || curve[0].S != 1.0 {
		t.Fatalf("curve must start at (0, 1.0), got (%d, %v)", curve[0].TDays, curve[0].S)
	}
	prev := 1.0
	for _, p := range curve {
		if p.S > prev || p.S < 0 || p.S > 1 {
			t.Errorf("S out of order or range at t=%d: %v (prev %v)", p.TDays, p.S, prev)
		}
		prev = p.S
	}

	// t=10: 6 at risk, 1 death -> 5/6.
	// t=20: 5 at risk, 2 deaths -> 5/6 * 3/5 = 0.5.
	// t=40: 2 at risk, 1 death -> 0.25.
	want := []struct {
		t int
		s float64
	}{{0, 1}, {10, 5.0 / 6.0}, {20, 0.5}, {40, 0.25}}
	if len(curve) != len(want) {
		t.Fatalf("curve has %d points, want %d", len(curve), len(want))
	}
	for i, w := range want {
		if curve[i].TDays != w.t || math.Abs(curve[i].S-w.s) > 1e-9 {
			t.Errorf("point %d = (%d, %v), want (%d, %v)", i, curve[i].TDays, curve[i].S, w.t, w.s)
		}
	}
}

func TestKMCurve_NoEvents(t *testing.T) {
	frame := []domain.SurvivalObs{{DurationDays: 100, Event: 0}}
	curve := KMCurve(frame)
	if len(curve) != 1 || curve[0].S != 1.0 {
		t.Fatalf("all-censored curve should be just (0, 1.0), got %v", curve)
	}
}

func TestSAt(t *testing.T) {
	curve := []domain.KMPoint{{TDays: 0, S: 1}, {TDays: 30, S: 0.8}, {TDays: 90, S: 0.5}}
	cases := []struct {
		day  int
		want float64
	}{{0, 1}, {29, 1}, {30, 0.8}, {89, 0.8}, {90, 0.5}, {400, 0.5}}
	for _, c := range cases {
		if got := SAt(curve, c.day); got != c.want {
			t.Errorf("SAt(%d) = %v, want %v", c.day, got, c.want)
		}
	}
}

func TestHazardBin(t *testing.T) {
	frame := []domain.SurvivalObs{
		{DurationDays: 10, Event: 1},
		{DurationDays: 45, Event: 1},
		{DurationDays: 100, Event: 0},
	}
	h := HazardBin(frame, 0, 30)
	if h == nil || math.Abs(*h-1.0/3.0) > 1e-9 {
		t.Errorf("haz(0,30] = %v, want 1/3", h)
	}
	// Only two observations reach day 30.
	h = HazardBin(frame, 30, 60)
	if h == nil || math.Abs(*h-0.5) > 1e-9 {
		t.Errorf("haz(30,60] = %v, want 0.5", h)
	}
}

func TestHazardBin_NobodyAtRisk(t *testing.T) {
	frame := []domain.SurvivalObs{{DurationDays: 10, Event: 1}}
	if h := HazardBin(frame, 60, 90); h != nil {
		t.Fatalf("expected nil hazard with empty risk set, got %v", *h)
	}
}

func TestMedian(t *testing.T) {
	curve := []domain.KMPoint{{TDays: 0, S: 1}, {TDays: 30, S: 0.6}, {TDays: 60, S: 0.5}, {TDays: 90, S: 0.2}}
	m := Median(curve)
	if m == nil || *m != 60 {
		t.Fatalf("median = %v, want 60", m)
	}
	high := []domain.KMPoint{{TDays: 0, S: 1}, {TDays: 30, S: 0.9}}
	if Median(high) != nil {
		t.Fatal("median should be nil when S never reaches 0.5")
	}
}

func TestConditionalMonth(t *testing.T) {
	p := domain.Period{Start: day(2024, 3, 1), End: day(2024, 3, 31)}
	spells := []domain.Record{
		{Empleado: "E1", FechaIngreso: day(2024, 1, 1)},
		{Empleado: "E2", FechaIngreso: day(2024, 1, 1)},
		{Empleado: "E3", FechaIngreso: day(2024, 1, 1)},
		{Empleado: "E4", FechaIngreso: day(2024, 1, 1)},
		// Hired mid-month: not in the cohort at risk on day one.
		{Empleado: "E5", FechaIngreso: day(2024, 3, 10)},
		// Already separated before the month opened.
		{Empleado: "E6", FechaIngreso: day(2024, 1, 1), FechaBaja: day(2024, 2, 15)},
	}
	events := []domain.Record{
		{Empleado: "E1", FechaBaja: day(2024, 3, 10)},
		{Empleado: "E2", FechaBaja: day(2024, 3, 20)},
		// Not part of the opening cohort: must not decrement it.
		{Empleado: "E5", FechaBaja: day(2024, 3, 25)},
	}

	rows := ConditionalMonth(spells, events, p)
	if len(rows) != 32 {
		t.Fatalf("expected 1 + 31 rows, got %d", len(rows))
	}
	if !rows[0].Fecha.Equal(day(2024, 2, 29)) || rows[0].S != 1.0 || rows[0].AtRisk != 4 {
		t.Fatalf("opening row wrong: %+v", rows[0])
	}

	// March 10: 1 event out of 4 at risk -> S = 0.75.
	r10 := rows[10]
	if !r10.Fecha.Equal(day(2024, 3, 10)) || r10.Events != 1 || math.Abs(r10.S-0.75) > 1e-9 || r10.AtRisk != 3 {
		t.Errorf("march 10 row wrong: %+v", r10)
	}
	// March 20: 1 of remaining 3 -> S = 0.75 * 2/3 = 0.5.
	r20 := rows[20]
	if r20.Events != 1 || math.Abs(r20.S-0.5) > 1e-9 || r20.AtRisk != 2 {
		t.Errorf("march 20 row wrong: %+v", r20)
	}
	// E5's event does not touch the cohort.
	if math.Abs(rows[len(rows)-1].S-0.5) > 1e-9 {
		t.Errorf("closing S = %v, want 0.5", rows[len(rows)-1].S)
	}
}

func TestConditionalMonth_EmptyCohort(t *testing.T) {
	p := domain.Period{Start: day(2024, 3, 1), End: day(2024, 3, 31)}
	if rows := ConditionalMonth(nil, nil, p); rows != nil {
		t.Fatalf("expected nil for empty cohort, got %d rows", len(rows))
	}
}

func TestGroupCurves_MinSizeAndOrder(t *testing.T) {
	var frame []domain.SurvivalObs
	// Turno A: 6 members, one early event -> lower S90.
	for i := 0; i < 5; i++ {
		frame = append(frame, domain.SurvivalObs{Record: domain.Record{Turno: "A"}, DurationDays: 200, Event: 0})
	}
	frame = append(frame, domain.SurvivalObs{Record: domain.Record{Turno: "A"}, DurationDays: 15, Event: 1})
	// Turno B: 5 members, no events.
	for i := 0; i < 5; i++ {
		frame = append(frame, domain.SurvivalObs{Record: domain.Record{Turno: "B"}, DurationDays: 200, Event: 0})
	}
	// Turno C: 4 members, below the reporting threshold.
	for i := 0; i < 4; i++ {
		frame = append(frame, domain.SurvivalObs{Record: domain.Record{Turno: "C"}, DurationDays: 10, Event: 1})
	}

	groups := GroupCurves(frame, domain.FieldTurno)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Group != "A" || groups[1].Group != "B" {
		t.Errorf("order = %q, %q; want highest risk (A) first", groups[0].Group, groups[1].Group)
	}
	if groups[0].N != 6 || groups[1].S90 != 1.0 {
		t.Errorf("group stats wrong: %+v", groups)
	}
}

func TestHireCohorts(t *testing.T) {
	cutoff := day(2024, 12, 1)
	var spells []domain.Record
	for i := 0; i < 5; i++ {
		spells = append(spells, domain.Record{Empleado: "a", FechaIngreso: day(2024, 2, 1)})
	}
	for i := 0; i < 5; i++ {
		spells = append(spells, domain.Record{Empleado: "b", FechaIngreso: day(2024, 1, 1)})
	}
	// Too small to report.
	spells = append(spells, domain.Record{Empleado: "c", FechaIngreso: day(2024, 3, 1)})

	cohorts := HireCohorts(spells, cutoff)
	if len(cohorts) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(cohorts))
	}
	if cohorts[0].Cohorte != "2024-01" || cohorts[1].Cohorte != "2024-02" {
		t.Errorf("cohorts not chronological: %+v", cohorts)
	}
}

func TestSurvivalSummary(t *testing.T) {
	frame := []domain.SurvivalObs{
		{DurationDays: 10, Event: 1},
		{DurationDays: 100, Event: 0},
	}
	curve := KMCurve(frame)
	cond := []domain.KMConditionalPoint{{S: 1}, {S: 0.9}}
	m := SurvivalSummary(frame, curve, cond)
	if m.S30 != 0.5 || m.S90 != 0.5 {
		t.Errorf("milestones wrong: %+v", m)
	}
	if math.Abs(m.SEndCond-0.9) > 1e-9 || math.Abs(m.HazardCondMes-0.1) > 1e-9 {
		t.Errorf("conditional tail wrong: %+v", m)
	}
	if m.Mediana == nil || *m.Mediana != 10 {
		t.Errorf("mediana = %v, want 10", m.Mediana)
	}
}
