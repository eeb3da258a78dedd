package analytics

import (
	"testing"

	"rotabot/internal/domain"
)

func TestParetoTable_WorkedExample(t *testing.T) {
	// 8 + 5 + 3 = 16 values: 50% / 31.25% / 18.75%.
	var values []string
	for i := 0; i < 8; i++ {
		values = append(values, "A")
	}
	for i := 0; i < 5; i++ {
		values = append(values, "B")
	}
	for i := 0; i < 3; i++ {
		values = append(values, "C")
	}

	got := ParetoTable(values)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}

	want := []domain.ParetoRecord{
		{Value: "A", Bajas: 8, Percentage: 50, Cumulative: 50, Classification: domain.ParetoCore80},
		{Value: "B", Bajas: 5, Percentage: 31.25, Cumulative: 81.25, Classification: domain.ParetoCola20},
		{Value: "C", Bajas: 3, Percentage: 18.75, Cumulative: 100, Classification: domain.ParetoCola20},
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("row %d = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestParetoTable_CutoffTolerance(t *testing.T) {
	// Four equal buckets: cumulative 25/50/75/100. The 0.01 tolerance keeps
	// a cumulative of exactly 80.00 inside Core 80; check via 5 buckets of
	// 20% each, where the 4th lands exactly on 80.
	var values []string
	for _, v := range []string{"A", "B", "C", "D", "E"} {
		values = append(values, v, v)
	}
	got := ParetoTable(values)
	if got[3].Cumulative != 80 {
		t.Fatalf("cumulative = %v, want 80", got[3].Cumulative)
	}
	if got[3].Classification != domain.ParetoCore80 {
		t.Errorf("row at exactly 80%% should be Core 80, got %s", got[3].Classification)
	}
	if got[4].Classification != domain.ParetoCola20 {
		t.Errorf("last row should be Cola 20, got %s", got[4].Classification)
	}
}

func TestParetoTable_MissingSentinelAndOrder(t *testing.T) {
	got := ParetoTable([]string{"", "  ", "Turno A", "Turno A", "Turno B"})
	if got[0].Value != "SIN DATO" && got[0].Value != "Turno A" {
		t.Fatalf("unexpected leader %q", got[0].Value)
	}
	// Tie between SIN DATO (2) and Turno A (2) resolves by value ascending.
	if got[0].Value != "SIN DATO" || got[1].Value != "Turno A" || got[2].Value != "Turno B" {
		t.Errorf("order = %q, %q, %q", got[0].Value, got[1].Value, got[2].Value)
	}
	prev := 0.0
	for _, row := range got {
		if row.Cumulative < prev {
			t.Errorf("cumulative decreasing at %q: %v < %v", row.Value, row.Cumulative, prev)
		}
		prev = row.Cumulative
	}
	if got[len(got)-1].Cumulative < 99.99 || got[len(got)-1].Cumulative > 100.01 {
		t.Errorf("final cumulative = %v, want ~100", got[len(got)-1].Cumulative)
	}
}

func TestParetoTable_Empty(t *testing.T) {
	if got := ParetoTable(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestFieldValues(t *testing.T) {
	records := []domain.Record{
		{Turno: "A"},
		{Turno: ""},
	}
	got := FieldValues(records, domain.FieldTurno)
	if len(got) != 2 || got[0] != "A" || got[1] != "" {
		t.Fatalf("FieldValues = %v", got)
	}
}
