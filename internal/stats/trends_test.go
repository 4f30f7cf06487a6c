package stats

import (
	"context"
	"errors"
	"testing"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
	"pvcommunity/internal/store"
)

// flatYear spreads total evenly over the twelve months of jahr.
func flatYear(jahr int, total float64) []models.MonthlyReading {
	out := make([]models.MonthlyReading, 0, 12)
	for m := 1; m <= 12; m++ {
		out = append(out, models.MonthlyReading{Jahr: jahr, Monat: m, ErtragKWh: total / 12})
	}
	return out
}

func seedCohort(t *testing.T, s *store.MemoryStore, jahr int, hashes []string, total float64) {
	t.Helper()
	for _, h := range hashes {
		seed(t, s, models.Installation{Hash: h, Region: "BY", KWp: 10, InstallationJahr: jahr},
			flatYear(2025, total)...)
	}
}

func TestDegradationCohorts(t *testing.T) {
	s := store.NewMemoryStore()
	seedCohort(t, s, 2024, []string{"a1", "a2", "a3"}, 10000)
	seedCohort(t, s, 2023, []string{"b1", "b2", "b3"}, 9500)
	seedCohort(t, s, 2022, []string{"c1", "c2", "c3"}, 9000)
	// Two installations are below the cohort minimum.
	seedCohort(t, s, 2020, []string{"d1", "d2"}, 8000)
	// Readings outside the trailing twelve months must not count.
	if err := s.AppendReadings(context.Background(), "a1",
		[]models.MonthlyReading{{Jahr: 2024, Monat: 12, ErtragKWh: 99999}}); err != nil {
		t.Fatal(err)
	}

	result, err := NewAggregator(s).Degradation(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.NachAlter) != 3 {
		t.Fatalf("cohorts = %d, want 3: %+v", len(result.NachAlter), result.NachAlter)
	}
	want := []models.AlterErtrag{
		{AlterJahre: 1, Anzahl: 3, DurchschnittSpezErtrag: 1000},
		{AlterJahre: 2, Anzahl: 3, DurchschnittSpezErtrag: 950},
		{AlterJahre: 3, Anzahl: 3, DurchschnittSpezErtrag: 900},
	}
	for i, w := range want {
		if result.NachAlter[i] != w {
			t.Fatalf("cohort %d = %+v, want %+v", i, result.NachAlter[i], w)
		}
	}

	// 10% loss from age one to age three, spread over two years.
	if result.DurchschnittlicheDegradationProzJahr != 5 {
		t.Fatalf("degradation = %v, want 5", result.DurchschnittlicheDegradationProzJahr)
	}
}

func TestDegradationEmptyPopulation(t *testing.T) {
	result, err := NewAggregator(store.NewMemoryStore()).Degradation(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.NachAlter) != 0 || result.DurchschnittlicheDegradationProzJahr != 0 {
		t.Fatalf("empty store produced cohorts: %+v", result)
	}
}

func TestTrendsGrowthCurves(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, models.Installation{Hash: "x1", Region: "BY", KWp: 10, SpeicherKWh: f(8)},
		models.MonthlyReading{Jahr: 2025, Monat: 1, ErtragKWh: 800})
	seed(t, s, models.Installation{Hash: "x2", Region: "BY", KWp: 6, HatWaermepumpe: true},
		models.MonthlyReading{Jahr: 2025, Monat: 6, ErtragKWh: 600})
	seed(t, s, models.Installation{Hash: "x3", Region: "BW", KWp: 8, HatEAuto: true},
		models.MonthlyReading{Jahr: 2025, Monat: 12, ErtragKWh: 400})

	result, err := NewAggregator(s).Trends(context.Background(), TrendPeriod12Monate)
	if err != nil {
		t.Fatal(err)
	}
	if result.Period != TrendPeriod12Monate {
		t.Fatalf("period = %s", result.Period)
	}

	anzahl := result.Trends["anzahl_anlagen"]
	if len(anzahl) != 12 {
		t.Fatalf("points = %d, want 12 (months before the first reading carry no point)", len(anzahl))
	}
	if anzahl[0].Monat != "2025-01" || anzahl[0].Wert != 1 {
		t.Fatalf("first point = %+v", anzahl[0])
	}
	if anzahl[11].Monat != "2025-12" || anzahl[11].Wert != 3 {
		t.Fatalf("last point = %+v", anzahl[11])
	}

	kwp := result.Trends["durchschnitt_kwp"]
	if kwp[5].Monat != "2025-06" || kwp[5].Wert != 8 {
		t.Fatalf("kwp at join of x2 = %+v", kwp[5])
	}

	speicher := result.Trends["speicher_quote"]
	if speicher[0].Wert != 100 || speicher[5].Wert != 50 || speicher[11].Wert != 33.3 {
		t.Fatalf("speicher quote curve wrong: %+v", speicher)
	}
	wp := result.Trends["waermepumpe_quote"]
	if wp[0].Wert != 0 || wp[5].Wert != 50 {
		t.Fatalf("wp quote curve wrong: %+v", wp)
	}
	eauto := result.Trends["eauto_quote"]
	if eauto[10].Wert != 0 || eauto[11].Wert != 33.3 {
		t.Fatalf("eauto quote curve wrong: %+v", eauto)
	}
}

func TestTrendsUnknownPeriod(t *testing.T) {
	_, err := NewAggregator(store.NewMemoryStore()).Trends(context.Background(), "quartal")
	if !errors.Is(err, community.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestTrendsEmptyPopulation(t *testing.T) {
	result, err := NewAggregator(store.NewMemoryStore()).Trends(context.Background(), TrendPeriodGesamt)
	if err != nil {
		t.Fatal(err)
	}
	for name, points := range result.Trends {
		if len(points) != 0 {
			t.Fatalf("curve %s not empty: %+v", name, points)
		}
	}
}
