package stats

import (
	"context"
	"testing"

	"pvcommunity/internal/models"
	"pvcommunity/internal/store"
)

func TestGesamtwerteLifetimeSums(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, models.Installation{Hash: "a", Region: "BY", KWp: 10, SpeicherKWh: f(8), HatWaermepumpe: true, HatEAuto: true},
		models.MonthlyReading{
			Jahr: 2025, Monat: 5,
			ErtragKWh:            1000,
			EinspeisungKWh:       f(600),
			NetzbezugKWh:         f(200),
			SpeicherLadungKWh:    f(150),
			SpeicherEntladungKWh: f(130),
			WPStromverbrauchKWh:  f(100),
			WPHeizwaermeKWh:      f(250),
			WPWarmwasserKWh:      f(50),
			EAutoKm:              f(1200),
			EAutoLadungGesamtKWh: f(220),
			EAutoLadungPVKWh:     f(110),
		},
		models.MonthlyReading{
			Jahr: 2025, Monat: 6,
			ErtragKWh:             1100,
			EigenverbrauchProzent: f(30),
		},
	)
	seed(t, s, models.Installation{Hash: "b", Region: "BW", KWp: 5},
		models.MonthlyReading{Jahr: 2025, Monat: 6, ErtragKWh: 500},
	)

	totals, err := NewAggregator(s).Gesamtwerte(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if totals.AnzahlAnlagen != 2 || totals.AnzahlMonateTotal != 3 {
		t.Fatalf("counts wrong: %d anlagen, %d monate", totals.AnzahlAnlagen, totals.AnzahlMonateTotal)
	}
	if totals.GesamtKWp != 15 || totals.GesamtSpeicherKWh != 8 {
		t.Fatalf("capacity sums wrong: %v kwp, %v kwh", totals.GesamtKWp, totals.GesamtSpeicherKWh)
	}
	if totals.PVErzeugungKWh != 2600 {
		t.Fatalf("pv_erzeugung_kwh = %v, want 2600", totals.PVErzeugungKWh)
	}
	// May 400 (1000-600 feed-in fallback) + June 330 (30% of 1100) + 0.
	if totals.PVEigenverbrauchKWh != 730 {
		t.Fatalf("pv_eigenverbrauch_kwh = %v, want 730", totals.PVEigenverbrauchKWh)
	}
	if totals.WPWaermeKWh != 300 || totals.WPStromverbrauchKWh != 100 {
		t.Fatalf("wp sums wrong: %v waerme, %v strom", totals.WPWaermeKWh, totals.WPStromverbrauchKWh)
	}
	if totals.EAutoKm != 1200 || totals.EAutoPVKWh != 110 {
		t.Fatalf("eauto sums wrong: %v km, %v pv", totals.EAutoKm, totals.EAutoPVKWh)
	}
	if totals.CO2VermiedenKg != 1040 {
		t.Fatalf("co2_vermieden_kg = %v, want 1040", totals.CO2VermiedenKg)
	}
	if totals.SpeicherAnzahl != 1 || totals.WPAnzahl != 1 || totals.EAutoAnzahl != 1 {
		t.Fatalf("adoption counts wrong: %+v", totals)
	}
	if totals.Stand == "" {
		t.Fatal("stand timestamp missing")
	}
}

func TestGesamtwerteMonthlySeriesChronological(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, models.Installation{Hash: "a", Region: "BY", KWp: 10},
		models.MonthlyReading{Jahr: 2025, Monat: 1, ErtragKWh: 300},
		models.MonthlyReading{Jahr: 2024, Monat: 12, ErtragKWh: 150},
		models.MonthlyReading{Jahr: 2025, Monat: 2, ErtragKWh: 450},
	)
	seed(t, s, models.Installation{Hash: "b", Region: "BY", KWp: 10},
		models.MonthlyReading{Jahr: 2025, Monat: 1, ErtragKWh: 280},
	)

	totals, err := NewAggregator(s).Gesamtwerte(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(totals.MonatlicheSummen) != 3 {
		t.Fatalf("got %d series points, want 3", len(totals.MonatlicheSummen))
	}
	first := totals.MonatlicheSummen[0]
	if first.Jahr != 2024 || first.Monat != 12 {
		t.Fatalf("series must start oldest, got %d-%02d", first.Jahr, first.Monat)
	}
	jan := totals.MonatlicheSummen[1]
	if jan.PVErzeugungKWh != 580 || jan.AnzahlAnlagen != 2 {
		t.Fatalf("january sum wrong: %+v", jan)
	}
}

func TestGesamtwerteAequivalente(t *testing.T) {
	s := store.NewMemoryStore()
	readings := make([]models.MonthlyReading, 0, 10)
	for i := 1; i <= 10; i++ {
		readings = append(readings, models.MonthlyReading{Jahr: 2025, Monat: i, ErtragKWh: 1000})
	}
	seed(t, s, models.Installation{Hash: "a", Region: "BY", KWp: 10}, readings...)

	totals, err := NewAggregator(s).Gesamtwerte(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// 10000 kWh: 2 households, 4000 kg CO2, 200 trees.
	if totals.Aequivalente.Haushalte != 2 {
		t.Fatalf("haushalte = %d, want 2", totals.Aequivalente.Haushalte)
	}
	if totals.Aequivalente.Baeume != 200 {
		t.Fatalf("baeume = %d, want 200", totals.Aequivalente.Baeume)
	}
	if totals.Aequivalente.Erdumrundungen != 0 || totals.Aequivalente.GasKubikmeter != 0 {
		t.Fatalf("equivalences without data must be zero: %+v", totals.Aequivalente)
	}
}
