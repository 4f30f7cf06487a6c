package stats

import (
	"context"
	"sort"
	"time"

	"pvcommunity/internal/models"
)

// Impact constants. CO2 uses the emission factor of displaced German grid
// electricity; the equivalences are the dashboard's illustrative ratios.
const (
	CO2FactorKgPerKWh   = 0.4
	HaushaltKWhProJahr  = 5000.0
	BaumCO2KgProJahr    = 20.0
	ErdumfangKm         = 40075.0
	GasKWhProKubikmeter = 10.0
)

type monthSumAcc struct {
	erzeugung      float64
	eigenverbrauch float64
	einspeisung    float64
	anzahl         int
}

// Gesamtwerte computes the lifetime community totals and the monthly series
// feeding them. Sums run over every reading ever recorded, not a window.
func (a *Aggregator) Gesamtwerte(ctx context.Context) (*models.CommunityGesamtwerte, error) {
	t := &models.CommunityGesamtwerte{
		Stand:            time.Now().UTC().Format(time.RFC3339),
		MonatlicheSummen: []models.MonatsSumme{},
	}
	summen := make(map[models.Period]*monthSumAcc)

	err := a.store.Iterate(ctx, func(inst *models.Installation) error {
		t.AnzahlAnlagen++
		t.AnzahlMonateTotal += len(inst.Monatswerte)
		t.GesamtKWp += inst.KWp
		if inst.HasSpeicher() {
			t.SpeicherAnzahl++
			t.GesamtSpeicherKWh += *inst.SpeicherKWh
		}
		if inst.HatWaermepumpe {
			t.WPAnzahl++
		}
		if inst.HatEAuto {
			t.EAutoAnzahl++
		}
		if inst.HatWallbox {
			t.WallboxAnzahl++
		}
		if inst.HatBalkonkraftwerk {
			t.BKWAnzahl++
		}

		for i := range inst.Monatswerte {
			m := &inst.Monatswerte[i]
			t.PVErzeugungKWh += m.ErtragKWh
			eigen := eigenverbrauchKWh(m)
			t.PVEigenverbrauchKWh += eigen
			if m.EinspeisungKWh != nil {
				t.PVEinspeisungKWh += *m.EinspeisungKWh
			}
			if m.NetzbezugKWh != nil {
				t.NetzbezugKWh += *m.NetzbezugKWh
			}

			addOpt(&t.SpeicherLadungKWh, m.SpeicherLadungKWh)
			addOpt(&t.SpeicherEntladungKWh, m.SpeicherEntladungKWh)
			addOpt(&t.WPStromverbrauchKWh, m.WPStromverbrauchKWh)
			addOpt(&t.WPWaermeKWh, m.WPHeizwaermeKWh)
			addOpt(&t.WPWaermeKWh, m.WPWarmwasserKWh)
			addOpt(&t.EAutoKm, m.EAutoKm)
			addOpt(&t.EAutoLadungKWh, m.EAutoLadungGesamtKWh)
			addOpt(&t.EAutoPVKWh, m.EAutoLadungPVKWh)
			addOpt(&t.WallboxLadungKWh, m.WallboxLadungKWh)
			addOpt(&t.WallboxPVKWh, m.WallboxLadungPVKWh)
			addOpt(&t.BKWErzeugungKWh, m.BKWErzeugungKWh)

			p := m.PeriodOf()
			acc := summen[p]
			if acc == nil {
				acc = &monthSumAcc{}
				summen[p] = acc
			}
			acc.erzeugung += m.ErtragKWh
			acc.eigenverbrauch += eigen
			if m.EinspeisungKWh != nil {
				acc.einspeisung += *m.EinspeisungKWh
			}
			acc.anzahl++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.CO2VermiedenKg = round1(t.PVErzeugungKWh * CO2FactorKgPerKWh)
	t.MonatlicheSummen = buildMonatsSummen(summen)
	t.Aequivalente = models.Aequivalente{
		Haushalte:      int(round0(t.PVErzeugungKWh / HaushaltKWhProJahr)),
		Baeume:         int(round0(t.CO2VermiedenKg / BaumCO2KgProJahr)),
		Erdumrundungen: round1(t.EAutoKm / ErdumfangKm),
		GasKubikmeter:  int(round0(t.WPWaermeKWh / GasKWhProKubikmeter)),
	}
	return t, nil
}

// eigenverbrauchKWh derives the self-consumed energy of one month: the
// reported percentage wins, the feed-in difference is the fallback, and a
// month reporting neither contributes nothing.
func eigenverbrauchKWh(m *models.MonthlyReading) float64 {
	if m.EigenverbrauchProzent != nil {
		return m.ErtragKWh * *m.EigenverbrauchProzent / 100
	}
	if m.EinspeisungKWh != nil {
		diff := m.ErtragKWh - *m.EinspeisungKWh
		if diff > 0 {
			return diff
		}
	}
	return 0
}

func buildMonatsSummen(summen map[models.Period]*monthSumAcc) []models.MonatsSumme {
	periods := make([]models.Period, 0, len(summen))
	for p := range summen {
		periods = append(periods, p)
	}
	// Chronological for the time-series chart.
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	out := make([]models.MonatsSumme, 0, len(periods))
	for _, p := range periods {
		acc := summen[p]
		out = append(out, models.MonatsSumme{
			Jahr:              p.Jahr,
			Monat:             p.Monat,
			PVErzeugungKWh:    round1(acc.erzeugung),
			EigenverbrauchKWh: round1(acc.eigenverbrauch),
			EinspeisungKWh:    round1(acc.einspeisung),
			AnzahlAnlagen:     acc.anzahl,
		})
	}
	return out
}

func addOpt(dst *float64, v *float64) {
	if v != nil {
		*dst += *v
	}
}
