package stats

import (
	"context"
	"fmt"
	"sort"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
)

// Cohort rules for the degradation analysis: ages one to fifteen years are
// compared, and a cohort only counts with at least three installations.
const (
	maxCohortAge  = 15
	minCohortSize = 3
)

// Trend period names accepted by Trends.
const (
	TrendPeriod12Monate = "12_monate"
	TrendPeriod24Monate = "24_monate"
	TrendPeriodGesamt   = "gesamt"

	trendGesamtMonths = 60
)

type trendInst struct {
	first       models.Period
	jahr        int
	kwp         float64
	hatSpeicher bool
	hatWP       bool
	hatEAuto    bool
	readings    []models.MonthlyReading
}

// collectTrendInsts takes one snapshot pass and keeps the lightweight
// per-installation view both analyses work on. Installations without
// readings never appear in either, so they are skipped here. The returned
// anchor is the newest reading period in the population.
func (a *Aggregator) collectTrendInsts(ctx context.Context) ([]trendInst, models.Period, error) {
	var insts []trendInst
	var anchor models.Period
	err := a.store.Iterate(ctx, func(inst *models.Installation) error {
		if len(inst.Monatswerte) == 0 {
			return nil
		}
		ti := trendInst{
			jahr:        inst.InstallationJahr,
			kwp:         inst.KWp,
			hatSpeicher: inst.HasSpeicher(),
			hatWP:       inst.HatWaermepumpe,
			hatEAuto:    inst.HatEAuto,
			readings:    inst.Monatswerte,
		}
		ti.first = inst.Monatswerte[0].PeriodOf()
		for i := range inst.Monatswerte {
			p := inst.Monatswerte[i].PeriodOf()
			if p.Before(ti.first) {
				ti.first = p
			}
			if anchor.Before(p) {
				anchor = p
			}
		}
		insts = append(insts, ti)
		return nil
	})
	if err != nil {
		return nil, models.Period{}, err
	}
	return insts, anchor, nil
}

// Degradation groups the population by installation age and compares the
// cohorts' specific yields over the trailing twelve months. The age anchor
// is the newest reading period, so the analysis stays stable when data
// arrives late.
func (a *Aggregator) Degradation(ctx context.Context) (*models.DegradationsAnalyse, error) {
	insts, anchor, err := a.collectTrendInsts(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.DegradationsAnalyse{NachAlter: []models.AlterErtrag{}}
	if len(insts) == 0 {
		return result, nil
	}
	windowStart := anchor.AddMonths(-11)

	for alter := 1; alter <= maxCohortAge; alter++ {
		cohortJahr := anchor.Jahr - alter
		count := 0
		var ertragSum, kwpSum float64
		for i := range insts {
			ti := &insts[i]
			if ti.jahr != cohortJahr || ti.kwp <= 0 {
				continue
			}
			sum := 0.0
			for j := range ti.readings {
				p := ti.readings[j].PeriodOf()
				if p.Before(windowStart) || anchor.Before(p) {
					continue
				}
				sum += ti.readings[j].ErtragKWh
			}
			if sum <= 0 {
				continue
			}
			count++
			ertragSum += sum
			kwpSum += ti.kwp
		}
		if count >= minCohortSize && kwpSum > 0 {
			result.NachAlter = append(result.NachAlter, models.AlterErtrag{
				AlterJahre:             alter,
				Anzahl:                 count,
				DurchschnittSpezErtrag: round0(ertragSum / kwpSum),
			})
		}
	}

	if len(result.NachAlter) >= minCohortSize {
		first := result.NachAlter[0]
		last := result.NachAlter[len(result.NachAlter)-1]
		jahre := last.AlterJahre - first.AlterJahre
		if first.DurchschnittSpezErtrag > 0 && jahre > 0 {
			verlust := (first.DurchschnittSpezErtrag - last.DurchschnittSpezErtrag) / first.DurchschnittSpezErtrag * 100
			result.DurchschnittlicheDegradationProzJahr = round2(verlust / float64(jahre))
		}
	}
	return result, nil
}

// Trends reports how population size, mean capacity and equipment quotas
// developed month by month. An installation joins the curves with its
// earliest reported month. Fails with community.ErrInvalidWindow for
// unknown period names.
func (a *Aggregator) Trends(ctx context.Context, period string) (*models.TrendDaten, error) {
	var back int
	switch period {
	case TrendPeriod12Monate:
		back = 12
	case TrendPeriod24Monate:
		back = 24
	case TrendPeriodGesamt:
		back = trendGesamtMonths
	default:
		return nil, fmt.Errorf("period %q: %w", period, community.ErrInvalidWindow)
	}

	insts, anchor, err := a.collectTrendInsts(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.TrendDaten{
		Period: period,
		Trends: map[string][]models.TrendPunkt{
			"anzahl_anlagen":    {},
			"durchschnitt_kwp":  {},
			"speicher_quote":    {},
			"waermepumpe_quote": {},
			"eauto_quote":       {},
		},
	}
	if len(insts) == 0 {
		return result, nil
	}

	sort.Slice(insts, func(i, j int) bool { return insts[i].first.Before(insts[j].first) })

	var (
		count       int
		kwpSum      float64
		mitSpeicher int
		mitWP       int
		mitEAuto    int
	)
	next := 0
	for p := anchor.AddMonths(-back); !anchor.Before(p); p = p.AddMonths(1) {
		for next < len(insts) && !p.Before(insts[next].first) {
			count++
			kwpSum += insts[next].kwp
			if insts[next].hatSpeicher {
				mitSpeicher++
			}
			if insts[next].hatWP {
				mitWP++
			}
			if insts[next].hatEAuto {
				mitEAuto++
			}
			next++
		}
		if count == 0 {
			continue
		}
		monat := fmt.Sprintf("%04d-%02d", p.Jahr, p.Monat)
		point := func(wert float64) models.TrendPunkt {
			return models.TrendPunkt{Monat: monat, Wert: wert}
		}
		result.Trends["anzahl_anlagen"] = append(result.Trends["anzahl_anlagen"], point(float64(count)))
		result.Trends["durchschnitt_kwp"] = append(result.Trends["durchschnitt_kwp"], point(round1(kwpSum/float64(count))))
		result.Trends["speicher_quote"] = append(result.Trends["speicher_quote"], point(quote(mitSpeicher, count)))
		result.Trends["waermepumpe_quote"] = append(result.Trends["waermepumpe_quote"], point(quote(mitWP, count)))
		result.Trends["eauto_quote"] = append(result.Trends["eauto_quote"], point(quote(mitEAuto, count)))
	}
	return result, nil
}
