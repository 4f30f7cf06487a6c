// Package stats computes population-wide statistics over the installation
// store. The engines are pure functions of store contents; caching happens
// in front of them, never inside.
package stats

import (
	"context"
	"sort"

	"pvcommunity/internal/models"
	"pvcommunity/internal/store"
)

// Trailing-window rules for the mean annual specific yield: per
// installation the 12 most recent readings are used, at least 6 months are
// required, and partial years are extrapolated to a full year.
const (
	trailingMonths    = 12
	minMonthsForYear  = 6
	lastMonthsInStats = 12
)

// Aggregator computes GesamtStatistik and CommunityGesamtwerte. The store
// handle is injected so tests can run against isolated fixtures.
type Aggregator struct {
	store store.Store
}

// NewAggregator returns the engine.
func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{store: s}
}

type regionAcc struct {
	region       string
	count        int
	kwpSum       float64
	annualSpez   []float64
	autarkie     []float64
	mitSpeicher  int
	mitWP        int
	mitEAuto     int
	mitWallbox   int
	mitBKW       int
}

type monthAcc struct {
	ertraege []float64
	spez     []float64
}

// GesamtStatistik computes the population overview in one pass over the
// store snapshot. Every stored installation counts toward population size
// and equipment adoption; yield statistics only see installations with
// readings. Division-by-zero situations surface as nil/zero, never NaN.
func (a *Aggregator) GesamtStatistik(ctx context.Context) (*models.GesamtStatistik, error) {
	var (
		anzahlAnlagen int
		anzahlWerte   int
		kwpSum        float64
		speicherSum   float64
		speicherCount int
		annualSpez    []float64
	)
	regionen := make(map[string]*regionAcc)
	monate := make(map[models.Period]*monthAcc)

	err := a.store.Iterate(ctx, func(inst *models.Installation) error {
		anzahlAnlagen++
		anzahlWerte += len(inst.Monatswerte)
		kwpSum += inst.KWp
		if inst.HasSpeicher() {
			speicherSum += *inst.SpeicherKWh
			speicherCount++
		}

		reg := regionen[inst.Region]
		if reg == nil {
			reg = &regionAcc{region: inst.Region}
			regionen[inst.Region] = reg
		}
		reg.count++
		reg.kwpSum += inst.KWp
		if inst.HasSpeicher() {
			reg.mitSpeicher++
		}
		if inst.HatWaermepumpe {
			reg.mitWP++
		}
		if inst.HatEAuto {
			reg.mitEAuto++
		}
		if inst.HatWallbox {
			reg.mitWallbox++
		}
		if inst.HatBalkonkraftwerk {
			reg.mitBKW++
		}

		if spez, ok := trailingAnnualSpez(inst); ok {
			annualSpez = append(annualSpez, spez)
			reg.annualSpez = append(reg.annualSpez, spez)
		}

		for i := range inst.Monatswerte {
			m := &inst.Monatswerte[i]
			if m.AutarkieProzent != nil {
				reg.autarkie = append(reg.autarkie, *m.AutarkieProzent)
			}
			if inst.KWp > 0 {
				p := m.PeriodOf()
				acc := monate[p]
				if acc == nil {
					acc = &monthAcc{}
					monate[p] = acc
				}
				acc.ertraege = append(acc.ertraege, m.ErtragKWh)
				acc.spez = append(acc.spez, m.ErtragKWh/inst.KWp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &models.GesamtStatistik{
		AnzahlAnlagen:     anzahlAnlagen,
		AnzahlMonatswerte: anzahlWerte,
		Regionen:          []models.RegionStatistik{},
		LetzteMonate:      []models.MonatsStatistik{},
	}
	if anzahlAnlagen == 0 {
		return result, nil
	}

	result.DurchschnittKWp = round1(kwpSum / float64(anzahlAnlagen))
	if speicherCount > 0 {
		result.DurchschnittSpeicherKWh = f64(round1(speicherSum / float64(speicherCount)))
	}
	if len(annualSpez) > 0 {
		result.DurchschnittSpezErtragJahr = round0(mean(annualSpez))
	}
	result.Regionen = buildRegionen(regionen)
	result.LetzteMonate = buildLetzteMonate(monate)
	return result, nil
}

// trailingAnnualSpez estimates the installation's annual specific yield
// from its newest readings (Monatswerte are sorted newest first).
func trailingAnnualSpez(inst *models.Installation) (float64, bool) {
	if inst.KWp <= 0 {
		return 0, false
	}
	n := len(inst.Monatswerte)
	if n > trailingMonths {
		n = trailingMonths
	}
	if n < minMonthsForYear {
		return 0, false
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += inst.Monatswerte[i].ErtragKWh
	}
	annual := sum / float64(n) * 12
	return annual / inst.KWp, true
}

func buildRegionen(regionen map[string]*regionAcc) []models.RegionStatistik {
	accs := make([]*regionAcc, 0, len(regionen))
	for _, acc := range regionen {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool {
		if accs[i].count != accs[j].count {
			return accs[i].count > accs[j].count
		}
		return accs[i].region < accs[j].region
	})

	out := make([]models.RegionStatistik, 0, len(accs))
	for _, acc := range accs {
		rs := models.RegionStatistik{
			Region:                   acc.region,
			AnzahlAnlagen:            acc.count,
			DurchschnittKWp:          round1(acc.kwpSum / float64(acc.count)),
			AnteilMitSpeicher:        quote(acc.mitSpeicher, acc.count),
			AnteilMitWaermepumpe:     quote(acc.mitWP, acc.count),
			AnteilMitEAuto:           quote(acc.mitEAuto, acc.count),
			AnteilMitWallbox:         quote(acc.mitWallbox, acc.count),
			AnteilMitBalkonkraftwerk: quote(acc.mitBKW, acc.count),
		}
		if len(acc.annualSpez) > 0 {
			rs.DurchschnittSpezErtrag = round0(mean(acc.annualSpez))
		}
		if len(acc.autarkie) > 0 {
			rs.DurchschnittAutarkie = f64(round1(mean(acc.autarkie)))
		}
		out = append(out, rs)
	}
	return out
}

func buildLetzteMonate(monate map[models.Period]*monthAcc) []models.MonatsStatistik {
	periods := make([]models.Period, 0, len(monate))
	for p := range monate {
		periods = append(periods, p)
	}
	// Newest first, like the dashboard renders them.
	sort.Slice(periods, func(i, j int) bool { return periods[j].Before(periods[i]) })
	if len(periods) > lastMonthsInStats {
		periods = periods[:lastMonthsInStats]
	}

	out := make([]models.MonatsStatistik, 0, len(periods))
	for _, p := range periods {
		acc := monate[p]
		min, max := minMax(acc.spez)
		out = append(out, models.MonatsStatistik{
			Jahr:                   p.Jahr,
			Monat:                  p.Monat,
			AnzahlAnlagen:          len(acc.spez),
			DurchschnittErtragKWh:  round1(mean(acc.ertraege)),
			DurchschnittSpezErtrag: round1(mean(acc.spez)),
			MedianSpezErtrag:       round1(median(acc.spez)),
			MinSpezErtrag:          round1(min),
			MaxSpezErtrag:          round1(max),
		})
	}
	return out
}

func quote(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}
