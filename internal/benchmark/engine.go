package benchmark

import (
	"context"
	"sort"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
	"pvcommunity/internal/store"
)

// Engine ranks a single installation against the community population.
type Engine struct {
	store store.Store
}

// NewEngine builds benchmark engine.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// windowAgg holds one installation's sums over the resolved range.
type windowAgg struct {
	inst   *models.Installation
	hash   string
	region string
	kwp    float64
	months int

	ertrag float64

	eigenverbrauchPct []float64
	autarkiePct       []float64

	hasSpeicher  bool
	spLadung     float64
	spEntladung  float64
	spNetzanteil []float64

	hasWP        bool
	wpStrom      float64
	wpHeiz       float64
	wpWarmwasser float64

	hasEV    bool
	evLadung float64
	evPV     float64
	evKm     float64
	evV2H    float64
	evHatV2H bool

	hasWB       bool
	wbLadung    float64
	wbPV        float64
	wbVorgaenge int

	hasBKW   bool
	bkwErz   float64
	bkwEigen float64
}

func (a *windowAgg) spezErtrag() float64 {
	return a.ertrag / a.kwp
}

// accumulate sums the installation's readings inside rng. Returns nil when
// no reading falls inside the range or the installation has no capacity.
func accumulate(inst *models.Installation, rng Range) *windowAgg {
	if inst.KWp <= 0 {
		return nil
	}
	agg := &windowAgg{inst: inst, hash: inst.Hash, region: inst.Region, kwp: inst.KWp}
	for i := range inst.Monatswerte {
		m := &inst.Monatswerte[i]
		if !rng.Contains(m.PeriodOf()) {
			continue
		}
		agg.months++
		agg.ertrag += m.ErtragKWh

		if m.EigenverbrauchProzent != nil {
			agg.eigenverbrauchPct = append(agg.eigenverbrauchPct, *m.EigenverbrauchProzent)
		}
		if m.AutarkieProzent != nil {
			agg.autarkiePct = append(agg.autarkiePct, *m.AutarkieProzent)
		}

		if m.SpeicherLadungKWh != nil {
			agg.hasSpeicher = true
			agg.spLadung += *m.SpeicherLadungKWh
			if m.SpeicherLadungNetzKWh != nil && *m.SpeicherLadungKWh > 0 {
				agg.spNetzanteil = append(agg.spNetzanteil, *m.SpeicherLadungNetzKWh / *m.SpeicherLadungKWh*100)
			}
		}
		if m.SpeicherEntladungKWh != nil {
			agg.hasSpeicher = true
			agg.spEntladung += *m.SpeicherEntladungKWh
		}

		if m.WPStromverbrauchKWh != nil {
			agg.hasWP = true
			agg.wpStrom += *m.WPStromverbrauchKWh
		}
		if m.WPHeizwaermeKWh != nil {
			agg.hasWP = true
			agg.wpHeiz += *m.WPHeizwaermeKWh
		}
		if m.WPWarmwasserKWh != nil {
			agg.hasWP = true
			agg.wpWarmwasser += *m.WPWarmwasserKWh
		}

		if m.EAutoLadungGesamtKWh != nil {
			agg.hasEV = true
			agg.evLadung += *m.EAutoLadungGesamtKWh
		}
		if m.EAutoLadungPVKWh != nil {
			agg.hasEV = true
			agg.evPV += *m.EAutoLadungPVKWh
		}
		if m.EAutoKm != nil {
			agg.hasEV = true
			agg.evKm += *m.EAutoKm
		}
		if m.EAutoV2HKWh != nil {
			agg.hasEV = true
			agg.evHatV2H = true
			agg.evV2H += *m.EAutoV2HKWh
		}

		if m.WallboxLadungKWh != nil {
			agg.hasWB = true
			agg.wbLadung += *m.WallboxLadungKWh
		}
		if m.WallboxLadungPVKWh != nil {
			agg.hasWB = true
			agg.wbPV += *m.WallboxLadungPVKWh
		}
		if m.WallboxLadevorgaenge != nil {
			agg.hasWB = true
			agg.wbVorgaenge += *m.WallboxLadevorgaenge
		}

		if m.BKWErzeugungKWh != nil {
			agg.hasBKW = true
			agg.bkwErz += *m.BKWErzeugungKWh
		}
		if m.BKWEigenverbrauchKWh != nil {
			agg.hasBKW = true
			agg.bkwEigen += *m.BKWEigenverbrauchKWh
		}
	}
	if agg.months == 0 {
		return nil
	}
	return agg
}

// Compute builds the full benchmark payload for target over the given
// window. Returns community.ErrInsufficientData when the target has no
// reading in the resolved range, or when no window can be resolved at all.
// A single store scan feeds both the window resolution and the ranking, so
// they always see the same snapshot.
func (e *Engine) Compute(ctx context.Context, target *models.Installation, win Window) (*models.AnlageBenchmark, error) {
	var population []*models.Installation
	periods := make(map[models.Period]struct{})
	if err := e.store.Iterate(ctx, func(inst *models.Installation) error {
		for i := range inst.Monatswerte {
			periods[inst.Monatswerte[i].PeriodOf()] = struct{}{}
		}
		cp := *inst
		population = append(population, &cp)
		return nil
	}); err != nil {
		return nil, err
	}

	rng, label, err := resolveRange(win, target.InstallationJahr, periods)
	if err != nil {
		return nil, err
	}

	var participants []*windowAgg
	for _, inst := range population {
		if agg := accumulate(inst, rng); agg != nil {
			participants = append(participants, agg)
		}
	}

	var targetAgg *windowAgg
	for _, p := range participants {
		if p.hash == target.Hash {
			targetAgg = p
			break
		}
	}
	if targetAgg == nil {
		return nil, community.ErrInsufficientData
	}

	var regional []*windowAgg
	for _, p := range participants {
		if p.region == target.Region {
			regional = append(regional, p)
		}
	}

	headline := buildBenchmarkData(targetAgg, participants, regional)
	return &models.AnlageBenchmark{
		Anlage:              *exportInstallation(targetAgg.inst, rng),
		Benchmark:           headline,
		VergleichsJahr:      rng.Bis.Jahr,
		Zeitraum:            win.Typ,
		ZeitraumLabel:       label,
		BenchmarkErweitert:  buildErweitert(targetAgg, participants),
		BenchmarkVerfuegbar: true,
	}, nil
}

func buildBenchmarkData(target *windowAgg, national, regional []*windowAgg) *models.BenchmarkData {
	return &models.BenchmarkData{
		SpezErtragAnlage:       round1(target.spezErtrag()),
		SpezErtragDurchschnitt: round1(populationSpez(national)),
		SpezErtragRegion:       round1(populationSpez(regional)),
		RangGesamt:             rankOf(spezEntries(national), target.hash, false),
		AnzahlAnlagenGesamt:    len(national),
		RangRegion:             rankOf(spezEntries(regional), target.hash, false),
		AnzahlAnlagenRegion:    len(regional),
	}
}

// populationSpez is the capacity-weighted mean yield of the group.
func populationSpez(group []*windowAgg) float64 {
	var ertrag, kwp float64
	for _, a := range group {
		ertrag += a.ertrag
		kwp += a.kwp
	}
	if kwp == 0 {
		return 0
	}
	return ertrag / kwp
}

func spezEntries(group []*windowAgg) []rankEntry {
	entries := make([]rankEntry, 0, len(group))
	for _, a := range group {
		entries = append(entries, rankEntry{hash: a.hash, value: a.spezErtrag()})
	}
	return entries
}

// exportInstallation trims the target's readings to the window and fills
// the derived per-month specific yield, oldest first.
func exportInstallation(inst *models.Installation, rng Range) *models.Installation {
	out := *inst
	out.Monatswerte = nil
	for _, m := range inst.Monatswerte {
		if !rng.Contains(m.PeriodOf()) {
			continue
		}
		if inst.KWp > 0 {
			spez := round1(m.ErtragKWh / inst.KWp)
			m.SpezErtragKWhKWp = &spez
		}
		out.Monatswerte = append(out.Monatswerte, m)
	}
	sort.Slice(out.Monatswerte, func(i, j int) bool {
		return out.Monatswerte[i].PeriodOf().Before(out.Monatswerte[j].PeriodOf())
	})
	return &out
}
