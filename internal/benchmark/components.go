package benchmark

import (
	"math"
	"sort"

	"pvcommunity/internal/models"
)

type rankEntry struct {
	hash  string
	value float64
}

// rankOf returns the 1-based position of hash after sorting entries best
// first. Higher values rank better unless lowerBetter is set; equal values
// order by ascending hash so ranks stay stable across runs. Returns 0 when
// the hash is not among the entries.
func rankOf(entries []rankEntry, hash string, lowerBetter bool) int {
	sorted := make([]rankEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].value != sorted[j].value {
			if lowerBetter {
				return sorted[i].value < sorted[j].value
			}
			return sorted[i].value > sorted[j].value
		}
		return sorted[i].hash < sorted[j].hash
	})
	for i, e := range sorted {
		if e.hash == hash {
			return i + 1
		}
	}
	return 0
}

// kpiFor builds a comparison for one metric. Entries must include the
// target; otherwise the KPI is not applicable and nil is returned.
func kpiFor(entries []rankEntry, targetHash string, lowerBetter bool) *models.KPIVergleich {
	var target *rankEntry
	for i := range entries {
		if entries[i].hash == targetHash {
			target = &entries[i]
			break
		}
	}
	if target == nil {
		return nil
	}
	var sum float64
	for _, e := range entries {
		sum += e.value
	}
	avg := round1(sum / float64(len(entries)))
	rang := rankOf(entries, targetHash, lowerBetter)
	von := len(entries)
	return &models.KPIVergleich{
		Wert:         round1(target.value),
		CommunityAvg: &avg,
		Rang:         &rang,
		Von:          &von,
	}
}

// collect builds rank entries over the group for installations where the
// metric applies. fn returns (value, ok).
func collect(group []*windowAgg, fn func(*windowAgg) (float64, bool)) []rankEntry {
	var entries []rankEntry
	for _, a := range group {
		if v, ok := fn(a); ok {
			entries = append(entries, rankEntry{hash: a.hash, value: v})
		}
	}
	return entries
}

// buildErweitert assembles the per-component comparison blocks. A block is
// present only when the target both registered the equipment and reported
// at least one matching metric inside the window.
func buildErweitert(target *windowAgg, all []*windowAgg) *models.ErweiterteBenchmarkData {
	out := &models.ErweiterteBenchmarkData{
		PV: buildPV(target, all),
	}
	if target.inst.HasSpeicher() && target.hasSpeicher {
		out.Speicher = buildSpeicher(target, all)
	}
	if target.inst.HatWaermepumpe && target.hasWP {
		out.Waermepumpe = buildWaermepumpe(target, all)
	}
	if target.inst.HatEAuto && target.hasEV {
		out.EAuto = buildEAuto(target, all)
	}
	if target.inst.HatWallbox && target.hasWB {
		out.Wallbox = buildWallbox(target, all)
	}
	if target.inst.HatBalkonkraftwerk && target.hasBKW {
		out.Balkonkraftwerk = buildBKW(target, all)
	}
	return out
}

func buildPV(target *windowAgg, all []*windowAgg) models.PVBenchmark {
	spez := kpiFor(spezEntries(all), target.hash, false)
	pv := models.PVBenchmark{}
	if spez != nil {
		pv.SpezErtrag = *spez
	}
	pv.Eigenverbrauch = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		return meanOf(a.eigenverbrauchPct)
	}), target.hash, false)
	pv.Autarkie = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		return meanOf(a.autarkiePct)
	}), target.hash, false)
	return pv
}

func buildSpeicher(target *windowAgg, all []*windowAgg) *models.SpeicherBenchmark {
	b := &models.SpeicherBenchmark{}
	b.Kapazitaet = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.inst.HasSpeicher() {
			return 0, false
		}
		return *a.inst.SpeicherKWh, true
	}), target.hash, false)
	b.Wirkungsgrad = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasSpeicher || a.spLadung <= 0 {
			return 0, false
		}
		return a.spEntladung / a.spLadung * 100, true
	}), target.hash, false)
	b.NetzAnteil = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		return meanOf(a.spNetzanteil)
	}), target.hash, true)
	// Full cycles per year, extrapolated from the window.
	b.ZyklenJahr = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.inst.HasSpeicher() || !a.hasSpeicher || a.spEntladung <= 0 || a.months == 0 {
			return 0, false
		}
		return a.spEntladung / float64(a.months) * 12 / *a.inst.SpeicherKWh, true
	}), target.hash, false)
	return b
}

func buildWaermepumpe(target *windowAgg, all []*windowAgg) *models.WaermepumpeBenchmark {
	b := &models.WaermepumpeBenchmark{}
	b.JAZ = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasWP || a.wpStrom <= 0 {
			return 0, false
		}
		return (a.wpHeiz + a.wpWarmwasser) / a.wpStrom, true
	}), target.hash, false)
	b.Stromverbrauch = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasWP || a.wpStrom <= 0 {
			return 0, false
		}
		return a.wpStrom, true
	}), target.hash, true)
	b.Waermeerzeugung = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasWP || a.wpHeiz+a.wpWarmwasser <= 0 {
			return 0, false
		}
		return a.wpHeiz + a.wpWarmwasser, true
	}), target.hash, false)
	return b
}

func buildEAuto(target *windowAgg, all []*windowAgg) *models.EAutoBenchmark {
	b := &models.EAutoBenchmark{}
	b.LadungGesamt = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasEV || a.evLadung <= 0 {
			return 0, false
		}
		return a.evLadung, true
	}), target.hash, false)
	b.PVAnteil = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasEV || a.evLadung <= 0 {
			return 0, false
		}
		return a.evPV / a.evLadung * 100, true
	}), target.hash, false)
	b.Km = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasEV || a.evKm <= 0 {
			return 0, false
		}
		return a.evKm, true
	}), target.hash, false)
	b.Verbrauch100Km = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasEV || a.evKm <= 0 || a.evLadung <= 0 {
			return 0, false
		}
		return a.evLadung / a.evKm * 100, true
	}), target.hash, true)
	b.V2H = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.evHatV2H {
			return 0, false
		}
		return a.evV2H, true
	}), target.hash, false)
	return b
}

func buildWallbox(target *windowAgg, all []*windowAgg) *models.WallboxBenchmark {
	b := &models.WallboxBenchmark{}
	b.Ladung = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasWB || a.wbLadung <= 0 {
			return 0, false
		}
		return a.wbLadung, true
	}), target.hash, false)
	b.PVAnteil = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasWB || a.wbLadung <= 0 {
			return 0, false
		}
		return a.wbPV / a.wbLadung * 100, true
	}), target.hash, false)
	b.Ladevorgaenge = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasWB || a.wbVorgaenge <= 0 {
			return 0, false
		}
		return float64(a.wbVorgaenge), true
	}), target.hash, false)
	return b
}

func buildBKW(target *windowAgg, all []*windowAgg) *models.BKWBenchmark {
	b := &models.BKWBenchmark{}
	b.Erzeugung = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasBKW || a.bkwErz <= 0 {
			return 0, false
		}
		return a.bkwErz, true
	}), target.hash, false)
	b.SpezErtrag = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasBKW || a.bkwErz <= 0 || a.inst.BKWWp == nil || *a.inst.BKWWp <= 0 {
			return 0, false
		}
		return a.bkwErz / (*a.inst.BKWWp / 1000), true
	}), target.hash, false)
	b.Eigenverbrauch = kpiFor(collect(all, func(a *windowAgg) (float64, bool) {
		if !a.hasBKW || a.bkwErz <= 0 {
			return 0, false
		}
		return a.bkwEigen / a.bkwErz * 100, true
	}), target.hash, false)
	return b
}

func meanOf(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
