// Package benchmark computes per-installation comparisons against the
// community population over a selectable time window.
package benchmark

import (
	"fmt"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
)

// Window selectors as they appear on the wire (zeitraum query parameter).
const (
	WindowLetzterMonat     = "letzter_monat"
	WindowLetzte12Monate   = "letzte_12_monate"
	WindowLetztesJahr      = "letztes_vollstaendiges_jahr"
	WindowJahr             = "jahr"
	WindowSeitInstallation = "seit_installation"
)

// Window is a parsed time-window selector. Jahr is only meaningful for the
// "jahr" selector.
type Window struct {
	Typ  string
	Jahr int
}

// ParseWindow validates the raw selector. An empty selector defaults to the
// last 12 months; the "jahr" selector requires a year.
func ParseWindow(typ string, jahr int) (Window, error) {
	if typ == "" {
		typ = WindowLetzte12Monate
	}
	switch typ {
	case WindowLetzterMonat, WindowLetzte12Monate, WindowLetztesJahr, WindowSeitInstallation:
		return Window{Typ: typ}, nil
	case WindowJahr:
		if jahr <= 0 {
			return Window{}, fmt.Errorf("jahr parameter required: %w", community.ErrInvalidWindow)
		}
		return Window{Typ: typ, Jahr: jahr}, nil
	default:
		return Window{}, fmt.Errorf("zeitraum %q: %w", typ, community.ErrInvalidWindow)
	}
}

// Range is an inclusive (jahr, monat) interval.
type Range struct {
	Von models.Period
	Bis models.Period
}

// Contains reports whether p falls inside the range.
func (r Range) Contains(p models.Period) bool {
	return !p.Before(r.Von) && !p.After(r.Bis)
}

// resolveRange turns a window into a concrete period range based on the
// periods actually present in the data, not the wall clock. An empty
// population cannot resolve any window.
func resolveRange(win Window, installationJahr int, periods map[models.Period]struct{}) (Range, string, error) {
	if win.Typ == WindowJahr {
		return Range{
			Von: models.Period{Jahr: win.Jahr, Monat: 1},
			Bis: models.Period{Jahr: win.Jahr, Monat: 12},
		}, fmt.Sprintf("Jahr %d", win.Jahr), nil
	}

	if len(periods) == 0 {
		return Range{}, "", community.ErrInsufficientData
	}
	latest := latestPeriod(periods)

	switch win.Typ {
	case WindowLetzterMonat:
		return Range{Von: latest, Bis: latest},
			fmt.Sprintf("%02d/%d", latest.Monat, latest.Jahr), nil
	case WindowLetzte12Monate:
		return Range{Von: latest.AddMonths(-11), Bis: latest}, "Letzte 12 Monate", nil
	case WindowLetztesJahr:
		jahr, ok := lastCompleteYear(periods)
		if !ok {
			return Range{}, "", fmt.Errorf("no complete year in population: %w", community.ErrInsufficientData)
		}
		return Range{
			Von: models.Period{Jahr: jahr, Monat: 1},
			Bis: models.Period{Jahr: jahr, Monat: 12},
		}, fmt.Sprintf("Jahr %d (vollständig)", jahr), nil
	case WindowSeitInstallation:
		return Range{
			Von: models.Period{Jahr: installationJahr, Monat: 1},
			Bis: latest,
		}, fmt.Sprintf("Seit Installation (%d)", installationJahr), nil
	default:
		return Range{}, "", fmt.Errorf("zeitraum %q: %w", win.Typ, community.ErrInvalidWindow)
	}
}

func latestPeriod(periods map[models.Period]struct{}) models.Period {
	var latest models.Period
	first := true
	for p := range periods {
		if first || latest.Before(p) {
			latest = p
			first = false
		}
	}
	return latest
}

// lastCompleteYear finds the most recent calendar year for which every
// month has at least one reading somewhere in the population.
func lastCompleteYear(periods map[models.Period]struct{}) (int, bool) {
	coverage := make(map[int]uint16)
	for p := range periods {
		if p.Monat >= 1 && p.Monat <= 12 {
			coverage[p.Jahr] |= 1 << (p.Monat - 1)
		}
	}
	const allMonths = 1<<12 - 1
	best, found := 0, false
	for jahr, mask := range coverage {
		if mask == allMonths && (!found || jahr > best) {
			best, found = jahr, true
		}
	}
	return best, found
}
