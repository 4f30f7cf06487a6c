package service

import (
	"fmt"
	"time"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
)

// Plausibility bounds. A monthly specific yield above the cap exceeds what
// any rooftop system in central Europe produces and marks a unit mixup
// (Wh vs kWh) or a fabricated value.
const (
	maxKWp               = 1000
	maxSpeicherKWh       = 500
	maxSpezMonatKWhProKWp = 180
	minInstallationJahr  = 1990
)

var validAusrichtungen = map[string]bool{
	"sued": true, "suedost": true, "suedwest": true,
	"ost": true, "west": true, "ost-west": true, "nord": true,
}

// validateSubmission checks attributes and readings. now bounds the
// accepted periods: months after the current one are rejected.
func validateSubmission(req *models.SubmitRequest, now time.Time) error {
	if req.KWp <= 0 || req.KWp > maxKWp {
		return fmt.Errorf("kwp %.1f out of range: %w", req.KWp, community.ErrValidation)
	}
	if req.InstallationJahr < minInstallationJahr || req.InstallationJahr > now.Year() {
		return fmt.Errorf("installation_jahr %d out of range: %w", req.InstallationJahr, community.ErrValidation)
	}
	if req.Ausrichtung != "" && !validAusrichtungen[req.Ausrichtung] {
		return fmt.Errorf("ausrichtung %q unknown: %w", req.Ausrichtung, community.ErrValidation)
	}
	if req.NeigungGrad < 0 || req.NeigungGrad > 90 {
		return fmt.Errorf("neigung_grad %d out of range: %w", req.NeigungGrad, community.ErrValidation)
	}
	if req.SpeicherKWh != nil && (*req.SpeicherKWh < 0 || *req.SpeicherKWh > maxSpeicherKWh) {
		return fmt.Errorf("speicher_kwh out of range: %w", community.ErrValidation)
	}
	if len(req.Monatswerte) == 0 {
		return fmt.Errorf("monatswerte empty: %w", community.ErrValidation)
	}

	current := models.Period{Jahr: now.Year(), Monat: int(now.Month())}
	seen := make(map[models.Period]bool, len(req.Monatswerte))
	for i := range req.Monatswerte {
		m := &req.Monatswerte[i]
		p := m.PeriodOf()
		if m.Monat < 1 || m.Monat > 12 {
			return fmt.Errorf("monat %d invalid: %w", m.Monat, community.ErrValidation)
		}
		if m.Jahr < req.InstallationJahr || p.After(current) {
			return fmt.Errorf("periode %d-%02d outside plausible range: %w", m.Jahr, m.Monat, community.ErrValidation)
		}
		if seen[p] {
			return fmt.Errorf("periode %d-%02d duplicated: %w", m.Jahr, m.Monat, community.ErrValidation)
		}
		seen[p] = true
		if m.ErtragKWh < 0 || m.ErtragKWh > maxSpezMonatKWhProKWp*req.KWp {
			return fmt.Errorf("ertrag_kwh %.0f for %d-%02d implausible: %w", m.ErtragKWh, m.Jahr, m.Monat, community.ErrValidation)
		}
		if err := validateOptionalMetrics(m); err != nil {
			return err
		}
	}
	return nil
}

func validateOptionalMetrics(m *models.MonthlyReading) error {
	for name, v := range map[string]*float64{
		"einspeisung_kwh":          m.EinspeisungKWh,
		"netzbezug_kwh":            m.NetzbezugKWh,
		"speicher_ladung_kwh":      m.SpeicherLadungKWh,
		"speicher_entladung_kwh":   m.SpeicherEntladungKWh,
		"speicher_ladung_netz_kwh": m.SpeicherLadungNetzKWh,
		"wp_stromverbrauch_kwh":    m.WPStromverbrauchKWh,
		"wp_heizwaerme_kwh":        m.WPHeizwaermeKWh,
		"wp_warmwasser_kwh":        m.WPWarmwasserKWh,
		"eauto_ladung_gesamt_kwh":  m.EAutoLadungGesamtKWh,
		"eauto_ladung_pv_kwh":      m.EAutoLadungPVKWh,
		"eauto_ladung_extern_kwh":  m.EAutoLadungExternKWh,
		"eauto_km":                 m.EAutoKm,
		"eauto_v2h_kwh":            m.EAutoV2HKWh,
		"wallbox_ladung_kwh":       m.WallboxLadungKWh,
		"wallbox_ladung_pv_kwh":    m.WallboxLadungPVKWh,
		"bkw_erzeugung_kwh":        m.BKWErzeugungKWh,
		"bkw_eigenverbrauch_kwh":   m.BKWEigenverbrauchKWh,
		"sonstiges_verbrauch_kwh":  m.SonstigesVerbrauchKWh,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s negative: %w", name, community.ErrValidation)
		}
	}
	for name, v := range map[string]*float64{
		"autarkie_prozent":       m.AutarkieProzent,
		"eigenverbrauch_prozent": m.EigenverbrauchProzent,
	} {
		if v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("%s out of range: %w", name, community.ErrValidation)
		}
	}
	if m.WallboxLadevorgaenge != nil && *m.WallboxLadevorgaenge < 0 {
		return fmt.Errorf("wallbox_ladevorgaenge negative: %w", community.ErrValidation)
	}
	return nil
}
