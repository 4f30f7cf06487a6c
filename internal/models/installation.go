package models

import "time"

// Installation is one anonymized PV system contributing data. The hash is
// derived from submitted attributes plus a server secret and is the only
// correlation key; no field allows recovery of the submitter's identity.
type Installation struct {
	Hash                 string   `json:"anlage_hash"`
	Region               string   `json:"region"`
	KWp                  float64  `json:"kwp"`
	Ausrichtung          string   `json:"ausrichtung"`
	NeigungGrad          int      `json:"neigung_grad"`
	SpeicherKWh          *float64 `json:"speicher_kwh"`
	InstallationJahr     int      `json:"installation_jahr"`
	HatWaermepumpe       bool     `json:"hat_waermepumpe"`
	HatEAuto             bool     `json:"hat_eauto"`
	HatWallbox           bool     `json:"hat_wallbox"`
	HatBalkonkraftwerk   bool     `json:"hat_balkonkraftwerk"`
	HatSonstiges         bool     `json:"hat_sonstiges"`
	WallboxKW            *float64 `json:"wallbox_kw"`
	BKWWp                *float64 `json:"bkw_wp"`
	SonstigesBezeichnung *string  `json:"sonstiges_bezeichnung"`

	ErstelltAm     time.Time `json:"-"`
	AktualisiertAm time.Time `json:"-"`
	UpdateCount    int       `json:"-"`

	// Monatswerte are sorted newest first when loaded via GetInstallation.
	Monatswerte []MonthlyReading `json:"monatswerte"`
}

// HasSpeicher reports whether a storage system with positive capacity is registered.
func (a *Installation) HasSpeicher() bool {
	return a.SpeicherKWh != nil && *a.SpeicherKWh > 0
}

// MonthlyReading holds one month of energy data for one installation.
// At most one reading exists per (installation, jahr, monat); resubmissions
// for the same period overwrite (last write wins). Optional per-component
// metrics are nil when the equipment is absent or the submitter did not
// report them, which is distinct from a reported zero.
type MonthlyReading struct {
	Jahr  int `json:"jahr"`
	Monat int `json:"monat"`

	ErtragKWh            float64  `json:"ertrag_kwh"`
	EinspeisungKWh       *float64 `json:"einspeisung_kwh"`
	NetzbezugKWh         *float64 `json:"netzbezug_kwh"`
	AutarkieProzent      *float64 `json:"autarkie_prozent"`
	EigenverbrauchProzent *float64 `json:"eigenverbrauch_prozent"`

	// Derived on output, never stored.
	SpezErtragKWhKWp *float64 `json:"spez_ertrag_kwh_kwp,omitempty"`

	// Speicher
	SpeicherLadungKWh     *float64 `json:"speicher_ladung_kwh"`
	SpeicherEntladungKWh  *float64 `json:"speicher_entladung_kwh"`
	SpeicherLadungNetzKWh *float64 `json:"speicher_ladung_netz_kwh"`

	// Waermepumpe
	WPStromverbrauchKWh *float64 `json:"wp_stromverbrauch_kwh"`
	WPHeizwaermeKWh     *float64 `json:"wp_heizwaerme_kwh"`
	WPWarmwasserKWh     *float64 `json:"wp_warmwasser_kwh"`

	// E-Auto
	EAutoLadungGesamtKWh *float64 `json:"eauto_ladung_gesamt_kwh"`
	EAutoLadungPVKWh     *float64 `json:"eauto_ladung_pv_kwh"`
	EAutoLadungExternKWh *float64 `json:"eauto_ladung_extern_kwh"`
	EAutoKm              *float64 `json:"eauto_km"`
	EAutoV2HKWh          *float64 `json:"eauto_v2h_kwh"`

	// Wallbox
	WallboxLadungKWh   *float64 `json:"wallbox_ladung_kwh"`
	WallboxLadungPVKWh *float64 `json:"wallbox_ladung_pv_kwh"`
	WallboxLadevorgaenge *int   `json:"wallbox_ladevorgaenge"`

	// Balkonkraftwerk
	BKWErzeugungKWh         *float64 `json:"bkw_erzeugung_kwh"`
	BKWEigenverbrauchKWh    *float64 `json:"bkw_eigenverbrauch_kwh"`
	BKWSpeicherLadungKWh    *float64 `json:"bkw_speicher_ladung_kwh"`
	BKWSpeicherEntladungKWh *float64 `json:"bkw_speicher_entladung_kwh"`

	// Sonstiges
	SonstigesVerbrauchKWh *float64 `json:"sonstiges_verbrauch_kwh"`
}

// Period identifies a (jahr, monat) bucket.
type Period struct {
	Jahr  int
	Monat int
}

// PeriodOf returns the reading's period key.
func (m *MonthlyReading) PeriodOf() Period {
	return Period{Jahr: m.Jahr, Monat: m.Monat}
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	if p.Jahr != q.Jahr {
		return p.Jahr < q.Jahr
	}
	return p.Monat < q.Monat
}

// After reports whether p is strictly later than q.
func (p Period) After(q Period) bool {
	return q.Before(p)
}

// AddMonths returns the period shifted by n months (n may be negative).
func (p Period) AddMonths(n int) Period {
	total := p.Jahr*12 + (p.Monat - 1) + n
	return Period{Jahr: total / 12, Monat: total%12 + 1}
}
