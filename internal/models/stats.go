package models

// RegionStatistik summarizes the population of one region code.
type RegionStatistik struct {
	Region                   string   `json:"region"`
	AnzahlAnlagen            int      `json:"anzahl_anlagen"`
	DurchschnittKWp          float64  `json:"durchschnitt_kwp"`
	DurchschnittSpezErtrag   float64  `json:"durchschnitt_spez_ertrag"`
	DurchschnittAutarkie     *float64 `json:"durchschnitt_autarkie"`
	AnteilMitSpeicher        float64  `json:"anteil_mit_speicher"`
	AnteilMitWaermepumpe     float64  `json:"anteil_mit_waermepumpe"`
	AnteilMitEAuto           float64  `json:"anteil_mit_eauto"`
	AnteilMitWallbox         float64  `json:"anteil_mit_wallbox"`
	AnteilMitBalkonkraftwerk float64  `json:"anteil_mit_balkonkraftwerk"`
}

// MonatsStatistik aggregates one (jahr, monat) across all reporting installations.
type MonatsStatistik struct {
	Jahr                   int     `json:"jahr"`
	Monat                  int     `json:"monat"`
	AnzahlAnlagen          int     `json:"anzahl_anlagen"`
	DurchschnittErtragKWh  float64 `json:"durchschnitt_ertrag_kwh"`
	DurchschnittSpezErtrag float64 `json:"durchschnitt_spez_ertrag"`
	MedianSpezErtrag       float64 `json:"median_spez_ertrag"`
	MinSpezErtrag          float64 `json:"min_spez_ertrag"`
	MaxSpezErtrag          float64 `json:"max_spez_ertrag"`
}

// GesamtStatistik is the population-wide overview served on /api/stats.
// An empty population is anzahl_anlagen == 0 with nil/empty dependent
// fields, which callers can tell apart from a sparse populated state.
type GesamtStatistik struct {
	AnzahlAnlagen             int               `json:"anzahl_anlagen"`
	AnzahlMonatswerte         int               `json:"anzahl_monatswerte"`
	DurchschnittKWp           float64           `json:"durchschnitt_kwp"`
	DurchschnittSpeicherKWh   *float64          `json:"durchschnitt_speicher_kwh"`
	DurchschnittSpezErtragJahr float64          `json:"durchschnitt_spez_ertrag_jahr"`
	Regionen                  []RegionStatistik `json:"regionen"`
	LetzteMonate              []MonatsStatistik `json:"letzte_monate"`
}

// MonatsSumme is one point of the lifetime monthly series.
type MonatsSumme struct {
	Jahr              int     `json:"jahr"`
	Monat             int     `json:"monat"`
	PVErzeugungKWh    float64 `json:"pv_erzeugung_kwh"`
	EigenverbrauchKWh float64 `json:"eigenverbrauch_kwh"`
	EinspeisungKWh    float64 `json:"einspeisung_kwh"`
	AnzahlAnlagen     int     `json:"anzahl_anlagen"`
}

// Aequivalente are illustrative, constant-driven conversions of the
// community totals. They carry no statistical meaning.
type Aequivalente struct {
	Haushalte       int     `json:"haushalte"`
	Baeume          int     `json:"baeume"`
	Erdumrundungen  float64 `json:"erdumrundungen"`
	GasKubikmeter   int     `json:"gas_kubikmeter"`
}

// CommunityGesamtwerte are lifetime cumulative sums across all installations.
type CommunityGesamtwerte struct {
	AnzahlAnlagen     int    `json:"anzahl_anlagen"`
	AnzahlMonateTotal int    `json:"anzahl_monate_total"`
	Stand             string `json:"stand"`

	GesamtKWp         float64 `json:"gesamt_kwp"`
	GesamtSpeicherKWh float64 `json:"gesamt_speicher_kwh"`

	PVErzeugungKWh      float64 `json:"pv_erzeugung_kwh"`
	PVEinspeisungKWh    float64 `json:"pv_einspeisung_kwh"`
	PVEigenverbrauchKWh float64 `json:"pv_eigenverbrauch_kwh"`
	NetzbezugKWh        float64 `json:"netzbezug_kwh"`

	SpeicherAnzahl       int     `json:"speicher_anzahl"`
	SpeicherLadungKWh    float64 `json:"speicher_ladung_kwh"`
	SpeicherEntladungKWh float64 `json:"speicher_entladung_kwh"`

	WPAnzahl            int     `json:"wp_anzahl"`
	WPStromverbrauchKWh float64 `json:"wp_stromverbrauch_kwh"`
	WPWaermeKWh         float64 `json:"wp_waerme_kwh"`

	EAutoAnzahl    int     `json:"eauto_anzahl"`
	WallboxAnzahl  int     `json:"wallbox_anzahl"`
	EAutoKm        float64 `json:"eauto_km"`
	EAutoLadungKWh float64 `json:"eauto_ladung_kwh"`
	EAutoPVKWh     float64 `json:"eauto_pv_kwh"`

	WallboxLadungKWh float64 `json:"wallbox_ladung_kwh"`
	WallboxPVKWh     float64 `json:"wallbox_pv_kwh"`

	BKWAnzahl       int     `json:"bkw_anzahl"`
	BKWErzeugungKWh float64 `json:"bkw_erzeugung_kwh"`

	CO2VermiedenKg float64 `json:"co2_vermieden_kg"`

	MonatlicheSummen []MonatsSumme `json:"monatliche_summen"`
	Aequivalente     Aequivalente  `json:"aequivalente"`
}
