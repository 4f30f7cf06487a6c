package models

// KPIVergleich compares one metric of the target installation against the
// community over the same window. Rang is 1-based; Von is the size of the
// compared population.
type KPIVergleich struct {
	Wert         float64  `json:"wert"`
	CommunityAvg *float64 `json:"community_avg"`
	Rang         *int     `json:"rang"`
	Von          *int     `json:"von"`
}

// BenchmarkData is the headline comparison (specific yield and ranks).
type BenchmarkData struct {
	SpezErtragAnlage        float64 `json:"spez_ertrag_anlage"`
	SpezErtragDurchschnitt  float64 `json:"spez_ertrag_durchschnitt"`
	SpezErtragRegion        float64 `json:"spez_ertrag_region"`
	RangGesamt              int     `json:"rang_gesamt"`
	AnzahlAnlagenGesamt     int     `json:"anzahl_anlagen_gesamt"`
	RangRegion              int     `json:"rang_region"`
	AnzahlAnlagenRegion     int     `json:"anzahl_anlagen_region"`
}

// PVBenchmark always carries the specific yield; the percentage KPIs are
// present only when the installation reported them in the window.
type PVBenchmark struct {
	SpezErtrag     KPIVergleich  `json:"spez_ertrag"`
	Eigenverbrauch *KPIVergleich `json:"eigenverbrauch"`
	Autarkie       *KPIVergleich `json:"autarkie"`
}

// SpeicherBenchmark compares storage KPIs.
type SpeicherBenchmark struct {
	Kapazitaet   *KPIVergleich `json:"kapazitaet"`
	ZyklenJahr   *KPIVergleich `json:"zyklen_jahr"`
	Nutzungsgrad *KPIVergleich `json:"nutzungsgrad"`
	Wirkungsgrad *KPIVergleich `json:"wirkungsgrad"`
	NetzAnteil   *KPIVergleich `json:"netz_anteil"`
}

// WaermepumpeBenchmark compares heat pump KPIs.
type WaermepumpeBenchmark struct {
	JAZ             *KPIVergleich `json:"jaz"`
	Stromverbrauch  *KPIVergleich `json:"stromverbrauch"`
	Waermeerzeugung *KPIVergleich `json:"waermeerzeugung"`
	PVAnteil        *KPIVergleich `json:"pv_anteil"`
}

// EAutoBenchmark compares EV KPIs.
type EAutoBenchmark struct {
	LadungGesamt    *KPIVergleich `json:"ladung_gesamt"`
	PVAnteil        *KPIVergleich `json:"pv_anteil"`
	Km              *KPIVergleich `json:"km"`
	Verbrauch100Km  *KPIVergleich `json:"verbrauch_100km"`
	V2H             *KPIVergleich `json:"v2h"`
}

// WallboxBenchmark compares wallbox KPIs.
type WallboxBenchmark struct {
	Ladung        *KPIVergleich `json:"ladung"`
	PVAnteil      *KPIVergleich `json:"pv_anteil"`
	Ladevorgaenge *KPIVergleich `json:"ladevorgaenge"`
}

// BKWBenchmark compares balcony PV KPIs.
type BKWBenchmark struct {
	Erzeugung      *KPIVergleich `json:"erzeugung"`
	SpezErtrag     *KPIVergleich `json:"spez_ertrag"`
	Eigenverbrauch *KPIVergleich `json:"eigenverbrauch"`
}

// ErweiterteBenchmarkData groups per-component comparisons. A nil component
// means "not applicable" (equipment absent or no metric in the window) and
// is structurally distinct from a zero value.
type ErweiterteBenchmarkData struct {
	PV              PVBenchmark           `json:"pv"`
	Speicher        *SpeicherBenchmark    `json:"speicher"`
	Waermepumpe     *WaermepumpeBenchmark `json:"waermepumpe"`
	EAuto           *EAutoBenchmark       `json:"eauto"`
	Wallbox         *WallboxBenchmark     `json:"wallbox"`
	Balkonkraftwerk *BKWBenchmark         `json:"balkonkraftwerk"`
}

// AnlageBenchmark is the personalized payload for one installation. When
// BenchmarkVerfuegbar is false the window yielded no comparable population
// and the Benchmark/BenchmarkErweitert blocks are absent; the installation
// itself was still found (unknown hashes are a 404, not this).
type AnlageBenchmark struct {
	Anlage              Installation             `json:"anlage"`
	Benchmark           *BenchmarkData           `json:"benchmark,omitempty"`
	VergleichsJahr      int                      `json:"vergleichs_jahr"`
	Zeitraum            string                   `json:"zeitraum"`
	ZeitraumLabel       string                   `json:"zeitraum_label"`
	BenchmarkErweitert  *ErweiterteBenchmarkData `json:"benchmark_erweitert,omitempty"`
	BenchmarkVerfuegbar bool                     `json:"benchmark_verfuegbar"`
}

// SubmitResponse acknowledges a submission and returns the correlation hash
// plus an immediate comparison when enough community data exists.
type SubmitResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	AnlageHash   string         `json:"anlage_hash"`
	AnzahlMonate int            `json:"anzahl_monate"`
	ShareToken   string         `json:"share_token,omitempty"`
	Benchmark    *BenchmarkData `json:"benchmark"`
}

// DeleteResponse acknowledges a full deletion.
type DeleteResponse struct {
	Success                bool   `json:"success"`
	Message                string `json:"message"`
	AnzahlGeloeschteMonate int    `json:"anzahl_geloeschte_monate"`
}
