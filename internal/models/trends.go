package models

// TrendPunkt is one month on a trend curve.
type TrendPunkt struct {
	Monat string  `json:"monat"`
	Wert  float64 `json:"wert"`
}

// TrendDaten carries the community growth curves for one period: population
// size, mean capacity and the equipment adoption quotas over time.
type TrendDaten struct {
	Period string                  `json:"period"`
	Trends map[string][]TrendPunkt `json:"trends"`
}

// AlterErtrag is the mean specific yield of one installation-age cohort.
type AlterErtrag struct {
	AlterJahre             int     `json:"alter_jahre"`
	Anzahl                 int     `json:"anzahl"`
	DurchschnittSpezErtrag float64 `json:"durchschnitt_spez_ertrag"`
}

// DegradationsAnalyse compares specific yields across installation ages to
// estimate how much output PV installations lose per year.
type DegradationsAnalyse struct {
	NachAlter                            []AlterErtrag `json:"nach_alter"`
	DurchschnittlicheDegradationProzJahr float64       `json:"durchschnittliche_degradation_prozent_jahr"`
}
