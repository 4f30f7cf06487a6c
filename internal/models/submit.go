package models

// SubmitRequest is the write payload from the dashboard. The hash is
// optional: returning submitters send it to correlate with their existing
// record, first-time submitters leave it empty and get one derived from
// the attributes. PLZ is used for region mapping only and never stored;
// an explicit region code wins over the postal code.
type SubmitRequest struct {
	AnlageHash string `json:"anlage_hash"`
	PLZ        string `json:"plz"`
	Region     string `json:"region"`

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

	Monatswerte []MonthlyReading `json:"monatswerte"`
}
