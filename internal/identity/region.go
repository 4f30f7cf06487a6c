package identity

import (
	"fmt"
	"strings"

	"pvcommunity/internal/community"
)

// ValidRegions are the accepted 2-letter codes: the 16 German states plus
// Austria and Switzerland.
var ValidRegions = map[string]bool{
	"BW": true, "BY": true, "BE": true, "BB": true, "HB": true, "HH": true,
	"HE": true, "MV": true, "NI": true, "NW": true, "RP": true, "SL": true,
	"SN": true, "ST": true, "SH": true, "TH": true,
	"AT": true, "CH": true,
}

// plzPrefixRegion maps the leading two digits of a German postal code to a
// state. A few PLZ zones straddle state borders; those resolve to the
// dominant state of the zone, which is good enough for the anonymized
// regional grouping done here.
var plzPrefixRegion = map[string]string{
	"01": "SN", "02": "SN", "03": "BB", "04": "SN", "06": "ST", "07": "TH",
	"08": "SN", "09": "SN",
	"10": "BE", "12": "BE", "13": "BE", "14": "BB", "15": "BB", "16": "BB",
	"17": "MV", "18": "MV", "19": "MV",
	"20": "HH", "21": "NI", "22": "HH", "23": "SH", "24": "SH", "25": "SH",
	"26": "NI", "27": "NI", "28": "HB", "29": "NI",
	"30": "NI", "31": "NI", "32": "NW", "33": "NW", "34": "HE", "35": "HE",
	"36": "HE", "37": "NI", "38": "NI", "39": "ST",
	"40": "NW", "41": "NW", "42": "NW", "44": "NW", "45": "NW", "46": "NW",
	"47": "NW", "48": "NW", "49": "NI",
	"50": "NW", "51": "NW", "52": "NW", "53": "NW", "54": "RP", "55": "RP",
	"56": "RP", "57": "NW", "58": "NW", "59": "NW",
	"60": "HE", "61": "HE", "63": "HE", "64": "HE", "65": "HE", "66": "SL",
	"67": "RP", "68": "BW", "69": "BW",
	"70": "BW", "71": "BW", "72": "BW", "73": "BW", "74": "BW", "75": "BW",
	"76": "BW", "77": "BW", "78": "BW", "79": "BW",
	"80": "BY", "81": "BY", "82": "BY", "83": "BY", "84": "BY", "85": "BY",
	"86": "BY", "87": "BY", "88": "BW", "89": "BW",
	"90": "BY", "91": "BY", "92": "BY", "93": "BY", "94": "BY", "95": "BY",
	"96": "BY", "97": "BY", "98": "TH", "99": "TH",
}

// RegionFromPostal maps a raw postal code to its 2-letter region code.
// Accepted forms: a 5-digit German PLZ, or an Austrian/Swiss code with
// country prefix ("AT-1010", "CH-8000"). Unmappable input yields
// community.ErrUnknownRegion.
func RegionFromPostal(plz string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(plz))
	if p == "" {
		return "", fmt.Errorf("empty postal code: %w", community.ErrUnknownRegion)
	}

	switch {
	case strings.HasPrefix(p, "AT-"), p == "AT":
		return "AT", nil
	case strings.HasPrefix(p, "CH-"), p == "CH":
		return "CH", nil
	}

	if len(p) != 5 || !isDigits(p) {
		return "", fmt.Errorf("postal code %q: %w", plz, community.ErrUnknownRegion)
	}
	region, ok := plzPrefixRegion[p[:2]]
	if !ok {
		return "", fmt.Errorf("postal code %q: %w", plz, community.ErrUnknownRegion)
	}
	return region, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
