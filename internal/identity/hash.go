// Package identity derives the anonymized installation hash and maps postal
// codes to region codes. Both operations are pure: repeated submissions from
// the same installation must land on the same record.
package identity

import (
	"crypto/hmac"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DeriveHash computes the stable, non-reversible installation identifier as
// a keyed digest (HMAC over SHA3-256) of the canonical attribute string
// "kwp:installationsjahr:region" and the server secret. Rotating the secret
// invalidates every existing correlation; that is an operational hazard,
// not a bug.
func DeriveHash(kwp float64, installationJahr int, region string, secret []byte) string {
	mac := hmac.New(sha3.New256, secret)
	fmt.Fprintf(mac, "%.1f:%d:%s", kwp, installationJahr, strings.ToUpper(strings.TrimSpace(region)))
	return hex.EncodeToString(mac.Sum(nil))
}
