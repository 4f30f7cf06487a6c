package identity

import (
	"errors"
	"testing"

	"pvcommunity/internal/community"
)

func TestDeriveHashDeterministic(t *testing.T) {
	secret := []byte("test-secret")

	a := DeriveHash(9.8, 2022, "BY", secret)
	b := DeriveHash(9.8, 2022, "BY", secret)
	if a != b {
		t.Fatalf("same attributes produced different hashes: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestDeriveHashNormalizesRegion(t *testing.T) {
	secret := []byte("test-secret")

	if DeriveHash(9.8, 2022, "by", secret) != DeriveHash(9.8, 2022, " BY ", secret) {
		t.Fatal("region normalization changed the hash")
	}
}

func TestDeriveHashSensitivity(t *testing.T) {
	secret := []byte("test-secret")
	base := DeriveHash(9.8, 2022, "BY", secret)

	if DeriveHash(9.9, 2022, "BY", secret) == base {
		t.Fatal("kwp change did not change the hash")
	}
	if DeriveHash(9.8, 2023, "BY", secret) == base {
		t.Fatal("year change did not change the hash")
	}
	if DeriveHash(9.8, 2022, "BW", secret) == base {
		t.Fatal("region change did not change the hash")
	}
	if DeriveHash(9.8, 2022, "BY", []byte("other-secret")) == base {
		t.Fatal("secret rotation did not change the hash")
	}
}

func TestRegionFromPostal(t *testing.T) {
	cases := []struct {
		plz    string
		region string
	}{
		{"80331", "BY"},
		{"70173", "BW"},
		{"10115", "BE"},
		{"20095", "HH"},
		{"01067", "SN"},
		{"AT-1010", "AT"},
		{"CH-8001", "CH"},
	}
	for _, tc := range cases {
		got, err := RegionFromPostal(tc.plz)
		if err != nil {
			t.Fatalf("plz %s: unexpected error %v", tc.plz, err)
		}
		if got != tc.region {
			t.Errorf("plz %s: got %s, want %s", tc.plz, got, tc.region)
		}
	}
}

func TestRegionFromPostalRejectsUnknown(t *testing.T) {
	for _, plz := range []string{"", "abc", "1234", "123456", "XX-999"} {
		if _, err := RegionFromPostal(plz); !errors.Is(err, community.ErrUnknownRegion) {
			t.Errorf("plz %q: expected ErrUnknownRegion, got %v", plz, err)
		}
	}
}
