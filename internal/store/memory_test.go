package store

import (
	"context"
	"errors"
	"testing"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
)

func reading(jahr, monat int, ertrag float64) models.MonthlyReading {
	return models.MonthlyReading{Jahr: jahr, Monat: monat, ErtragKWh: ertrag}
}

func TestUpsertInstallationCreateThenUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.UpsertInstallation(ctx, &models.Installation{Hash: "h1", Region: "BY", KWp: 9.8})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first upsert should create")
	}

	speicher := 10.0
	created, err = s.UpsertInstallation(ctx, &models.Installation{
		Hash: "h1", Region: "AT", KWp: 20, InstallationJahr: 2010,
		SpeicherKWh: &speicher, HatWaermepumpe: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second upsert must not create")
	}

	inst, err := s.GetInstallation(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	// The hash-bound attributes keep their registered values.
	if inst.KWp != 9.8 || inst.Region != "BY" || inst.InstallationJahr != 0 {
		t.Fatalf("identity attributes changed: kwp=%v region=%s jahr=%d", inst.KWp, inst.Region, inst.InstallationJahr)
	}
	if inst.SpeicherKWh == nil || *inst.SpeicherKWh != 10 || !inst.HatWaermepumpe {
		t.Fatalf("equipment attributes not updated: %+v", inst)
	}
	if inst.UpdateCount != 1 {
		t.Fatalf("update count = %d, want 1", inst.UpdateCount)
	}
}

func TestAppendReadingsOverwritesPeriod(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.UpsertInstallation(ctx, &models.Installation{Hash: "h1", KWp: 10}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendReadings(ctx, "h1", []models.MonthlyReading{reading(2025, 6, 1200)}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendReadings(ctx, "h1", []models.MonthlyReading{reading(2025, 6, 1250), reading(2025, 7, 1300)}); err != nil {
		t.Fatal(err)
	}

	inst, err := s.GetInstallation(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Monatswerte) != 2 {
		t.Fatalf("got %d readings, want 2", len(inst.Monatswerte))
	}
	// Newest first.
	if inst.Monatswerte[0].Monat != 7 || inst.Monatswerte[1].ErtragKWh != 1250 {
		t.Fatalf("unexpected readings: %+v", inst.Monatswerte)
	}

	n, err := s.CountReadings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("count readings = %d, want 2", n)
	}
}

func TestAppendReadingsUnknownHash(t *testing.T) {
	s := NewMemoryStore()
	err := s.AppendReadings(context.Background(), "nope", []models.MonthlyReading{reading(2025, 6, 100)})
	if !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteInstallation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.UpsertInstallation(ctx, &models.Installation{Hash: "h1", KWp: 10}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendReadings(ctx, "h1", []models.MonthlyReading{reading(2025, 5, 900), reading(2025, 6, 1100)}); err != nil {
		t.Fatal(err)
	}

	n, err := s.DeleteInstallation(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("deleted months = %d, want 2", n)
	}
	if _, err := s.GetInstallation(ctx, "h1"); !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("record should be gone, got %v", err)
	}
	if _, err := s.DeleteInstallation(ctx, "h1"); !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestIterateSnapshotAllowsWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, h := range []string{"a", "b", "c"} {
		if _, err := s.UpsertInstallation(ctx, &models.Installation{Hash: h, KWp: 5}); err != nil {
			t.Fatal(err)
		}
	}

	var seen []string
	err := s.Iterate(ctx, func(inst *models.Installation) error {
		seen = append(seen, inst.Hash)
		// Writing mid-scan must neither deadlock nor extend the snapshot.
		_, err := s.UpsertInstallation(ctx, &models.Installation{Hash: "d" + inst.Hash, KWp: 5})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 {
		t.Fatalf("snapshot grew during iteration: %v", seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Fatalf("scan order not sorted by hash: %v", seen)
		}
	}
}

func TestIterateAbortsOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, h := range []string{"a", "b", "c"} {
		if _, err := s.UpsertInstallation(ctx, &models.Installation{Hash: h, KWp: 5}); err != nil {
			t.Fatal(err)
		}
	}

	boom := errors.New("boom")
	calls := 0
	err := s.Iterate(ctx, func(*models.Installation) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("scan continued after error, %d calls", calls)
	}
}
