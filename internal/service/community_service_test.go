package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"pvcommunity/internal/benchmark"
	"pvcommunity/internal/community"
	"pvcommunity/internal/identity"
	"pvcommunity/internal/models"
	"pvcommunity/internal/stats"
	"pvcommunity/internal/store"
)

type fakeBroadcaster struct {
	calls  int
	totals *models.CommunityGesamtwerte
}

func (f *fakeBroadcaster) BroadcastTotals(totals *models.CommunityGesamtwerte) {
	f.calls++
	f.totals = totals
}

func newTestService(s *store.MemoryStore, live Broadcaster) *CommunityService {
	agg := stats.NewAggregator(s)
	engine := benchmark.NewEngine(s)
	tokens := NewShareTokenService("share-secret", 0)
	return NewCommunityService(s, agg, engine, nil, nil, nil, tokens, live, []byte("hash-secret"), zap.NewNop())
}

func submitRequest() *models.SubmitRequest {
	return &models.SubmitRequest{
		PLZ:              "80331",
		KWp:              9.8,
		Ausrichtung:      "sued",
		NeigungGrad:      30,
		InstallationJahr: 2023,
		Monatswerte: []models.MonthlyReading{
			{Jahr: 2025, Monat: 5, ErtragKWh: 1100},
			{Jahr: 2025, Monat: 6, ErtragKWh: 1200},
		},
	}
}

func TestSubmitCreatesInstallation(t *testing.T) {
	s := store.NewMemoryStore()
	live := &fakeBroadcaster{}
	svc := newTestService(s, live)

	resp, err := svc.Submit(context.Background(), submitRequest(), "203.0.113.7")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.AnzahlMonate != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	want := identity.DeriveHash(9.8, 2023, "BY", []byte("hash-secret"))
	if resp.AnlageHash != want {
		t.Fatalf("hash = %s, want %s", resp.AnlageHash, want)
	}

	inst, err := s.GetInstallation(context.Background(), resp.AnlageHash)
	if err != nil {
		t.Fatal(err)
	}
	if inst.Region != "BY" || len(inst.Monatswerte) != 2 {
		t.Fatalf("stored record wrong: %+v", inst)
	}

	if live.calls != 1 || live.totals == nil || live.totals.AnzahlAnlagen != 1 {
		t.Fatalf("broadcast missing or stale: %d calls", live.calls)
	}

	// Single-installation population still yields an immediate comparison.
	if resp.Benchmark == nil || resp.Benchmark.RangGesamt != 1 || resp.Benchmark.AnzahlAnlagenGesamt != 1 {
		t.Fatalf("immediate benchmark wrong: %+v", resp.Benchmark)
	}
}

func TestSubmitIsIdempotentPerAttributes(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newTestService(s, nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submitRequest(), "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Submit(ctx, submitRequest(), "")
	if err != nil {
		t.Fatal(err)
	}
	if first.AnlageHash != second.AnlageHash {
		t.Fatal("same attributes must correlate to one record")
	}

	n, err := s.CountInstallations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("installations = %d, want 1", n)
	}
}

func TestSubmitUpdateKeepsIdentityAttributes(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newTestService(s, nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submitRequest(), "")
	if err != nil {
		t.Fatal(err)
	}

	// Resubmitting under the known hash with conflicting attributes must
	// not move the record to a different capacity or region.
	req := submitRequest()
	req.AnlageHash = first.AnlageHash
	req.KWp = 20
	req.Region = "AT"
	req.HatWaermepumpe = true
	if _, err := svc.Submit(ctx, req, ""); err != nil {
		t.Fatal(err)
	}

	inst, err := s.GetInstallation(ctx, first.AnlageHash)
	if err != nil {
		t.Fatal(err)
	}
	if inst.KWp != 9.8 || inst.Region != "BY" {
		t.Fatalf("identity attributes drifted: kwp=%v region=%s", inst.KWp, inst.Region)
	}
	if !inst.HatWaermepumpe {
		t.Fatal("equipment profile should follow the update")
	}
}

func TestSubmitShareTokenRoundTrip(t *testing.T) {
	svc := newTestService(store.NewMemoryStore(), nil)

	resp, err := svc.Submit(context.Background(), submitRequest(), "")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ShareToken == "" {
		t.Fatal("share token missing")
	}
	hash, err := svc.tokens.Validate(resp.ShareToken)
	if err != nil {
		t.Fatal(err)
	}
	if hash != resp.AnlageHash {
		t.Fatalf("token bound to %s, want %s", hash, resp.AnlageHash)
	}
}

func TestSubmitRejectsImplausibleYield(t *testing.T) {
	svc := newTestService(store.NewMemoryStore(), nil)

	req := submitRequest()
	// 9.8 kWp cannot produce 2000 kWh in a month.
	req.Monatswerte = []models.MonthlyReading{{Jahr: 2025, Monat: 6, ErtragKWh: 2000}}
	if _, err := svc.Submit(context.Background(), req, ""); !errors.Is(err, community.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSubmitRejectsFuturePeriods(t *testing.T) {
	svc := newTestService(store.NewMemoryStore(), nil)

	req := submitRequest()
	req.Monatswerte = []models.MonthlyReading{{Jahr: 2100, Monat: 1, ErtragKWh: 100}}
	if _, err := svc.Submit(context.Background(), req, ""); !errors.Is(err, community.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSubmitRejectsDuplicatePeriods(t *testing.T) {
	svc := newTestService(store.NewMemoryStore(), nil)

	req := submitRequest()
	req.Monatswerte = []models.MonthlyReading{
		{Jahr: 2025, Monat: 6, ErtragKWh: 1000},
		{Jahr: 2025, Monat: 6, ErtragKWh: 1100},
	}
	if _, err := svc.Submit(context.Background(), req, ""); !errors.Is(err, community.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSubmitRejectsUnknownPostal(t *testing.T) {
	svc := newTestService(store.NewMemoryStore(), nil)

	req := submitRequest()
	req.PLZ = "00000"
	if _, err := svc.Submit(context.Background(), req, ""); !errors.Is(err, community.ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}
}

func TestSubmitExplicitRegionWins(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newTestService(s, nil)

	req := submitRequest()
	req.Region = "AT"
	req.PLZ = "80331"
	resp, err := svc.Submit(context.Background(), req, "")
	if err != nil {
		t.Fatal(err)
	}
	inst, err := s.GetInstallation(context.Background(), resp.AnlageHash)
	if err != nil {
		t.Fatal(err)
	}
	if inst.Region != "AT" {
		t.Fatalf("region = %s, want AT", inst.Region)
	}
}

func TestGetBenchmarkUnknownHash(t *testing.T) {
	svc := newTestService(store.NewMemoryStore(), nil)

	_, err := svc.GetBenchmark(context.Background(), "missing", "", 0)
	if !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBenchmarkInvalidWindow(t *testing.T) {
	svc := newTestService(store.NewMemoryStore(), nil)

	_, err := svc.GetBenchmark(context.Background(), "any", "quartal", 0)
	if !errors.Is(err, community.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestGetBenchmarkInsufficientDataIsNotAnError(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newTestService(s, nil)
	ctx := context.Background()

	// Known installation, no readings anywhere.
	if _, err := s.UpsertInstallation(ctx, &models.Installation{Hash: "h1", Region: "BY", KWp: 10, InstallationJahr: 2023}); err != nil {
		t.Fatal(err)
	}

	bm, err := svc.GetBenchmark(ctx, "h1", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if bm.BenchmarkVerfuegbar {
		t.Fatal("benchmark must be flagged unavailable")
	}
	if bm.Benchmark != nil || bm.BenchmarkErweitert != nil {
		t.Fatal("comparison blocks must be absent")
	}
	if bm.Anlage.Hash != "h1" {
		t.Fatalf("payload anlage = %s, want h1", bm.Anlage.Hash)
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	s := store.NewMemoryStore()
	live := &fakeBroadcaster{}
	svc := newTestService(s, live)
	ctx := context.Background()

	resp, err := svc.Submit(ctx, submitRequest(), "")
	if err != nil {
		t.Fatal(err)
	}
	live.calls = 0

	del, err := svc.Delete(ctx, resp.AnlageHash, resp.ShareToken)
	if err != nil {
		t.Fatal(err)
	}
	if del.AnzahlGeloeschteMonate != 2 {
		t.Fatalf("deleted months = %d, want 2", del.AnzahlGeloeschteMonate)
	}
	if _, err := s.GetInstallation(ctx, resp.AnlageHash); !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("record should be gone, got %v", err)
	}
	if live.calls != 1 {
		t.Fatalf("delete must broadcast, got %d calls", live.calls)
	}
}

func TestDeleteRejectsForeignShareToken(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newTestService(s, nil)
	ctx := context.Background()

	resp, err := svc.Submit(ctx, submitRequest(), "")
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := svc.tokens.Generate("someone-else")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Delete(ctx, resp.AnlageHash, foreign); !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if _, err := s.GetInstallation(ctx, resp.AnlageHash); err != nil {
		t.Fatalf("record must survive a rejected delete: %v", err)
	}
}

func TestGetStatsAndTotalsWithoutCache(t *testing.T) {
	s := store.NewMemoryStore()
	svc := newTestService(s, nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitRequest(), ""); err != nil {
		t.Fatal(err)
	}

	gs, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if gs.AnzahlAnlagen != 1 || gs.AnzahlMonatswerte != 2 {
		t.Fatalf("stats wrong: %+v", gs)
	}

	totals, err := svc.GetTotals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if totals.PVErzeugungKWh != 2300 {
		t.Fatalf("pv_erzeugung_kwh = %v, want 2300", totals.PVErzeugungKWh)
	}

	regionen, err := svc.GetRegionen(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(regionen) != 1 || regionen[0].Region != "BY" {
		t.Fatalf("regionen wrong: %+v", regionen)
	}
}
