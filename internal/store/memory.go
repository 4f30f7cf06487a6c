package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and small
// single-node deployments; iteration works on a deep copy taken under the
// read lock, so a scan always sees a consistent cut of the data.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*record
}

type record struct {
	inst     models.Installation
	readings map[models.Period]models.MonthlyReading
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*record)}
}

// UpsertInstallation implements Store.
func (s *MemoryStore) UpsertInstallation(_ context.Context, inst *models.Installation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec, ok := s.items[inst.Hash]
	if !ok {
		cp := *inst
		cp.Monatswerte = nil
		cp.ErstelltAm = now
		cp.AktualisiertAm = now
		s.items[inst.Hash] = &record{inst: cp, readings: make(map[models.Period]models.MonthlyReading)}
		return true, nil
	}

	// Hash-bound attributes and mounting geometry stay as registered;
	// only the equipment profile follows the resubmission.
	rec.inst.SpeicherKWh = inst.SpeicherKWh
	rec.inst.HatWaermepumpe = inst.HatWaermepumpe
	rec.inst.HatEAuto = inst.HatEAuto
	rec.inst.HatWallbox = inst.HatWallbox
	rec.inst.HatBalkonkraftwerk = inst.HatBalkonkraftwerk
	rec.inst.HatSonstiges = inst.HatSonstiges
	rec.inst.WallboxKW = inst.WallboxKW
	rec.inst.BKWWp = inst.BKWWp
	rec.inst.SonstigesBezeichnung = inst.SonstigesBezeichnung
	rec.inst.AktualisiertAm = now
	rec.inst.UpdateCount++
	return false, nil
}

// AppendReadings implements Store.
func (s *MemoryStore) AppendReadings(_ context.Context, hash string, readings []models.MonthlyReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[hash]
	if !ok {
		return community.ErrNotFound
	}
	for _, r := range readings {
		r.SpezErtragKWhKWp = nil
		rec.readings[r.PeriodOf()] = r
	}
	rec.inst.AktualisiertAm = time.Now().UTC()
	return nil
}

// GetInstallation implements Store.
func (s *MemoryStore) GetInstallation(_ context.Context, hash string) (*models.Installation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[hash]
	if !ok {
		return nil, community.ErrNotFound
	}
	inst := copyRecord(rec)
	return &inst, nil
}

// DeleteInstallation implements Store.
func (s *MemoryStore) DeleteInstallation(_ context.Context, hash string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[hash]
	if !ok {
		return 0, community.ErrNotFound
	}
	n := len(rec.readings)
	delete(s.items, hash)
	return n, nil
}

// Iterate implements Store. The snapshot is materialized before fn runs,
// so fn may write to the store without deadlocking or corrupting the scan.
func (s *MemoryStore) Iterate(ctx context.Context, fn func(*models.Installation) error) error {
	s.mu.RLock()
	snapshot := make([]models.Installation, 0, len(s.items))
	for _, rec := range s.items {
		snapshot = append(snapshot, copyRecord(rec))
	}
	s.mu.RUnlock()

	// Deterministic scan order keeps derived outputs reproducible.
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Hash < snapshot[j].Hash })

	for i := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}

// CountInstallations implements Store.
func (s *MemoryStore) CountInstallations(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// CountReadings implements Store.
func (s *MemoryStore) CountReadings(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, rec := range s.items {
		total += len(rec.readings)
	}
	return total, nil
}

func copyRecord(rec *record) models.Installation {
	inst := rec.inst
	inst.Monatswerte = make([]models.MonthlyReading, 0, len(rec.readings))
	for _, r := range rec.readings {
		inst.Monatswerte = append(inst.Monatswerte, r)
	}
	sort.Slice(inst.Monatswerte, func(i, j int) bool {
		return inst.Monatswerte[j].PeriodOf().Before(inst.Monatswerte[i].PeriodOf())
	})
	return inst
}
