// Package service orchestrates the store, engines, cache and guards behind
// the HTTP and Kafka surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pvcommunity/internal/benchmark"
	"pvcommunity/internal/cache"
	"pvcommunity/internal/community"
	"pvcommunity/internal/identity"
	"pvcommunity/internal/models"
	"pvcommunity/internal/ratelimit"
	"pvcommunity/internal/stats"
	"pvcommunity/internal/store"
)

// Broadcaster pushes updated community totals to connected live clients.
type Broadcaster interface {
	BroadcastTotals(totals *models.CommunityGesamtwerte)
}

// CommunityService implements the public operations. Cache, limiter,
// guard, tokens and broadcaster are optional; a nil dependency disables
// the feature without changing behavior elsewhere.
type CommunityService struct {
	store      store.Store
	aggregator *stats.Aggregator
	engine     *benchmark.Engine
	cache      *cache.StatsCache
	limiter    *ratelimit.Limiter
	updates    *ratelimit.UpdateGuard
	tokens     *ShareTokenService
	live       Broadcaster
	hashSecret []byte
	logger     *zap.Logger
}

// NewCommunityService builds service.
func NewCommunityService(
	st store.Store,
	aggregator *stats.Aggregator,
	engine *benchmark.Engine,
	statsCache *cache.StatsCache,
	limiter *ratelimit.Limiter,
	updates *ratelimit.UpdateGuard,
	tokens *ShareTokenService,
	live Broadcaster,
	hashSecret []byte,
	logger *zap.Logger,
) *CommunityService {
	return &CommunityService{
		store:      st,
		aggregator: aggregator,
		engine:     engine,
		cache:      statsCache,
		limiter:    limiter,
		updates:    updates,
		tokens:     tokens,
		live:       live,
		hashSecret: hashSecret,
		logger:     logger,
	}
}

// GetStats returns the community-wide statistics, cache-aside.
func (s *CommunityService) GetStats(ctx context.Context) (*models.GesamtStatistik, error) {
	if s.cache != nil {
		var cached models.GesamtStatistik
		hit, err := s.cache.GetGesamtStatistik(ctx, &cached)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	result, err := s.aggregator.GesamtStatistik(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetGesamtStatistik(ctx, result); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// GetTotals returns the lifetime community totals, cache-aside.
func (s *CommunityService) GetTotals(ctx context.Context) (*models.CommunityGesamtwerte, error) {
	if s.cache != nil {
		var cached models.CommunityGesamtwerte
		hit, err := s.cache.GetGesamtwerte(ctx, &cached)
		if err != nil {
			s.logger.Warn("totals cache read failed", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	result, err := s.aggregator.Gesamtwerte(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetGesamtwerte(ctx, result); err != nil {
			s.logger.Warn("totals cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// GetRegionen returns the per-region population summary.
func (s *CommunityService) GetRegionen(ctx context.Context) ([]models.RegionStatistik, error) {
	result, err := s.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	return result.Regionen, nil
}

// GetTrends returns the community growth curves for one of the supported
// period names.
func (s *CommunityService) GetTrends(ctx context.Context, period string) (*models.TrendDaten, error) {
	return s.aggregator.Trends(ctx, period)
}

// GetDegradation returns the yield-by-installation-age analysis.
func (s *CommunityService) GetDegradation(ctx context.Context) (*models.DegradationsAnalyse, error) {
	return s.aggregator.Degradation(ctx)
}

// ValidateShareToken resolves a share token to its bound installation
// hash. A foreign or invalid token maps to ErrNotFound so callers cannot
// enumerate which hashes exist.
func (s *CommunityService) ValidateShareToken(token, hash string) error {
	if s.tokens == nil {
		return fmt.Errorf("share tokens disabled: %w", community.ErrNotFound)
	}
	bound, err := s.tokens.Validate(token)
	if err != nil || bound != hash {
		return fmt.Errorf("share token does not match installation: %w", community.ErrNotFound)
	}
	return nil
}

// GetBenchmark computes the personal comparison for one installation. An
// unknown hash is ErrNotFound. A known installation without comparable
// data in the window returns a payload with BenchmarkVerfuegbar=false,
// not an error.
func (s *CommunityService) GetBenchmark(ctx context.Context, hash, zeitraum string, jahr int) (*models.AnlageBenchmark, error) {
	win, err := benchmark.ParseWindow(zeitraum, jahr)
	if err != nil {
		return nil, err
	}

	target, err := s.store.GetInstallation(ctx, hash)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Compute(ctx, target, win)
	if errors.Is(err, community.ErrInsufficientData) {
		return &models.AnlageBenchmark{
			Anlage:              *target,
			Zeitraum:            win.Typ,
			BenchmarkVerfuegbar: false,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Submit validates and stores one submission, refreshes derived state and
// returns an immediate comparison when enough community data exists.
// clientIP may be empty (trusted producers such as the Kafka ingest).
func (s *CommunityService) Submit(ctx context.Context, req *models.SubmitRequest, clientIP string) (*models.SubmitResponse, error) {
	if s.limiter != nil && clientIP != "" {
		if err := s.limiter.Allow(ctx, clientIP); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := validateSubmission(req, now); err != nil {
		return nil, err
	}

	region, err := s.resolveRegion(req)
	if err != nil {
		return nil, err
	}

	hash := req.AnlageHash
	if hash == "" {
		hash = identity.DeriveHash(req.KWp, req.InstallationJahr, region, s.hashSecret)
	}

	if s.updates != nil {
		if _, err := s.store.GetInstallation(ctx, hash); err == nil {
			if err := s.updates.Allow(ctx, hash); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, community.ErrNotFound) {
			return nil, err
		}
	}

	inst := &models.Installation{
		Hash:                 hash,
		Region:               region,
		KWp:                  req.KWp,
		Ausrichtung:          req.Ausrichtung,
		NeigungGrad:          req.NeigungGrad,
		SpeicherKWh:          req.SpeicherKWh,
		InstallationJahr:     req.InstallationJahr,
		HatWaermepumpe:       req.HatWaermepumpe,
		HatEAuto:             req.HatEAuto,
		HatWallbox:           req.HatWallbox,
		HatBalkonkraftwerk:   req.HatBalkonkraftwerk,
		HatSonstiges:         req.HatSonstiges,
		WallboxKW:            req.WallboxKW,
		BKWWp:                req.BKWWp,
		SonstigesBezeichnung: req.SonstigesBezeichnung,
	}
	created, err := s.store.UpsertInstallation(ctx, inst)
	if err != nil {
		return nil, err
	}
	if err := s.store.AppendReadings(ctx, hash, req.Monatswerte); err != nil {
		return nil, err
	}

	s.refreshDerived(ctx)

	resp := &models.SubmitResponse{
		Success:      true,
		AnlageHash:   hash,
		AnzahlMonate: len(req.Monatswerte),
	}
	if created {
		resp.Message = "Anlage registriert, danke für deinen Beitrag!"
	} else {
		resp.Message = "Daten aktualisiert."
	}

	if s.tokens != nil {
		token, err := s.tokens.Generate(hash)
		if err != nil {
			s.logger.Warn("share token generation failed", zap.Error(err))
		} else {
			resp.ShareToken = token
		}
	}

	win, _ := benchmark.ParseWindow(benchmark.WindowLetzte12Monate, 0)
	if bm, err := s.engine.Compute(ctx, inst, win); err == nil {
		resp.Benchmark = bm.Benchmark
	} else if !errors.Is(err, community.ErrInsufficientData) {
		s.logger.Warn("immediate benchmark failed", zap.String("anlage", hash), zap.Error(err))
	}

	return resp, nil
}

// Delete removes an installation and all its readings. When a share token
// is supplied it must be valid and bound to the same hash.
func (s *CommunityService) Delete(ctx context.Context, hash, shareToken string) (*models.DeleteResponse, error) {
	if shareToken != "" {
		if err := s.ValidateShareToken(shareToken, hash); err != nil {
			return nil, err
		}
	}

	deleted, err := s.store.DeleteInstallation(ctx, hash)
	if err != nil {
		return nil, err
	}

	s.refreshDerived(ctx)

	return &models.DeleteResponse{
		Success:                true,
		Message:                "Anlage und alle Monatswerte gelöscht.",
		AnzahlGeloeschteMonate: deleted,
	}, nil
}

func (s *CommunityService) resolveRegion(req *models.SubmitRequest) (string, error) {
	if req.Region != "" {
		if !identity.ValidRegions[req.Region] {
			return "", fmt.Errorf("region %q: %w", req.Region, community.ErrUnknownRegion)
		}
		return req.Region, nil
	}
	return identity.RegionFromPostal(req.PLZ)
}

// refreshDerived invalidates cached payloads and pushes fresh totals to
// live clients after a write. Failures degrade to stale reads and are not
// surfaced to the submitter.
func (s *CommunityService) refreshDerived(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}
	if s.live != nil {
		totals, err := s.aggregator.Gesamtwerte(ctx)
		if err != nil {
			s.logger.Warn("totals refresh for broadcast failed", zap.Error(err))
			return
		}
		if s.cache != nil {
			if err := s.cache.SetGesamtwerte(ctx, totals); err != nil {
				s.logger.Warn("totals cache write failed", zap.Error(err))
			}
		}
		s.live.BroadcastTotals(totals)
	}
}
