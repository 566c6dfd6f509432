package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/observability"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

const adminStatsCacheKey = "admin:stats:v1"

// AdminStatsService produces the platform counters for the admin dashboard.
type AdminStatsService interface {
	GetStats(ctx context.Context) (dto.AdminStatsResponse, error)
	// Invalidate drops cached counters after a catalog or student change.
	Invalidate(ctx context.Context)
}

type adminStatsService struct {
	repo     repository.StatsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdminStatsService builds the stats aggregator. A nil cache disables caching.
func NewAdminStatsService(repo repository.StatsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminStatsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &adminStatsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_stats_service").Logger(),
		now:      time.Now,
	}
}

func (s *adminStatsService) GetStats(ctx context.Context) (dto.AdminStatsResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, adminStatsCacheKey).Result(); err == nil {
			var response dto.AdminStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.StatsCache().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read admin stats cache")
		}
		observability.StatsCache().WithLabelValues("miss").Inc()
	}

	var response dto.AdminStatsResponse
	var resources repository.ResourceTotals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		response.Students, err = s.repo.CountStudents(gctx)
		return err
	})
	g.Go(func() (err error) {
		response.Classes, err = s.repo.CountClasses(gctx)
		return err
	})
	g.Go(func() (err error) {
		response.Subjects, err = s.repo.CountSubjects(gctx)
		return err
	})
	g.Go(func() (err error) {
		response.Units, err = s.repo.CountUnits(gctx)
		return err
	})
	g.Go(func() (err error) {
		response.Quizzes, err = s.repo.CountAttachedQuizzes(gctx)
		return err
	})
	g.Go(func() (err error) {
		resources, err = s.repo.SumResources(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dto.AdminStatsResponse{}, err
	}

	response.Videos = resources.Videos
	response.PDFs = resources.PDFs
	response.GeneratedAt = s.now().UTC()

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, adminStatsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store admin stats cache")
			}
		}
	}

	return response, nil
}

func (s *adminStatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, adminStatsCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate admin stats cache")
	}
}
