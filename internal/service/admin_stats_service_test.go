package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

func TestAdminStatsServiceCountsAndCaches(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := newTestDB(t)
	fx := seedCatalog(t, db)
	require.NoError(t, db.Create(&models.Quiz{UnitID: fx.unit.ID}).Error)
	require.NoError(t, db.Create(&models.Quiz{UnitID: 999}).Error)

	svc := NewAdminStatsService(repository.NewStatsRepository(db), redisClient, time.Minute, testLogger())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Students)
	require.Equal(t, int64(1), stats.Classes)
	require.Equal(t, int64(1), stats.Subjects)
	require.Equal(t, int64(1), stats.Units)
	require.Equal(t, int64(1), stats.Quizzes)
	require.Equal(t, int64(2), stats.Videos)
	require.Equal(t, int64(1), stats.PDFs)
	require.True(t, mini.Exists(adminStatsCacheKey))

	require.NoError(t, db.Create(&models.Student{Username: "second"}).Error)

	cached, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), cached.Students, "cached counters are served until the ttl expires")

	mini.FastForward(2 * time.Minute)
	fresh, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), fresh.Students)
}

func TestAdminStatsServiceInvalidate(t *testing.T) {
	mini := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := newTestDB(t)
	svc := NewAdminStatsService(repository.NewStatsRepository(db), redisClient, time.Hour, testLogger())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.Classes)
	require.True(t, mini.Exists(adminStatsCacheKey))

	require.NoError(t, db.Create(&models.Class{Name: "Grade 8"}).Error)
	svc.Invalidate(context.Background())
	require.False(t, mini.Exists(adminStatsCacheKey))

	stats, err = svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Classes)

	NewAdminStatsService(repository.NewStatsRepository(db), nil, 0, testLogger()).Invalidate(context.Background())
}

func TestAdminStatsServiceWithoutCache(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminStatsService(repository.NewStatsRepository(db), nil, 0, testLogger())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.Students)
	require.Zero(t, stats.Videos)
}
