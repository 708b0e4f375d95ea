package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/SergeiKhy/qrlink/internal/config"
	"github.com/SergeiKhy/qrlink/internal/geo"
	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/SergeiKhy/qrlink/internal/repository"
	"github.com/SergeiKhy/qrlink/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// testEnv PostgreSQL и Redis в контейнерах с накатанными миграциями
type testEnv struct {
	db    *repository.PostgresDB
	redis *repository.RedisDB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test requires docker")
	}
	ctx := t.Context()

	dbContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("qrlink"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(dbContainer) })

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(redisContainer) })

	dbHost, err := dbContainer.Host(ctx)
	require.NoError(t, err)
	dbPort, err := dbContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)
	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	dbCfg := config.DBConfig{
		Host:     dbHost,
		Port:     dbPort.Port(),
		User:     "user",
		Password: "password",
		Name:     "qrlink",
	}
	require.NoError(t, repository.Migrate(dbCfg))
	require.NoError(t, repository.Migrate(dbCfg), "повторная миграция должна быть no-op")

	db, err := repository.NewPostgresDB(dbCfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	rdb, err := repository.NewRedisClient(config.RedisConfig{Host: redisHost, Port: redisPort.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return &testEnv{db: db, redis: rdb}
}

func (e *testEnv) countScans(t *testing.T, linkID int64) int {
	t.Helper()
	var n int
	err := e.db.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM scans WHERE link_id = $1", linkID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestIntegration_Repositories(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	links := repository.NewLinkRepository(env.db)
	cache := repository.NewCacheRepository(env.redis)
	scans := repository.NewScanRepository(env.db)

	t.Run("link lifecycle", func(t *testing.T) {
		link := &models.Link{
			Code:    "lifecyc1",
			Type:    models.LinkTypeAppDownload,
			Payload: `{"iosUrl":"https://apps.apple.com/app/1"}`,
			IOSURL:  "https://apps.apple.com/app/1",
		}
		require.NoError(t, links.Create(ctx, link))
		assert.NotZero(t, link.ID)

		got, err := links.GetByCode(ctx, "lifecyc1")
		require.NoError(t, err)
		assert.Equal(t, link.IOSURL, got.IOSURL)
		assert.Empty(t, got.AndroidURL)

		err = links.Create(ctx, &models.Link{Code: "lifecyc1", Type: models.LinkTypeURL, Payload: "https://x.example"})
		assert.ErrorIs(t, err, repository.ErrCodeExists)

		require.NoError(t, links.Delete(ctx, "lifecyc1"))
		_, err = links.GetByCode(ctx, "lifecyc1")
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)
		assert.ErrorIs(t, links.Delete(ctx, "lifecyc1"), repository.ErrLinkNotFound)
	})

	t.Run("cache", func(t *testing.T) {
		_, err := cache.Get(ctx, "cached01")
		assert.ErrorIs(t, err, repository.ErrCacheMiss)

		link := &models.Link{ID: 7, Code: "cached01", Type: models.LinkTypeMessage, Payload: "hi"}
		require.NoError(t, cache.Set(ctx, link, time.Minute))

		got, err := cache.Get(ctx, "cached01")
		require.NoError(t, err)
		assert.Equal(t, "hi", got.Payload)

		require.NoError(t, cache.Delete(ctx, "cached01"))
		_, err = cache.Get(ctx, "cached01")
		assert.ErrorIs(t, err, repository.ErrCacheMiss)
	})

	t.Run("scans are idempotent and cascade", func(t *testing.T) {
		link := &models.Link{Code: "scanned1", Type: models.LinkTypeURL, Payload: "https://example.com"}
		require.NoError(t, links.Create(ctx, link))

		event := &models.ScanEvent{
			EventID:    uuid.NewString(),
			LinkID:     link.ID,
			Code:       link.Code,
			IPAddress:  "127.0.0.1",
			DeviceType: "desktop",
			OS:         "unknown",
			ScannedAt:  time.Now().UTC(),
		}
		require.NoError(t, scans.Record(ctx, event))
		require.NoError(t, scans.Record(ctx, event))
		assert.Equal(t, 1, env.countScans(t, link.ID))

		require.NoError(t, links.Delete(ctx, link.Code))
		assert.Equal(t, 0, env.countScans(t, link.ID))
	})
}

func TestIntegration_ScanFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	logger := zap.NewNop()

	recorder := service.NewScanRecorder(repository.NewScanRepository(env.db), service.ScanRecorderConfig{Workers: 2, Buffer: 100}, logger)
	recorder.Start()

	links := service.NewLinkService(
		repository.NewLinkRepository(env.db),
		repository.NewCacheRepository(env.redis),
		service.LinkServiceConfig{BaseURL: "http://localhost:8080"},
		logger,
	)
	dispatcher := service.NewDispatcher(links, geo.Noop{}, recorder, service.DispatcherConfig{}, logger)

	created, err := links.CreateLink(ctx, &models.CreateLinkInput{
		Type:  models.LinkTypeVCard,
		VCard: &models.VCard{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		resp, err := dispatcher.Resolve(ctx, service.ResolveRequest{Code: created.Link.Code, UserAgent: "curl/8.0"})
		require.NoError(t, err)
		assert.Equal(t, "Jane_Doe.vcf", resp.Filename)
	}

	require.NoError(t, recorder.Stop(ctx))
	assert.Equal(t, 3, env.countScans(t, created.Link.ID))
}
