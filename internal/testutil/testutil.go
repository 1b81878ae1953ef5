package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/mini-crm/internal/api"
	"github.com/dom/mini-crm/internal/config"
	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/repository"
	"github.com/dom/mini-crm/internal/repository/memory"
	repoPostgres "github.com/dom/mini-crm/internal/repository/postgres"
	"github.com/dom/mini-crm/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a PostgreSQL container and applies the goose migrations.
// It skips the test under -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("test_minicrm"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(testDB.Cleanup)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	testDB.DSN = dsn

	db, err := repoPostgres.NewConnection(ctx, dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	testDB.DB = db

	return testDB
}

// Cleanup closes the pool and terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.DB != nil {
		if sqlDB, err := tdb.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{"customers", "refresh_tokens", "users"}
	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		Environment:          "test",
		LogLevel:             "debug",
		AllowedOrigins:       []string{"http://localhost:5173"},
		StorageDriver:        "memory",
		JWTSecret:            "test-jwt-secret-key-for-testing-only",
		AppName:              "MiniCRM",
		AppURL:               "http://localhost",
		AccessTokenTTL:       time.Hour,
		TokenRefreshWindow:   5 * time.Minute,
		RefreshTokenTTL:      30 * 24 * time.Hour,
		RefreshSweepInterval: time.Hour,
		DefaultCountryCode:   "90",
	}
}

// TestServer holds all components for end-to-end HTTP testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
	Clock    *FakeClock
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// NewTestServer builds the full router over in-memory storage and a fake
// clock starting at Epoch.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	clock := NewFakeClock(Epoch)
	return newTestServer(t, memory.NewRepositories(clock.Now), clock)
}

// NewPostgresTestServer is NewTestServer backed by a PostgreSQL container.
func NewPostgresTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	return newTestServer(t, repoPostgres.NewRepositories(testDB.DB), NewFakeClock(time.Now().UTC().Truncate(time.Second)))
}

func newTestServer(t *testing.T, repos *repository.Repositories, clock *FakeClock) *TestServer {
	cfg := TestConfig()
	log := zaptest.NewLogger(t)
	m := metrics.New()

	services := service.NewServices(repos, cfg, clock.Now, log, m)
	router := api.NewRouter(services, cfg, log, m)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Config:   cfg,
		Clock:    clock,
		Metrics:  m,
		Log:      log,
	}
}

// URL returns the full URL for a path
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
