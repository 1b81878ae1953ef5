package service_test

import (
	"testing"

	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/repository"
	"github.com/dom/mini-crm/internal/repository/memory"
	"github.com/dom/mini-crm/internal/service"
	"github.com/dom/mini-crm/internal/testutil"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	services *service.Services
	repos    *repository.Repositories
	clock    *testutil.FakeClock
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := testutil.NewFakeClock(testutil.Epoch)
	repos := memory.NewRepositories(clock.Now)
	m := metrics.New()
	services := service.NewServices(repos, testutil.TestConfig(), clock.Now, zaptest.NewLogger(t), m)

	return &fixture{services: services, repos: repos, clock: clock, metrics: m}
}
