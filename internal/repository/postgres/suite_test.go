package postgres_test

import (
	"testing"

	"github.com/dom/mini-crm/internal/repository"
	"github.com/dom/mini-crm/internal/repository/postgres"
	"github.com/dom/mini-crm/internal/testutil"
	"github.com/stretchr/testify/suite"
)

// repositorySuite shares one PostgreSQL container across the repository
// tests and truncates every table before each test.
type repositorySuite struct {
	suite.Suite

	db        *testutil.TestDB
	users     repository.UserRepository
	tokens    repository.RefreshTokenRepository
	customers repository.CustomerRepository
}

func TestRepositories(t *testing.T) {
	suite.Run(t, new(repositorySuite))
}

func (s *repositorySuite) SetupSuite() {
	s.db = testutil.NewTestDB(s.T())

	repos := postgres.NewRepositories(s.db.DB)
	s.users = repos.User
	s.tokens = repos.RefreshToken
	s.customers = repos.Customer
}

func (s *repositorySuite) SetupTest() {
	s.db.Truncate(s.T())
}
