// Package memory holds map-backed repositories for tests and for running the
// server without PostgreSQL. Data is lost on restart.
package memory

import (
	"sync"
	"time"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/repository"
)

// store is shared by all three repositories so that refresh-token lookups can
// see user soft deletes.
type store struct {
	mu sync.RWMutex

	users      map[int64]*domain.User
	tokens     map[string]*domain.RefreshToken // keyed by hash
	customers  map[int64]*domain.Customer
	nextUserID int64
	nextCustID int64

	now func() time.Time
}

// NewRepositories returns repositories backed by one in-process store. now
// stamps created/updated/deleted times; nil means time.Now.
func NewRepositories(now func() time.Time) *repository.Repositories {
	if now == nil {
		now = time.Now
	}
	s := &store{
		users:     make(map[int64]*domain.User),
		tokens:    make(map[string]*domain.RefreshToken),
		customers: make(map[int64]*domain.Customer),
		now:       now,
	}
	return &repository.Repositories{
		User:         &userRepository{s: s},
		RefreshToken: &refreshTokenRepository{s: s},
		Customer:     &customerRepository{s: s},
	}
}

// liveUser must be called with s.mu held.
func (s *store) liveUser(id int64) (*domain.User, bool) {
	u, ok := s.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, false
	}
	return u, true
}
