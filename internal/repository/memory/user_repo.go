package memory

import (
	"context"

	"github.com/dom/mini-crm/internal/domain"
	"gorm.io/gorm"
)

type userRepository struct {
	s *store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// The unique index in postgres covers soft-deleted rows too.
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return domain.ErrEmailExists
		}
	}

	r.s.nextUserID++
	now := r.s.now()
	user.ID = r.s.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.liveUser(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email && !u.DeletedAt.Valid {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.liveUser(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: r.s.now(), Valid: true}
	return nil
}
