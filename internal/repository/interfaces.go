package repository

import (
	"context"
	"time"

	"github.com/dom/mini-crm/internal/domain"
)

// UserRepository lookups never return soft-deleted users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SoftDelete(ctx context.Context, id int64) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	// FindActiveByHash returns the token and its owner when the token has not
	// expired at now and the owner is not soft-deleted. A miss returns
	// domain.ErrRefreshInvalid.
	FindActiveByHash(ctx context.Context, hash string, now time.Time) (*domain.RefreshToken, *domain.User, error)
	ListActiveByUserID(ctx context.Context, userID int64, now time.Time) ([]*domain.RefreshToken, error)
	DeleteByHash(ctx context.Context, hash string) error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CustomerRepository scopes every call by owner.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Customer, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Customer, error)
	ListFollowUps(ctx context.Context, userID int64, day time.Time) ([]*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	SoftDelete(ctx context.Context, id, userID int64) error
	TagCounts(ctx context.Context, userID int64) ([]domain.TagCount, error)
}

type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Customer     CustomerRepository
}
