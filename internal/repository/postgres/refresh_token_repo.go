package postgres

import (
	"context"
	"time"

	"github.com/dom/mini-crm/internal/domain"
	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *refreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return domain.NewStorageError("create refresh token", err)
	}
	return nil
}

func (r *refreshTokenRepository) FindActiveByHash(ctx context.Context, hash string, now time.Time) (*domain.RefreshToken, *domain.User, error) {
	var token domain.RefreshToken
	err := r.db.WithContext(ctx).
		Select("refresh_tokens.*").
		Joins("JOIN users ON users.id = refresh_tokens.user_id AND users.deleted_at IS NULL").
		Where("refresh_tokens.token_hash = ? AND refresh_tokens.expires_at > ?", hash, now).
		First(&token).Error
	if isNotFound(err) {
		return nil, nil, domain.ErrRefreshInvalid
	}
	if err != nil {
		return nil, nil, domain.NewStorageError("find refresh token", err)
	}

	var user domain.User
	err = r.db.WithContext(ctx).First(&user, "id = ?", token.UserID).Error
	if isNotFound(err) {
		return nil, nil, domain.ErrRefreshInvalid
	}
	if err != nil {
		return nil, nil, domain.NewStorageError("load refresh token owner", err)
	}

	return &token, &user, nil
}

func (r *refreshTokenRepository) ListActiveByUserID(ctx context.Context, userID int64, now time.Time) ([]*domain.RefreshToken, error) {
	var tokens []*domain.RefreshToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, domain.NewStorageError("list refresh tokens", err)
	}
	return tokens, nil
}

func (r *refreshTokenRepository) DeleteByHash(ctx context.Context, hash string) error {
	err := r.db.WithContext(ctx).Delete(&domain.RefreshToken{}, "token_hash = ?", hash).Error
	if err != nil {
		return domain.NewStorageError("delete refresh token", err)
	}
	return nil
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).Delete(&domain.RefreshToken{}, "user_id = ?", userID).Error
	if err != nil {
		return domain.NewStorageError("delete user refresh tokens", err)
	}
	return nil
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.RefreshToken{}, "expires_at <= ?", now)
	if result.Error != nil {
		return 0, domain.NewStorageError("delete expired refresh tokens", result.Error)
	}
	return result.RowsAffected, nil
}
