package postgres

import (
	"context"
	"time"

	"github.com/dom/mini-crm/internal/domain"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *customerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return domain.NewStorageError("create customer", err)
	}
	return nil
}

func (r *customerRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ? AND user_id = ?", id, userID).Error
	if isNotFound(err) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("get customer", err)
	}
	return &customer, nil
}

func (r *customerRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Customer, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var customers []*domain.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, domain.NewStorageError("list customers", err)
	}
	return customers, nil
}

func (r *customerRepository) ListFollowUps(ctx context.Context, userID int64, day time.Time) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND follow_up_date = ?", userID, day.Format(domain.DateLayout)).
		Order("created_at DESC, id DESC").
		Find(&customers).Error
	if err != nil {
		return nil, domain.NewStorageError("list follow-ups", err)
	}
	return customers, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	result := r.db.WithContext(ctx).
		Model(customer).
		Where("user_id = ?", customer.UserID).
		Select("name", "phone", "tags", "notes", "follow_up_date", "updated_at").
		Updates(customer)
	if result.Error != nil {
		return domain.NewStorageError("update customer", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) SoftDelete(ctx context.Context, id, userID int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Customer{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return domain.NewStorageError("delete customer", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

const tagCountsQuery = `
	SELECT tag, COUNT(*) AS count
	FROM customers, jsonb_array_elements_text(customers.tags) AS tag
	WHERE customers.user_id = ?
	  AND customers.deleted_at IS NULL
	  AND jsonb_typeof(customers.tags) = 'array'
	GROUP BY tag
	ORDER BY count DESC, tag ASC
`

func (r *customerRepository) TagCounts(ctx context.Context, userID int64) ([]domain.TagCount, error) {
	var counts []domain.TagCount
	if err := r.db.WithContext(ctx).Raw(tagCountsQuery, userID).Scan(&counts).Error; err != nil {
		return nil, domain.NewStorageError("count tags", err)
	}
	return counts, nil
}
