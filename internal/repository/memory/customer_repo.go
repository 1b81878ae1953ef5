package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dom/mini-crm/internal/domain"
	"gorm.io/gorm"
)

type customerRepository struct {
	s *store
}

func (r *customerRepository) Create(_ context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextCustID++
	now := r.s.now()
	customer.ID = r.s.nextCustID
	customer.CreatedAt = now
	customer.UpdatedAt = now

	r.s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

// live must be called with r.s.mu held.
func (r *customerRepository) live(id, userID int64) (*domain.Customer, bool) {
	c, ok := r.s.customers[id]
	if !ok || c.UserID != userID || c.DeletedAt.Valid {
		return nil, false
	}
	return c, true
}

func (r *customerRepository) GetByIDAndUser(_ context.Context, id, userID int64) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.live(id, userID)
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return cloneCustomer(c), nil
}

func (r *customerRepository) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(c *domain.Customer) bool { return c.UserID == userID })
	if limit <= 0 {
		return out, nil
	}
	if offset >= len(out) {
		return []*domain.Customer{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *customerRepository) ListFollowUps(_ context.Context, userID int64, day time.Time) ([]*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := day.Format(domain.DateLayout)
	return r.filter(func(c *domain.Customer) bool {
		return c.UserID == userID && c.FollowUpDay() == want
	}), nil
}

func (r *customerRepository) Update(_ context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.live(customer.ID, customer.UserID)
	if !ok {
		return domain.ErrCustomerNotFound
	}
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = r.s.now()
	r.s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (r *customerRepository) SoftDelete(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.live(id, userID)
	if !ok {
		return domain.ErrCustomerNotFound
	}
	c.DeletedAt = gorm.DeletedAt{Time: r.s.now(), Valid: true}
	return nil
}

func (r *customerRepository) TagCounts(_ context.Context, userID int64) ([]domain.TagCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, c := range r.s.customers {
		if c.UserID != userID || c.DeletedAt.Valid {
			continue
		}
		for _, tag := range c.Tags {
			counts[tag]++
		}
	}

	out := make([]domain.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, domain.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

// filter returns live customers matching keep, newest first. Caller holds the
// read lock.
func (r *customerRepository) filter(keep func(*domain.Customer) bool) []*domain.Customer {
	out := []*domain.Customer{}
	for _, c := range r.s.customers {
		if !c.DeletedAt.Valid && keep(c) {
			out = append(out, cloneCustomer(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func cloneCustomer(c *domain.Customer) *domain.Customer {
	out := *c
	if c.Tags != nil {
		out.Tags = append(c.Tags[:0:0], c.Tags...)
	}
	if c.FollowUpDate != nil {
		d := *c.FollowUpDate
		out.FollowUpDate = &d
	}
	return &out
}
