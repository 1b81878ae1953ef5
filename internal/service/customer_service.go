package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dom/mini-crm/internal/auth"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/repository"
	"gorm.io/datatypes"
)

const defaultPopularTags = 10

type CustomerService struct {
	repo repository.CustomerRepository
	now  auth.Clock
}

func NewCustomerService(repo repository.CustomerRepository, now auth.Clock) *CustomerService {
	if now == nil {
		now = time.Now
	}
	return &CustomerService{repo: repo, now: now}
}

// CustomerInput carries a create or update request. On update, nil optional
// fields keep their stored value; an empty FollowUpDate clears it.
type CustomerInput struct {
	Name         string `validate:"required"`
	Phone        string `validate:"required,phone"`
	Tags         *[]string
	Notes        *string
	FollowUpDate *string `validate:"omitempty,datetime=2006-01-02"`
}

func (s *CustomerService) Create(ctx context.Context, userID int64, input CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{UserID: userID, Tags: []string{}}
	if err := applyInput(customer, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, userID, id int64) (*domain.Customer, error) {
	return s.repo.GetByIDAndUser(ctx, id, userID)
}

func (s *CustomerService) List(ctx context.Context, userID int64, limit, offset int) ([]*domain.Customer, error) {
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *CustomerService) Update(ctx context.Context, userID, id int64, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.repo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := applyInput(customer, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.SoftDelete(ctx, id, userID)
}

// FollowUps lists customers due on date (YYYY-MM-DD, default today in UTC)
// and returns the day that was used.
func (s *CustomerService) FollowUps(ctx context.Context, userID int64, date string) ([]*domain.Customer, string, error) {
	day := s.now().UTC()
	if date != "" {
		parsed, err := time.Parse(domain.DateLayout, date)
		if err != nil {
			return nil, "", domain.NewValidationError("Invalid date format (expected YYYY-MM-DD)")
		}
		day = parsed
	}

	customers, err := s.repo.ListFollowUps(ctx, userID, day)
	if err != nil {
		return nil, "", err
	}
	return customers, day.Format(domain.DateLayout), nil
}

// Tags returns the owner's distinct tags in alphabetical order.
func (s *CustomerService) Tags(ctx context.Context, userID int64) ([]string, error) {
	counts, err := s.repo.TagCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(counts))
	for _, c := range counts {
		tags = append(tags, c.Tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// PopularTags returns at most limit tags, most used first. A non-positive
// limit means 10.
func (s *CustomerService) PopularTags(ctx context.Context, userID int64, limit int) ([]domain.TagCount, error) {
	if limit <= 0 {
		limit = defaultPopularTags
	}
	counts, err := s.repo.TagCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []domain.TagCount{}
	}
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

func applyInput(c *domain.Customer, input CustomerInput) error {
	if err := customerMessages.check(input); err != nil {
		return err
	}

	c.Name = input.Name
	c.Phone = input.Phone
	if input.Tags != nil {
		c.Tags = NormalizeTags(*input.Tags)
	}
	if input.Notes != nil {
		c.Notes = *input.Notes
	}
	if input.FollowUpDate != nil {
		if *input.FollowUpDate == "" {
			c.FollowUpDate = nil
		} else {
			parsed, _ := time.Parse(domain.DateLayout, *input.FollowUpDate)
			day := datatypes.Date(parsed)
			c.FollowUpDate = &day
		}
	}
	return nil
}

// NormalizeTags trims whitespace, drops empty entries and removes duplicates
// while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
