package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/blackrent/backoffice/internal/cache"
	"github.com/blackrent/backoffice/internal/model"
	"github.com/blackrent/backoffice/internal/repository"
)

// CustomerService provides customer CRUD over the primary datasource with
// read-through caching
type CustomerService interface {
	FindAll(context.Context) ([]*model.Customer, error)
	FindByID(context.Context, string) (*model.Customer, error)
	Create(context.Context, *model.Customer) (*model.Customer, error)
	Upsert(context.Context, *model.Customer) (*model.Customer, error)
	DeleteByID(context.Context, string) error
}

type customerService struct {
	customerRps   repository.CustomerRepository
	customerCache cache.CustomerCacheRepository
}

// NewCustomerService builds new CustomerService
func NewCustomerService(customerRps repository.CustomerRepository, customerCache cache.CustomerCacheRepository) CustomerService {
	return &customerService{customerRps: customerRps, customerCache: customerCache}
}

func (s *customerService) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	c, err := s.customerCache.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c != nil {
		return c, nil
	}

	c, err = s.customerRps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c == nil {
		return nil, nil
	}

	if err := s.customerCache.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) FindAll(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.customerRps.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *customerService) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	if err := s.customerRps.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Upsert(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	existing, err := s.customerRps.FindByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}

		if err := s.customerRps.Create(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}

	if err := s.customerCache.DeleteByID(ctx, c.ID); err != nil {
		return nil, err
	}

	c.CreatedAt = existing.CreatedAt
	if err := s.customerRps.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) DeleteByID(ctx context.Context, id string) error {
	if err := s.customerCache.DeleteByID(ctx, id); err != nil {
		return err
	}

	if _, err := s.customerRps.DeleteByID(ctx, id); err != nil {
		return err
	}
	return nil
}
