package service

import (
	"context"
	"strings"

	"crm/internal/domain"
	"crm/internal/store"
)

type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, in store.CustomerInsert) (domain.Customer, error)
}

type CustomerService struct {
	Store CustomerStore
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.Store.ListCustomers(ctx)
}

func (s *CustomerService) Create(ctx context.Context, in store.CustomerInsert) (domain.Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Type = strings.TrimSpace(in.Type)
	if in.Name == "" {
		return domain.Customer{}, domain.NewValidationError("name is required")
	}
	return s.Store.CreateCustomer(ctx, in)
}
