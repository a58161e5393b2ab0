package service

import (
	"context"
	"strings"

	"crm/internal/auth"
	"crm/internal/domain"
	"crm/internal/store"
)

type UserStore interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, in store.UserInsert) (int64, error)
	UpdateUser(ctx context.Context, in store.UserUpdate) (bool, error)
}

type UserService struct {
	Store UserStore
}

type NewEmployee struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.ListUsers(ctx)
}

// CreateEmployee stores a new employee account with a bcrypt password hash.
func (s *UserService) CreateEmployee(ctx context.Context, in NewEmployee) (int64, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return 0, domain.NewValidationError("name, email and password are required")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, err
	}
	return s.Store.CreateUser(ctx, store.UserInsert{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
	})
}

// Update applies the non-nil fields. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id int64, name, email, phone, address, password *string) error {
	if id <= 0 {
		return domain.NewValidationError("Invalid employee id")
	}
	up := store.UserUpdate{ID: id, Name: name, Phone: phone, Address: address}
	if email != nil {
		e := strings.TrimSpace(strings.ToLower(*email))
		up.Email = &e
	}
	if password != nil && *password != "" {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			return err
		}
		up.PasswordHash = &hash
	}
	ok, err := s.Store.UpdateUser(ctx, up)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
