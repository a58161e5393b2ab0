package service

import (
	"context"
	"strings"

	"crm/internal/auth"
	"crm/internal/domain"
)

type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (domain.User, bool, error)
}

type AuthService struct {
	Users  UserFinder
	Tokens *auth.Tokens
}

// Login checks the password and returns a signed token with the user.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", domain.User{}, domain.NewValidationError("email and password are required")
	}
	u, found, err := s.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", domain.User{}, err
	}
	if !found {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return "", domain.User{}, err
	}
	if !ok {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	tok, err := s.Tokens.Issue(u)
	if err != nil {
		return "", domain.User{}, err
	}
	u.PasswordHash = ""
	return tok, u, nil
}
