package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"catalog-admin/clients"
	"catalog-admin/models"
	"catalog-admin/utils"
)

// Authenticator is the remote platform's login surface.
type Authenticator interface {
	CreateSession(ctx context.Context, email, password string) (*models.SessionUser, error)
	GetToken(ctx context.Context, email, password string) (string, error)
}

type LoginResult struct {
	User       models.SessionUser
	Token      string
	UserCookie string
}

type AuthService struct {
	remote Authenticator
	secret string
	ttl    time.Duration
}

func NewAuthService(remote Authenticator, secret string, ttl time.Duration) *AuthService {
	return &AuthService{remote: remote, secret: secret, ttl: ttl}
}

// Login creates a platform session, fetches the bearer token and signs the
// user object for the user cookie.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.remote.CreateSession(ctx, email, password)
	if err != nil {
		return nil, loginError(err)
	}
	token, err := s.remote.GetToken(ctx, email, password)
	if err != nil {
		return nil, loginError(err)
	}

	cookie, err := utils.SignUser(*user, s.secret, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign user cookie: %w", err)
	}
	return &LoginResult{User: *user, Token: token, UserCookie: cookie}, nil
}

func (s *AuthService) CookieTTL() time.Duration { return s.ttl }

func loginError(err error) error {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
		return fmt.Errorf("%w: %v", ErrInvalidLogin, err)
	}
	return err
}
