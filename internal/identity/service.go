package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates the address/passphrase pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages registration, authentication, and access token issuance.
type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
}

// NewService creates a new identity service.
func NewService(repo Repository, secret string, ttl time.Duration) *Service {
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl}
}

// Register creates a new user with a hashed passphrase.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	if creds.Address == "" {
		return User{}, errors.New("address is required")
	}
	if len(creds.Passphrase) < 8 {
		return User{}, errors.New("passphrase must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Passphrase), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:             uuid.New().String(),
		Address:        creds.Address,
		PassphraseHash: hash,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, creds Credentials) (User, string, error) {
	user, err := s.repo.FindByAddress(ctx, creds.Address)
	if err != nil {
		return User{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PassphraseHash, []byte(creds.Passphrase)); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := map[string]any{
		"sub":  user.ID,
		"addr": user.Address,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	token, err := SignHS256(claims, s.secret)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Verify parses a bearer token and returns the user it identifies. Expired
// tokens are rejected.
func (s *Service) Verify(ctx context.Context, tokenStr string) (User, error) {
	claims, err := ParseAndVerifyHS256(tokenStr, s.secret)
	if err != nil {
		return User{}, err
	}
	if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() >= int64(exp) {
		return User{}, errors.New("token expired")
	}
	sub, _ := claims["sub"].(string)
	return s.repo.FindByID(ctx, sub)
}

// TTL reports the configured access token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}
