package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"scaffold/internal/auth"
	"scaffold/internal/models"
	"scaffold/internal/repository"
	"scaffold/internal/validation"
)

const generatedPasswordBytes = 16

// AuthService handles login, session resolution and account provisioning.
type AuthService struct {
	users       repository.UserRepository
	hasher      *auth.Hasher
	tokens      *auth.Tokens
	revocations *auth.Revocations
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// ProvisionInput describes a new account.
type ProvisionInput struct {
	Username string
	Email    string
	Password string
	Admin    bool
}

func NewAuthService(
	users repository.UserRepository,
	hasher *auth.Hasher,
	tokens *auth.Tokens,
	revocations *auth.Revocations,
) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
	}
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validation.ValidateLogin(email, password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.VerifyPassword(user.Password, password) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// Resolve maps a session token to an identity. Invalid, revoked or orphaned
// tokens resolve to Anonymous. The admin flag always comes from the store.
func (s *AuthService) Resolve(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Anonymous, nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.Anonymous, nil
	}
	if s.revocations.IsRevoked(ctx, claims) {
		return models.Anonymous, nil
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.Anonymous, nil
		}
		return models.Anonymous, err
	}
	return models.IdentityFromUser(user), nil
}

// Logout revokes token so it no longer resolves. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Provision creates an account with a hashed password.
func (s *AuthService) Provision(ctx context.Context, in ProvisionInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateLogin(in.Email, in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Admin:    in.Admin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdmin provisions an admin with a generated password. The password
// is returned once and never stored in clear.
func (s *AuthService) CreateAdmin(ctx context.Context, username, email string) (*models.User, string, error) {
	password, err := GeneratePassword()
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	user, err := s.Provision(ctx, ProvisionInput{
		Username: username,
		Email:    email,
		Password: password,
		Admin:    true,
	})
	if err != nil {
		return nil, "", err
	}
	return user, password, nil
}

// Promote grants admin to an existing user.
func (s *AuthService) Promote(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if user.Admin {
		return user, nil
	}
	user.Admin = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListAdmins returns every admin account.
func (s *AuthService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.users.ListAdmins(ctx)
}

// GeneratePassword returns a random URL-safe password from 16 random bytes.
func GeneratePassword() (string, error) {
	buf := make([]byte, generatedPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
