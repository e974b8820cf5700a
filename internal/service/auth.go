package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/booklens/booklens-server/internal/auth"
	"github.com/booklens/booklens-server/internal/domain"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/normalize"
	"github.com/booklens/booklens-server/internal/store"
)

const invalidCredentialsMessage = "Invalid email or password"

// AuthService handles sign-up, login, token verification and profile edits.
type AuthService struct {
	store  store.Gateway
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(gw store.Gateway, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{store: gw, tokens: tokens, logger: logger}
}

// SignupRequest contains the data for a new account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is a partial profile update. A blank optional field clears it.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Nickname *string `json:"nickname" validate:"omitempty,max=100"`
	Alias    *string `json:"alias" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
}

// AuthResponse is returned after a successful signup or login.
type AuthResponse struct {
	Token string
	User  *domain.User
}

// Signup creates an account and signs it in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = normalize.Text(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Validation("password is invalid")
	}

	user := &domain.User{Email: req.Email, Name: req.Name, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Validation("Email already in use")
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, persistenceError(err, "failed to create account")
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return s.issue(user)
}

// Login verifies credentials and issues a token.
// Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials(invalidCredentialsMessage)
		}
		return nil, persistenceError(err, "failed to load account")
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login failed", "user_id", user.ID)
		return nil, domainerrors.InvalidCredentials(invalidCredentialsMessage)
	}

	return s.issue(user)
}

// VerifyToken returns the user ID carried by a valid access token.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (int64, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return 0, domainerrors.Unauthorized("Invalid or expired token")
	}

	// A token outlives an account only until this lookup.
	if _, err := s.store.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, domainerrors.Unauthorized("Invalid or expired token")
		}
		return 0, persistenceError(err, "failed to load account")
	}
	return claims.UserID, nil
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

// UpdateProfile edits the user's public profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.store.InTx(ctx, func(tx store.Gateway) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return notFoundOr(err, "User not found")
		}

		if req.Name != nil {
			name := normalize.Text(*req.Name)
			if name == "" {
				return domainerrors.Validation("name must not be empty")
			}
			u.Name = name
		}
		mergeOptional(&u.Nickname, req.Nickname)
		mergeOptional(&u.Alias, req.Alias)
		mergeOptional(&u.Bio, req.Bio)

		if err := tx.UpdateUser(ctx, u); err != nil {
			return notFoundOr(err, "User not found")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, persistenceError(err, "failed to update profile")
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		return nil, domainerrors.Internal("failed to issue token")
	}
	return &AuthResponse{Token: token, User: user}, nil
}
