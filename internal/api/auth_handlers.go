package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/api/auth/signup",
		Summary:       "Sign up",
		Description:   "Creates an account and returns an access token",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns an access token",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/api/auth/logout",
		Summary:       "Logout",
		Description:   "Tokens are stateless; the client discards its token",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "Current user",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPut,
		Path:        "/api/auth/profile",
		Summary:     "Update profile",
		Description: "Updates the provided profile fields. A blank optional field clears it.",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)
}

// === DTOs ===

// UserResponse is the wire form of an account. Unset profile fields are null.
type UserResponse struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	Nickname        *string `json:"nickname"`
	Alias           *string `json:"alias"`
	Bio             *string `json:"bio"`
	ProfileImageURL *string `json:"profile_image_url"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Nickname:        u.Nickname,
		Alias:           u.Alias,
		Bio:             u.Bio,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// SignupRequest is the request body for a new account.
type SignupRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password (8-1024 chars)"`
	Name     string `json:"name" doc:"Display name"`
}

// SignupInput wraps the signup request for huma.
type SignupInput struct {
	Body SignupRequest
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for huma.
type LoginInput struct {
	Body LoginRequest
}

// AuthResponse is the response for successful authentication.
type AuthResponse struct {
	Token string       `json:"token" doc:"PASETO access token"`
	User  UserResponse `json:"user" doc:"Authenticated user details"`
}

// AuthOutput wraps the auth response for huma.
type AuthOutput struct {
	Body AuthResponse
}

// UserOutput wraps {user}.
type UserOutput struct {
	Body struct {
		User UserResponse `json:"user"`
	}
}

// CurrentUserInput carries the bearer header for documentation.
type CurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateProfileInput wraps a partial profile update.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		_        struct{} `json:"-" additionalProperties:"true"`
		Name     *string  `json:"name,omitempty" nullable:"true" doc:"Display name"`
		Nickname *string  `json:"nickname,omitempty" nullable:"true" doc:"Nickname"`
		Alias    *string  `json:"alias,omitempty" nullable:"true" doc:"Alias"`
		Bio      *string  `json:"bio,omitempty" nullable:"true" doc:"Short biography"`
	}
}

// === Handlers ===

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: AuthResponse{Token: resp.Token, User: toUserResponse(resp.User)}}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: AuthResponse{Token: resp.Token, User: toUserResponse(resp.User)}}, nil
}

func (s *Server) handleLogout(_ context.Context, _ *struct{}) (*struct{}, error) {
	return nil, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *CurrentUserInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &UserOutput{}
	out.Body.User = toUserResponse(user)
	return out, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Name:     input.Body.Name,
		Nickname: input.Body.Nickname,
		Alias:    input.Body.Alias,
		Bio:      input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}

	out := &UserOutput{}
	out.Body.User = toUserResponse(user)
	return out, nil
}
