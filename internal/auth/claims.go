package auth

import "time"

// AccessClaims are the claims carried in an encrypted v4.local access token.
type AccessClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`

	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
