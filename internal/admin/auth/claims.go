package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	// TokenTypeAccess is the short-lived token used for API authorization.
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh is the long-lived token used to obtain new access tokens.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims holds the JWT claims for admin API tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Username is the authenticated admin username.
	Username string `json:"username"`

	// Role is the user's role. Colonnade has a single admin identity, so
	// this is always "admin" for tokens issued by the login endpoint.
	Role string `json:"role"`

	// TokenType is "access" or "refresh".
	TokenType TokenType `json:"token_type"`
}

// IsAccessToken returns whether the claims belong to an access token.
func (c *Claims) IsAccessToken() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefreshToken returns whether the claims belong to a refresh token.
func (c *Claims) IsRefreshToken() bool {
	return c.TokenType == TokenTypeRefresh
}
