package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	adminauth "github.com/colonnadedb/colonnade/internal/admin/auth"
	"github.com/colonnadedb/colonnade/internal/auth"
	"github.com/colonnadedb/colonnade/internal/logger"
)

// AuthHandler handles authentication endpoints for the admin API.
//
// Colonnade has a single admin identity configured in the daemon config
// (username + bcrypt password hash); there is no user database.
type AuthHandler struct {
	username     string
	passwordHash string
	jwtService   *adminauth.JWTService
}

// NewAuthHandler creates a new AuthHandler validating against the configured
// admin credentials.
func NewAuthHandler(username, passwordHash string, jwtService *adminauth.JWTService) *AuthHandler {
	return &AuthHandler{
		username:     username,
		passwordHash: passwordHash,
		jwtService:   jwtService,
	}
}

// LoginRequest is the request body for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response body for POST /v1/auth/login.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RefreshRequest is the request body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /v1/auth/login.
// Authenticates the admin credentials and returns a JWT token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		BadRequest(w, "Username and password are required")
		return
	}

	if h.passwordHash == "" {
		logger.Warn("Admin login rejected: no admin password configured")
		Unauthorized(w, "Admin authentication is not configured")
		return
	}

	// Verify the password even when the username mismatches so both outcomes
	// take a bcrypt comparison.
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passwordOK := auth.VerifyPassword(req.Password, h.passwordHash)
	if !usernameOK || !passwordOK {
		logger.Warn("Admin login failed",
			"username", req.Username,
			"remote_addr", r.RemoteAddr)
		Unauthorized(w, "Invalid username or password")
		return
	}

	tokens, err := h.jwtService.GenerateTokenPair(h.username, "admin")
	if err != nil {
		logger.Error("Failed to generate tokens", "error", err)
		InternalError(w, "Failed to generate tokens")
		return
	}

	logger.Info("Admin login successful",
		"username", h.username,
		"remote_addr", r.RemoteAddr)

	writeJSON(w, http.StatusOK, okResponse(LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
		ExpiresAt:    tokens.ExpiresAt,
	}))
}

// Refresh handles POST /v1/auth/refresh.
// Exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		BadRequest(w, "Refresh token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		Unauthorized(w, "Invalid or expired refresh token")
		return
	}

	tokens, err := h.jwtService.GenerateTokenPair(claims.Username, claims.Role)
	if err != nil {
		logger.Error("Failed to generate tokens", "error", err)
		InternalError(w, "Failed to generate tokens")
		return
	}

	writeJSON(w, http.StatusOK, okResponse(LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
		ExpiresAt:    tokens.ExpiresAt,
	}))
}
