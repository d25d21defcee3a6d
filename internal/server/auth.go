package server

import (
	"bytes"
	"context"
	"crypto/subtle"

	"github.com/colonnadedb/colonnade/internal/auth"
)

// PasswordAuthenticatorClass is the class name announced in AUTHENTICATE
// responses when password authentication is enabled. Clients use it to pick
// a credential scheme.
const PasswordAuthenticatorClass = "org.colonnadedb.auth.PasswordAuthenticator"

// Authenticator validates AUTH_RESPONSE tokens for connections that were
// answered with AUTHENTICATE during the handshake.
//
// Authentication in protocol v1 completes in a single round-trip: the client
// sends one token and the server either accepts or rejects it. The return
// patterns are:
//
//  1. Success: (username, nil)
//     The connection becomes ready; username is recorded for logging.
//
//  2. Failure: ("", error)
//     The server answers with an Unauthorized ERROR and closes the
//     connection.
//
// Implementations must be safe for concurrent use across connections.
type Authenticator interface {
	// Class returns the authenticator class name sent in AUTHENTICATE.
	Class() string

	// Authenticate validates a client token and returns the authenticated
	// username.
	Authenticate(ctx context.Context, token []byte) (username string, err error)
}

// PasswordAuthenticator validates username\x00password tokens against a
// single configured user with a bcrypt password hash.
type PasswordAuthenticator struct {
	username     []byte
	passwordHash string
}

// NewPasswordAuthenticator creates an authenticator for the given user.
// The hash must be a bcrypt hash as produced by auth.HashPassword.
func NewPasswordAuthenticator(username, passwordHash string) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		username:     []byte(username),
		passwordHash: passwordHash,
	}
}

// Class returns the class name clients see in AUTHENTICATE.
func (a *PasswordAuthenticator) Class() string {
	return PasswordAuthenticatorClass
}

// Authenticate splits the token at the first NUL byte and checks both halves.
// The username comparison is constant-time and the bcrypt comparison always
// runs, so a rejected token does not reveal which half was wrong.
func (a *PasswordAuthenticator) Authenticate(_ context.Context, token []byte) (string, error) {
	sep := bytes.IndexByte(token, 0x00)
	if sep < 0 {
		return "", auth.ErrInvalidCredentials
	}
	username := token[:sep]
	password := token[sep+1:]

	usernameOK := subtle.ConstantTimeCompare(username, a.username) == 1
	passwordOK := auth.VerifyPassword(string(password), a.passwordHash)
	if !usernameOK || !passwordOK {
		return "", auth.ErrInvalidCredentials
	}
	return string(username), nil
}
