// Package auth provides JWT token handling, password hashing, and the HTTP
// middleware that enforces authentication and role checks.
//
// AUTHENTICATION FLOW:
//  1. POST /auth/login verifies the username/password and issues a JWT
//  2. The client sends the JWT on every request: Authorization: Bearer <jwt>
//  3. RequireAuth validates the signature and expiry, decodes the identity
//     claims, and attaches an Identity to the request context
//  4. RequireAdmin (write routes only) rejects non-admin identities
//
// The token is self-contained: the identity fields (user id, username, role,
// linked student id) are embedded in the signed payload, so no session table
// or per-request database lookup is needed. The signature ensures nobody can
// tamper with the claims without the secret key; expiry is fixed at 24 hours
// and there is no refresh mechanism — after that, log in again.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ydahmen/student-records/internal/model"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

const issuer = "student-records"

// Identity is the decoded claim set attached to authenticated requests.
// StudentID is empty for admin accounts.
type Identity struct {
	UserID    string
	Username  string
	Role      model.Role
	StudentID string
}

// IsAdmin reports whether this identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == model.RoleAdmin
}

// TokenService signs and verifies JWTs with an HMAC secret.
// The same secret must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The standard "sub" claim holds the user ID;
// username, role, and the linked student id ride along as private claims so
// the middleware can rebuild the full Identity without a database lookup.
type claims struct {
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	StudentID string     `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates and signs a 24-hour access token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for a
// single-server deployment.
func (s *TokenService) Generate(user *model.User) (string, error) {
	return s.GenerateWithDuration(user, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Exists so tests can issue already-expired tokens.
func (s *TokenService) GenerateWithDuration(user *model.User, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Username:  user.Username,
		Role:      user.Role,
		StudentID: user.StudentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the embedded
// identity.
//
// Checks performed by the jwt library: signature is intact, token not
// expired, issuer matches, and the algorithm is HS256. Pinning the
// algorithm with jwt.WithValidMethods prevents algorithm-confusion
// attacks (a token claiming alg "none" is rejected outright).
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}
	if !c.Role.Valid() {
		return nil, fmt.Errorf("auth: token has unknown role %q", c.Role)
	}

	return &Identity{
		UserID:    c.Subject,
		Username:  c.Username,
		Role:      c.Role,
		StudentID: c.StudentID,
	}, nil
}
