package chi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-cloud/meridian/internal/domain"
)

// Claims are the session token claims.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates admin session tokens.
type Authenticator struct {
	username string
	password string
	secret   []byte
	ttl      time.Duration
}

// NewAuthenticator creates an authenticator. An empty secret gets a
// random one, which invalidates outstanding tokens on restart.
func NewAuthenticator(username, password, secret string, ttl time.Duration) (*Authenticator, error) {
	key, err := secretFromString(secret)
	if err != nil {
		return nil, fmt.Errorf("derive jwt secret: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{username: username, password: password, secret: key, ttl: ttl}, nil
}

// Configured reports whether admin credentials are set.
func (a *Authenticator) Configured() bool {
	return a.username != "" && a.password != ""
}

// ValidateCredentials checks a login attempt in constant time.
func (a *Authenticator) ValidateCredentials(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return usernameMatch && passwordMatch
}

// IssueToken creates a signed session token.
func (a *Authenticator) IssueToken(username string) (token string, expiresAt time.Time, err error) {
	expiresAt = time.Now().Add(a.ttl)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "meridian-admin",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a session token.
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// RequireToken is a middleware that rejects requests without a valid
// Bearer token.
func (a *Authenticator) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		if _, err := a.ValidateToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", false
	}
	return auth[len(bearerPrefix):], true
}

// secretFromString converts a hex string to bytes, or generates a random
// secret if empty. Other strings are copied into a 32-byte key.
func secretFromString(s string) ([]byte, error) {
	if s == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		return secret, nil
	}
	if len(s) == 64 {
		return hex.DecodeString(s)
	}
	secret := make([]byte, 32)
	copy(secret, s)
	return secret, nil
}
