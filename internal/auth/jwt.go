package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eldanielo/ceassist/domain/entities"
)

var (
	// ErrMissingToken means no token was supplied with the connection.
	ErrMissingToken = errors.New("authentication token missing")
	// ErrForbidden means the token is valid but the caller is not allowed.
	ErrForbidden = errors.New("user not allowed")
)

// Claims are the JWT claims carried by a caller token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates caller tokens and enforces the allowed email domain.
type Verifier struct {
	secret        []byte
	allowedDomain string
}

// NewVerifier creates a token verifier. An empty allowedDomain disables the
// domain check.
func NewVerifier(secret []byte, allowedDomain string) *Verifier {
	return &Verifier{secret: secret, allowedDomain: allowedDomain}
}

// Verify validates a token and returns the caller identity. It fails with
// ErrMissingToken for an empty token and ErrForbidden when the email domain
// is not allowed.
func (v *Verifier) Verify(tokenString string) (entities.Identity, error) {
	if tokenString == "" {
		return entities.Identity{}, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return entities.Identity{}, fmt.Errorf("invalid authentication credentials: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return entities.Identity{}, fmt.Errorf("invalid authentication credentials")
	}

	if claims.Email == "" {
		return entities.Identity{}, ErrForbidden
	}
	if v.allowedDomain != "" && !strings.HasSuffix(claims.Email, "@"+v.allowedDomain) {
		return entities.Identity{}, ErrForbidden
	}

	return entities.Identity{Email: claims.Email, Name: claims.Name}, nil
}

// GenerateToken issues a token for a caller. Used by local tooling and tests.
func GenerateToken(secret []byte, email, name string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
