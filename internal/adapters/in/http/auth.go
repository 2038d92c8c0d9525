package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shoecare/internal/core/domain/model/actor"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

// ErrInvalidToken is returned for a bearer token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by access tokens. The subject is the user id.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for a.
func IssueToken(secret []byte, a actor.Actor, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if _, err := actor.New(a.ID, a.Name, a.Role); err != nil {
		return "", err
	}
	issuedAt := time.Now()
	claims := Claims{
		Name: a.Name,
		Role: a.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies an access token and returns the actor it names.
func ParseToken(secret []byte, raw string) (actor.Actor, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return actor.Actor{}, ErrInvalidToken
	}
	role, err := actor.ParseRole(claims.Role)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	a, err := actor.New(claims.Subject, claims.Name, role)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return a, nil
}

// Authenticate resolves the caller from the Authorization header. Requests without a
// header continue as anonymous (guest checkout, public tracking); a header that does not
// verify is rejected with 401.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				c.Set(actorKey, actor.Actor{})
				return next(c)
			}
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				return fail(c, http.StatusUnauthorized, "invalid authorization header")
			}
			a, err := ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				return fail(c, http.StatusUnauthorized, "invalid or expired token")
			}
			c.Set(actorKey, a)
			return next(c)
		}
	}
}

// actorFrom returns the authenticated caller, or the anonymous actor.
func actorFrom(c echo.Context) actor.Actor {
	a, _ := c.Get(actorKey).(actor.Actor)
	return a
}
