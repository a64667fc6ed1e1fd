package auth

import (
	"errors"
	"time"

	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "money-marathon"

// Claims carries the authenticated principal. Subject is the user id and ID
// is a unique token id used for revocation.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`

	jwt.RegisteredClaims
}

// Principal returns the caller identity carried by the token
func (c Claims) Principal() models.Principal {
	return models.Principal{ID: c.Subject, Name: c.Name, Email: c.Email}
}

// TTL returns how long the token remains valid after now
func (c Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

type JWT struct {
	Secret   []byte
	TokenTTL time.Duration
}

// Sign issues a token for principal
func (j JWT) Sign(p models.Principal) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(j.TokenTTL)
	claims := Claims{
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// Verify parses token and checks its signature, issuer and expiry
func (j JWT) Verify(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, err
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.Subject == "" || c.ID == "" {
		return Claims{}, errors.New("invalid token")
	}
	return *c, nil
}
