// Package auth is the identity layer. It issues and verifies HS256 tokens
// that carry the acting user; there is no credential check behind them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agromarket/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. Subject holds the user id.
type Claims struct {
	Role models.Role `json:"role"`
	Name string      `json:"name,omitempty"`
	Code string      `json:"code,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token for actor that expires after ttl.
func (i *Issuer) Issue(actor models.Actor, ttl time.Duration) (string, error) {
	if actor.ID == "" || !models.ValidRole(actor.Role) {
		return "", fmt.Errorf("auth.Issuer.Issue: %w", models.ErrInvalidActor)
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: actor.Role,
		Name: actor.Name,
		Code: actor.Code,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature and expiry and returns the actor it
// carries.
func (i *Issuer) Parse(tokenString string) (models.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return models.Actor{}, fmt.Errorf("auth.Issuer.Parse: %w: %w", ErrInvalidToken, err)
	}

	actor := models.Actor{
		ID:   claims.Subject,
		Role: claims.Role,
		Name: claims.Name,
		Code: claims.Code,
	}
	if actor.ID == "" || !models.ValidRole(actor.Role) {
		return models.Actor{}, fmt.Errorf("auth.Issuer.Parse: %w: %w", ErrInvalidToken, models.ErrInvalidActor)
	}
	return actor, nil
}
