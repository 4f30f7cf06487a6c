package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ShareClaims binds a share token to one installation hash.
type ShareClaims struct {
	AnlageHash string `json:"anlage_hash"`
	jwt.RegisteredClaims
}

// ShareTokenService issues signed links for the personal benchmark view so
// submitters can bookmark or share it without re-entering attributes.
type ShareTokenService struct {
	secret    []byte
	expiresIn time.Duration
}

// NewShareTokenService returns configured token service.
func NewShareTokenService(secret string, expiresIn time.Duration) *ShareTokenService {
	if expiresIn <= 0 {
		expiresIn = 365 * 24 * time.Hour
	}
	return &ShareTokenService{secret: []byte(secret), expiresIn: expiresIn}
}

// Generate issues a token for the given installation hash.
func (t *ShareTokenService) Generate(hash string) (string, error) {
	if hash == "" {
		return "", errors.New("token: installation hash is required")
	}

	now := time.Now().UTC()
	claims := ShareClaims{
		AnlageHash: hash,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate verifies the token and returns the bound installation hash.
func (t *ShareTokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("token: unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*ShareClaims); ok && token.Valid && claims.AnlageHash != "" {
		return claims.AnlageHash, nil
	}

	return "", errors.New("token: invalid claims")
}
