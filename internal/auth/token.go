package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload. Only the subject (user id) travels
// in the token; roles and permissions are re-resolved on every request.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTTokenGenerator signs and verifies HS256 session tokens. The secret is
// injected at construction; a missing secret fails issue/verify with
// ErrSecretMissing rather than being read from the environment ad hoc.
type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
	}
}

// Issue creates a signed token with sub=userID expiring TTL from now.
func (j *JWTTokenGenerator) Issue(userID string) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrSecretMissing
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Verify checks signature and expiry. Expired tokens surface as
// ErrTokenExpired; every other structural or cryptographic anomaly folds
// into ErrInvalidToken so callers gain no oracle about why a token was
// rejected.
func (j *JWTTokenGenerator) Verify(tokenString string) (*Claims, error) {
	if len(j.Secret) == 0 {
		return nil, ErrSecretMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
