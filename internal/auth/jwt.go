package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const ownerSubject = "wall-owner"

// JWT issues session tokens that stand in for the shared secret.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl}
}

func (j *JWT) Enabled() bool { return j != nil && len(j.secret) > 0 }

func (j *JWT) Sign() (string, error) {
	if !j.Enabled() {
		return "", errors.New("sessions disabled")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (Capability, error) {
	if !j.Enabled() {
		return Capability{}, errors.New("sessions disabled")
	}
	var claims jwt.RegisteredClaims
	t, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || !t.Valid {
		return Capability{}, errors.New("invalid token")
	}
	if claims.Subject != ownerSubject {
		return Capability{}, errors.New("invalid sub")
	}
	return Capability{granted: true}, nil
}
