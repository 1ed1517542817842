package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures collapse into three reasons. Callers treat all of
// them as rejection; the split only matters for messages and tests.
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
)

// PendingRegistration is a registration that has not been persisted yet. It
// travels only inside the activation token.
type PendingRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ActivationClaims struct {
	User           PendingRegistration `json:"user"`
	ActivationCode string              `json:"activationCode"`
	jwt.RegisteredClaims
}

// SessionClaims carry only the account id; access and refresh tokens share
// the shape and differ by secret and ttl.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

func SignActivationToken(user PendingRegistration, activationCode string, secret []byte, ttl time.Duration) (string, error) {
	claims := ActivationClaims{
		User:           user,
		ActivationCode: activationCode,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func VerifyActivationToken(tokenStr string, secret []byte) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func SignSessionToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func VerifySessionToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
