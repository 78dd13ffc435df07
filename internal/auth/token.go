// internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Annany2002/nebula-docstore/api/models"
)

const tokenIssuer = "nebula-docstore"

var (
	ErrTokenMalformed          = errors.New("malformed token")
	ErrTokenExpired            = errors.New("token is expired or not valid yet")
	ErrTokenInvalid            = errors.New("invalid token")
	ErrTokenClaimsInvalid      = errors.New("invalid token claims")
	ErrUnexpectedSigningMethod = errors.New("unexpected token signing method")
	errTokenSigning            = errors.New("failed to generate token")
)

// GenerateJWT signs an HS256 management-plane token for userID.
func GenerateJWT(userID, jwtSecret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		customLog.Warnf("Auth: signing token for user %s: %v", userID, err)
		return "", errTokenSigning
	}
	return signed, nil
}

// ValidateJWT checks signature, validity window and claims, and returns the
// user id the token was issued for.
func ValidateJWT(tokenString, jwtSecret string) (string, error) {
	claims := &models.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		customLog.Debugf("Auth: rejecting token: %v", err)
		return "", parseError(err)
	}
	if !token.Valid {
		return "", ErrTokenInvalid
	}
	if claims.UserID == "" {
		return "", ErrTokenClaimsInvalid
	}
	return claims.UserID, nil
}

// parseError folds jwt library errors into this package's sentinels.
func parseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenExpired
	case errors.Is(err, ErrUnexpectedSigningMethod):
		return ErrUnexpectedSigningMethod
	default:
		return ErrTokenInvalid
	}
}
