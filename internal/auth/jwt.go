// Package auth issues and verifies the HS256 session tokens that identify
// the staff member performing a verification.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the staff member id alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	StaffID string `json:"staff_id"`
}

func GenerateToken(staffID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		StaffID: staffID,
	})
	return token.SignedString(secretKey)
}

// StaffIDFromToken verifies the token signature and expiry and returns the
// staff id it was issued to.
func StaffIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.StaffID == "" {
		return "", ErrInvalidToken
	}
	return claims.StaffID, nil
}

type actorKey struct{}

// WithActor returns a context carrying the authenticated staff id.
func WithActor(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, actorKey{}, staffID)
}

// ActorFromContext returns the authenticated staff id, if any.
func ActorFromContext(ctx context.Context) string {
	staffID, _ := ctx.Value(actorKey{}).(string)
	return staffID
}
