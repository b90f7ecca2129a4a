package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ecommerce-backend/internal/apperror"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenMaker issues and verifies signed identity claims.
type TokenMaker interface {
	Issue(userID string) (string, error)
	Verify(token string) (*Claims, error)
}

type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

type JWTMaker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTMaker(secret string, ttl time.Duration) *JWTMaker {
	return &JWTMaker{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *JWTMaker) Issue(userID string) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", apperror.Internal("could not sign token", err)
	}
	return signed, nil
}

// Verify returns ErrTokenExpired or ErrTokenInvalid wrapped in an
// unauthenticated error; callers that care can tell them apart with errors.Is.
func (m *JWTMaker) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		cause := ErrTokenInvalid
		if errors.Is(err, jwt.ErrTokenExpired) {
			cause = ErrTokenExpired
		}
		return nil, &apperror.Error{Kind: apperror.KindUnauthenticated, Message: "invalid or expired token", Err: cause}
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, &apperror.Error{Kind: apperror.KindUnauthenticated, Message: "invalid or expired token", Err: ErrTokenInvalid}
	}
	return claims, nil
}
