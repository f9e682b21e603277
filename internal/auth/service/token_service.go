package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/isurusajith68/stockwise-aiims-server/internal/auth/service TokenGenerator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenGenerator interface {
	Generate(userID, role string) (string, time.Time, error)
	Verify(tokenString string) (*JWTCustomClaims, error)
	Decode(tokenString string) (*JWTCustomClaims, error)
	Expiry() time.Duration
}

type TokenService struct {
	Secret      string
	TokenExpiry time.Duration
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{
		Secret:      secret,
		TokenExpiry: expiry,
	}
}

func (ts *TokenService) Generate(userID, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.TokenExpiry)

	claims := JWTCustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.Secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Verify parses and validates the token, failing closed on expired,
// malformed or badly signed input.
func (ts *TokenService) Verify(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// Decode extracts claims without verifying the signature. It exists for
// administrative inspection, such as reading the expiry of a token being
// logged out. Never use it to authorize access.
func (ts *TokenService) Decode(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (ts *TokenService) Expiry() time.Duration {
	return ts.TokenExpiry
}
