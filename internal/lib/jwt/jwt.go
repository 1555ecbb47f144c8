package jwt

import (
	"errors"
	"fmt"
	"time"

	"floral_essence/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// NewToken issues an HS256 admin token for subject.
func NewToken(subject string, secret []byte, duration time.Duration) (models.AdminToken, error) {
	now := time.Now()
	exp := now.Add(duration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return models.AdminToken{}, err
	}

	return models.AdminToken{AccessToken: tokenString, ExpiresAt: exp.Unix()}, nil
}

// Parse verifies signature and expiry.
func Parse(tokenString string, secret []byte) (models.TokenMeta, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	meta := models.TokenMeta{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		meta.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		meta.ExpiresAt = claims.ExpiresAt.Unix()
	}

	return meta, nil
}
