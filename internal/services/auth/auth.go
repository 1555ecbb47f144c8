package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/jwt"
	"floral_essence/internal/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Auth checks the single configured admin account. The password is kept
// only as a bcrypt hash.
type Auth struct {
	log      *slog.Logger
	username string
	passHash []byte
	secret   []byte
	tokenTTL time.Duration
}

func New(log *slog.Logger, username, password string, secret []byte, tokenTTL time.Duration) (*Auth, error) {
	const op = "auth.New"

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Auth{
		log:      log,
		username: username,
		passHash: passHash,
		secret:   secret,
		tokenTTL: tokenTTL,
	}, nil
}

func (a *Auth) Login(ctx context.Context, username, password string) (models.AdminToken, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login admin")

	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 {
		log.Info("invalid credentials")

		return models.AdminToken{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword(a.passHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return models.AdminToken{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := jwt.NewToken(username, a.secret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		return models.AdminToken{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in successfully")

	return token, nil
}

// Verify accepts a token issued by Login for the configured admin.
func (a *Auth) Verify(token string) (models.TokenMeta, error) {
	const op = "auth.Verify"

	meta, err := jwt.Parse(token, a.secret)
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	if meta.Subject != a.username {
		return models.TokenMeta{}, fmt.Errorf("%s: %w: unknown subject", op, ErrInvalidToken)
	}

	return meta, nil
}
