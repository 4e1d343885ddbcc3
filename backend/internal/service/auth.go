package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/newsletter-dev/newsletter/shared/crypto"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/logger"
	"github.com/newsletter-dev/newsletter/shared/workerpool"
)

const invalidCredentials = "invalid username or password"

type AuthService interface {
	Verify(ctx context.Context, creds domain.Credentials) (domain.UserId, error)
}

type AuthStorage interface {
	UserByUsername(ctx context.Context, username string) (domain.User, error)
}

// Auth checks publisher credentials. Every verification, including the one
// for unknown usernames, costs one Argon2id computation on the worker pool.
type Auth struct {
	storage   AuthStorage
	pool      *workerpool.Pool
	dummyHash string
}

// NewAuth hashes a random password with params to use for unknown usernames.
// params should match the parameters of the stored hashes.
func NewAuth(storage AuthStorage, pool *workerpool.Pool, params crypto.Params) (*Auth, error) {
	dummy, err := crypto.HashPassword(uuid.NewString(), params)
	if err != nil {
		return nil, errors.Internal("generate dummy password hash", err)
	}
	return &Auth{storage: storage, pool: pool, dummyHash: dummy}, nil
}

func (a *Auth) Verify(ctx context.Context, creds domain.Credentials) (domain.UserId, error) {
	user, err := a.storage.UserByUsername(ctx, creds.Username)
	known := err == nil
	if err != nil && !errors.IsNotFound(err) {
		return uuid.Nil, err
	}

	hash := a.dummyHash
	if known {
		hash = user.PasswordHash.Expose()
	}

	var verifyErr error
	err = a.pool.Do(ctx, func() error {
		verifyErr = crypto.VerifyPassword(hash, creds.Password.Expose())
		return nil
	})
	if err != nil {
		return uuid.Nil, errors.Internal("schedule password verification", err)
	}

	if !known {
		return uuid.Nil, errors.Auth(invalidCredentials, fmt.Errorf("unknown username %q", creds.Username))
	}
	if verifyErr != nil {
		if !errors.Is(verifyErr, crypto.ErrMismatchedPassword) {
			logger.Log.Error("stored password hash is unusable", "user_id", user.Id, "error", verifyErr)
		}
		return uuid.Nil, errors.Auth(invalidCredentials, verifyErr)
	}
	return user.Id, nil
}

// ParseBasicAuth extracts credentials from an Authorization header value.
func ParseBasicAuth(header string) (domain.Credentials, error) {
	if header == "" {
		return domain.Credentials{}, errors.Auth("missing authorization header", nil)
	}
	if !utf8.ValidString(header) {
		return domain.Credentials{}, errors.Auth("authorization header is not a valid UTF-8 string", nil)
	}
	encoded, ok := strings.CutPrefix(header, "Basic ")
	if !ok {
		return domain.Credentials{}, errors.Auth("authorization scheme is not 'Basic'", nil)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Credentials{}, errors.Auth("failed to base64-decode 'Basic' credentials", err)
	}
	if !utf8.Valid(decoded) {
		return domain.Credentials{}, errors.Auth("decoded credentials are not valid UTF-8", nil)
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return domain.Credentials{}, errors.Auth("a password must be provided in 'Basic' auth", nil)
	}
	return domain.Credentials{Username: username, Password: domain.NewSecret(password)}, nil
}
