package pg

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/errors"
	sharedpg "github.com/newsletter-dev/newsletter/shared/storage/pg"
)

// UserByUsername fetches a publisher. A NotFound error means no such user.
func (s *Storage) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return userByUsername(ctx, s.db, username)
}

// SaveUser stores a publisher with an already hashed password.
func (s *Storage) SaveUser(ctx context.Context, username string, passwordHash domain.Secret) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = saveUser(ctx, tx, username, passwordHash)
		return err
	})
	if err != nil {
		if errors.KindOf(err) == errors.KindStorage {
			return uuid.Nil, err
		}
		return uuid.Nil, errors.Storage("save user", err)
	}
	return id, nil
}

func userByUsername(ctx context.Context, q sharedpg.Querier, username string) (domain.User, error) {
	var (
		user domain.User
		hash string
	)
	err := q.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&user.Id, &user.Username, &hash)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.User{}, errors.NotFound("user not found")
	}
	if err != nil {
		return domain.User{}, errors.Storage("select user by username", err)
	}
	user.PasswordHash = domain.NewSecret(hash)
	return user, nil
}

func saveUser(ctx context.Context, q sharedpg.Querier, username string, passwordHash domain.Secret) (domain.UserId, error) {
	id := uuid.New()
	_, err := q.ExecContext(ctx,
		`INSERT INTO users (user_id, username, password_hash) VALUES ($1, $2, $3)`,
		id, username, passwordHash.Expose(),
	)
	if err != nil {
		return uuid.Nil, errors.Storage("insert user", err)
	}
	return id, nil
}
