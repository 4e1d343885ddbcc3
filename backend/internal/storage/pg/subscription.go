package pg

import (
	"context"
	"database/sql"
	stderrors "errors"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/newsletter-dev/newsletter/backend/internal/storage"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/errors"
	sharedpg "github.com/newsletter-dev/newsletter/shared/storage/pg"
	"github.com/newsletter-dev/newsletter/shared/utils"
)

// =========================================================================
// Public Methods (satisfy the service.SubscriptionStorage interface)
// =========================================================================

// WithSubscriberTx runs fn inside one transaction. The transaction commits
// only if fn returns nil.
func (s *Storage) WithSubscriberTx(ctx context.Context, fn func(storage.SubscriberTx) error) error {
	var fnErr error
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		fnErr = fn(&subscriberTx{q: tx})
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin or commit failed
		return errors.Storage("signup transaction", err)
	}
	return err
}

// SubscriberIdByToken returns the subscriber a confirmation token was issued
// for. A NotFound error means the token is unknown.
func (s *Storage) SubscriberIdByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return subscriberIdByToken(ctx, s.db, token)
}

// ConfirmSubscriber marks the subscriber confirmed. Confirming twice is a no-op.
func (s *Storage) ConfirmSubscriber(ctx context.Context, id domain.SubscriberId) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return confirmSubscriber(ctx, s.db, id)
}

// ConfirmedSubscribers streams every confirmed subscriber. Emails are returned
// as stored and must be validated again by the caller. The sequence stops at
// the first error.
func (s *Storage) ConfirmedSubscribers(ctx context.Context) iter.Seq2[domain.ConfirmedSubscriber, error] {
	return func(yield func(domain.ConfirmedSubscriber, error) bool) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, email
			FROM subscriptions
			WHERE status = $1
			ORDER BY subscribed_at`, domain.StatusConfirmed)
		if err != nil {
			yield(domain.ConfirmedSubscriber{}, errors.Storage("query confirmed subscribers", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var sub domain.ConfirmedSubscriber
			if err := rows.Scan(&sub.Id, &sub.Email); err != nil {
				yield(domain.ConfirmedSubscriber{}, errors.Storage("scan confirmed subscriber", err))
				return
			}
			if !yield(sub, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.ConfirmedSubscriber{}, errors.Storage("iterate confirmed subscribers", err))
		}
	}
}

// =========================================================================
// Transactional writes
// =========================================================================

type subscriberTx struct {
	q sharedpg.Querier
}

var _ storage.SubscriberTx = (*subscriberTx)(nil)

func (t *subscriberTx) CreateSubscriber(ctx context.Context, subscriber domain.NewSubscriber) (domain.SubscriberId, error) {
	id := uuid.New()
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)`,
		id, subscriber.Email.String(), subscriber.Name.String(), time.Now().UTC(), domain.StatusPendingConfirmation,
	)
	if err != nil {
		return uuid.Nil, errors.Storage("insert subscriber", err)
	}
	return id, nil
}

func (t *subscriberTx) CreateConfirmationToken(ctx context.Context, id domain.SubscriberId) (domain.SubscriptionToken, error) {
	token, err := utils.GenerateSubscriptionToken()
	if err != nil {
		return "", errors.Internal("generate subscription token", err)
	}
	_, err = t.q.ExecContext(ctx, `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)`,
		token, id,
	)
	if err != nil {
		return "", errors.Storage("insert subscription token", err)
	}
	return token, nil
}

// =========================================================================
// Private Helpers (operate on a Querier)
// =========================================================================

func subscriberIdByToken(ctx context.Context, q sharedpg.Querier, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	var id domain.SubscriberId
	err := q.QueryRowContext(ctx,
		`SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`,
		token,
	).Scan(&id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, errors.NotFound("subscription token not found")
	}
	if err != nil {
		return uuid.Nil, errors.Storage("select subscriber id by token", err)
	}
	return id, nil
}

func confirmSubscriber(ctx context.Context, q sharedpg.Querier, id domain.SubscriberId) error {
	_, err := q.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1 WHERE id = $2`,
		domain.StatusConfirmed, id,
	)
	if err != nil {
		return errors.Storage("confirm subscriber", err)
	}
	return nil
}
