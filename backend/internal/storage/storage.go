// Package storage holds the contracts shared by the service layer and the
// storage implementations.
package storage

import (
	"context"

	"github.com/newsletter-dev/newsletter/shared/domain"
)

// SubscriberTx is the set of signup writes that must commit together. It is
// only valid inside the function passed to WithSubscriberTx.
type SubscriberTx interface {
	CreateSubscriber(ctx context.Context, subscriber domain.NewSubscriber) (domain.SubscriberId, error)
	CreateConfirmationToken(ctx context.Context, id domain.SubscriberId) (domain.SubscriptionToken, error)
}
