package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/newsletter-dev/newsletter/shared/errors"
)

const (
	MaxSubscriberNameLength = 256
	forbiddenNameCharacters = `/()"<>\{}`
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type (
	SubscriberId      = uuid.UUID
	SubscriptionToken = string
)

type SubscriptionStatus string

const (
	StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"
	StatusConfirmed           SubscriptionStatus = "confirmed"
)

// SubscriberEmail is an address that passed validation. The zero value is not valid.
type SubscriberEmail struct {
	value string
}

func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberEmail{}, errors.Validation("subscriber email is empty")
	}
	if err := validate.Var(raw, "email"); err != nil {
		return SubscriberEmail{}, errors.Validation(raw + " is not a valid subscriber email")
	}
	return SubscriberEmail{value: raw}, nil
}

func (e SubscriberEmail) String() string {
	return e.value
}

// SubscriberName is a display name that passed validation. The zero value is not valid.
type SubscriberName struct {
	value string
}

func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, errors.Validation("subscriber name is empty")
	}
	if uniseg.GraphemeClusterCount(raw) > MaxSubscriberNameLength {
		return SubscriberName{}, errors.Validation("subscriber name is too long")
	}
	if strings.ContainsAny(raw, forbiddenNameCharacters) {
		return SubscriberName{}, errors.Validation("subscriber name contains forbidden characters")
	}
	return SubscriberName{value: raw}, nil
}

func (n SubscriberName) String() string {
	return n.value
}

type NewSubscriber struct {
	Email SubscriberEmail
	Name  SubscriberName
}

// ParseNewSubscriber validates raw signup input. The name is checked first.
func ParseNewSubscriber(name, email string) (NewSubscriber, error) {
	n, err := ParseSubscriberName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	e, err := ParseSubscriberEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Email: e, Name: n}, nil
}

type Subscriber struct {
	Id           SubscriberId
	Email        string
	Name         string
	SubscribedAt time.Time
	Status       SubscriptionStatus
}

// ConfirmedSubscriber is a row read back for dispatch. Email is raw:
// rows written under older rules may not parse any more.
type ConfirmedSubscriber struct {
	Id    SubscriberId
	Email string
}
