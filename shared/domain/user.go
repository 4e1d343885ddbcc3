package domain

import "github.com/google/uuid"

type UserId = uuid.UUID

// User is a publisher allowed to send newsletter issues.
type User struct {
	Id           UserId
	Username     string
	PasswordHash Secret // PHC string
}

type Credentials struct {
	Username string
	Password Secret
}
