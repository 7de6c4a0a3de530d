package domain

import "context"

// User is a registered account that exercises are logged against.
type User struct {
	ID       string
	Username string
}

// UserRepository captures user persistence operations.
type UserRepository interface {
	// CreateUser stores the user and returns it with a store-generated ID.
	CreateUser(ctx context.Context, user User) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	// FindUserByID returns nil, nil when the ID is unknown or malformed.
	FindUserByID(ctx context.Context, id string) (*User, error)
}
