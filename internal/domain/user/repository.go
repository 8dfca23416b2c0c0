package user

import (
	"context"
)

// Repository is the record store. Lookups, updates and deletes of a missing
// or deleted record fail with apperr.ErrNotFound.
type Repository interface {
	FetchUserByID(ctx context.Context, uuid UUID) (*User, error)
	FetchUsers(ctx context.Context) (Users, error)
	CreateUser(ctx context.Context, req User) (*User, error)
	// UpdateUser also returns the image path the record held before the
	// update, read in the same statement that wrote it.
	UpdateUser(ctx context.Context, uuid UUID, p Patch) (u *User, prevImagePath *string, err error)
	DeleteUser(ctx context.Context, uuid UUID) (*User, error)
}
