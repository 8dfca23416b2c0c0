package ports

import (
	"context"
	"mime/multipart"

	"user-directory-api/internal/domain/user"
)

// UserService creates and updates through separate operations: an update
// never creates a record.
type UserService interface {
	FindUserByID(ctx context.Context, uuid user.UUID) (*user.User, error)
	FindUsers(ctx context.Context) (user.Users, error)
	CreateUser(ctx context.Context, u user.User, image *multipart.FileHeader) (*user.User, error)
	UpdateUser(ctx context.Context, uuid user.UUID, p user.Patch, image *multipart.FileHeader) (*user.User, error)
	DeleteUser(ctx context.Context, uuid user.UUID) error
}
