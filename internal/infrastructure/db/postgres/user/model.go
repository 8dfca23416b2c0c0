package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		UUID      uuid.UUID
		Name      string
		Email     string
		Phone     string
		ImagePath *string

		CreatedAt time.Time
		UpdatedAt time.Time
		DeletedAt *time.Time
	}
	Users []*User
)
