package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"user-directory-api/internal/domain/apperr"
)

type (
	UUID = uuid.UUID
	User struct {
		UUID      UUID
		Name      string
		Email     string
		Phone     string
		ImagePath *string

		CreatedAt time.Time
		UpdatedAt time.Time
		DeletedAt *time.Time
	}
	Users []*User

	// Patch is a partial update: nil fields are left unchanged.
	Patch struct {
		Name      *string
		Email     *string
		Phone     *string
		ImagePath *string
		// ClearImage drops the current image reference. Ignored when ImagePath is set.
		ClearImage bool
	}
)

// Validate checks the fields every stored record must carry.
func (u User) Validate() error {
	errs := make(map[string]string)
	if strings.TrimSpace(u.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(u.Email) == "" {
		errs["email"] = "email is required"
	}
	if strings.TrimSpace(u.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	if len(errs) > 0 {
		return apperr.NewValidationError(errs)
	}
	return nil
}

// Validate rejects present-but-empty fields; absent fields are fine.
func (p Patch) Validate() error {
	errs := make(map[string]string)
	for field, v := range map[string]*string{"name": p.Name, "email": p.Email, "phone": p.Phone} {
		if v != nil && strings.TrimSpace(*v) == "" {
			errs[field] = field + " must not be empty"
		}
	}
	if p.ImagePath != nil && *p.ImagePath == "" {
		errs["image"] = "image path must not be empty"
	}
	if len(errs) > 0 {
		return apperr.NewValidationError(errs)
	}
	return nil
}

func (p Patch) ReplacesImage() bool { return p.ImagePath != nil || p.ClearImage }
