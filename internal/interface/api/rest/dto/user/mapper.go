package user

import (
	"strings"

	"user-directory-api/internal/domain/user"
)

// URLResolver turns a stored image path into the URL clients fetch it from.
type URLResolver func(storagePath string) string

func ToResponseUser(uDomain user.User, resolve URLResolver) User {
	var u = User{
		UUID:      uDomain.UUID,
		Name:      uDomain.Name,
		Email:     uDomain.Email,
		Phone:     uDomain.Phone,
		Image:     uDomain.ImagePath,
		CreatedAt: uDomain.CreatedAt,
		UpdatedAt: uDomain.UpdatedAt,
	}
	if uDomain.ImagePath != nil && resolve != nil {
		u.ImageURL = resolve(*uDomain.ImagePath)
	}

	return u
}

func ToResponseUsers(usDomain user.Users, resolve URLResolver) Users {
	us := make(Users, len(usDomain))
	for idx, u := range usDomain {
		us[idx] = ToResponseUser(*u, resolve)
	}

	return us
}

func ToDomainUser(uRequest Request) user.User {
	return user.User{
		Name:  trimmed(uRequest.Name),
		Email: trimmed(uRequest.Email),
		Phone: trimmed(uRequest.Phone),
	}
}

func ToDomainPatch(uRequest Request) user.Patch {
	return user.Patch{
		Name:       trimmedPtr(uRequest.Name),
		Email:      trimmedPtr(uRequest.Email),
		Phone:      trimmedPtr(uRequest.Phone),
		ClearImage: uRequest.RemoveImage,
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
