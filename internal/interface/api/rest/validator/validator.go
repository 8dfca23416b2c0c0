package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"user-directory-api/internal/interface/api/rest/dto/user"
)

const (
	maxNameLen  = 128
	maxEmailLen = 254
	maxPhoneLen = 32
)

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

// ValidateCreate requires name, email and phone.
func ValidateCreate(r user.Request) map[string]string {
	errs := make(map[string]string)

	for field, v := range map[string]*string{"name": r.Name, "email": r.Email, "phone": r.Phone} {
		if v == nil || strings.TrimSpace(*v) == "" {
			errs[field] = field + " is required"
		}
	}
	checkFormat(r, errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateUpdate checks only the fields present in the request.
func ValidateUpdate(r user.Request) map[string]string {
	errs := make(map[string]string)

	for field, v := range map[string]*string{"name": r.Name, "email": r.Email, "phone": r.Phone} {
		if v != nil && strings.TrimSpace(*v) == "" {
			errs[field] = field + " must not be empty"
		}
	}
	checkFormat(r, errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkFormat(r user.Request, errs map[string]string) {
	if _, done := errs["name"]; !done && r.Name != nil {
		if utf8.RuneCountInString(strings.TrimSpace(*r.Name)) > maxNameLen {
			errs["name"] = "name must be at most 128 characters"
		}
	}

	if _, done := errs["email"]; !done && r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		if len(email) > maxEmailLen || !isEmail(email) {
			errs["email"] = "invalid email format"
		}
	}

	if _, done := errs["phone"]; !done && r.Phone != nil {
		if utf8.RuneCountInString(strings.TrimSpace(*r.Phone)) > maxPhoneLen {
			errs["phone"] = "phone must be at most 32 characters"
		}
	}
}

// isEmail accepts a bare address only; display-name forms are rejected.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
