package user

// Request is the create/update payload. Fields left nil were not sent.
type Request struct {
	Name        *string `json:"name" form:"name"`
	Email       *string `json:"email" form:"email"`
	Phone       *string `json:"phone" form:"phone"`
	RemoveImage bool    `json:"remove_image" form:"remove_image"`
}
