// File: internal/user/model.go
package user

import (
	"authportal/internal/form"
	"authportal/internal/shared"
	"authportal/internal/validation"
)

// SignUpForm is the registration form.
type SignUpForm struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var signUpMessages = validation.Messages{
	"username": {"required": "User Name Mandatory"},
	"email": {
		"required": "Email mandatory",
		"email":    "Enter Proper Email Id!",
	},
	"password": {"required": "Password Mandatory"},
}

// SignUpSchema validates SignUpForm.
var SignUpSchema = validation.NewSchema[SignUpForm](signUpMessages)

// ProfileForm is the profile editing form. Phone is free text.
type ProfileForm struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
}

var profileMessages = validation.Messages{
	"username": {"required": "User Name Mandatory"},
	"email": {
		"required": "E-mail Mandatory",
		"email":    "Email in correct format",
	},
}

// ProfileSchema validates ProfileForm.
var ProfileSchema = validation.NewSchema[ProfileForm](profileMessages)

// RemoteUser is the user as the REST API returns it.
type RemoteUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// RegisterRequest is the body of POST /user.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateRequest is the body of PUT /user/{id}.
type UpdateRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// SignUpState is the sign-up screen as rendered.
type SignUpState struct {
	Form form.Snapshot[SignUpForm] `json:"form"`
}

// ProfileState is the profile screen as rendered.
type ProfileState struct {
	Form      form.Snapshot[ProfileForm] `json:"form"`
	Editable  bool                       `json:"editable"`
	AvatarURL string                     `json:"avatarUrl"`
}

// HomeState is the home screen as rendered.
type HomeState struct {
	User        shared.User `json:"user"`
	DisplayName string      `json:"displayName"`
	AvatarURL   string      `json:"avatarUrl"`
}
