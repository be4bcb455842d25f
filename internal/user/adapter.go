package user

import "authportal/internal/shared"

// ProfileFormFromUser fills the profile form from the session user.
func ProfileFormFromUser(u *shared.User) ProfileForm {
	if u == nil {
		return ProfileForm{}
	}
	return ProfileForm{
		Username: u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
	}
}

// UpdateRequestFromProfile maps the form onto the REST body; phone travels as phoneNumber.
func UpdateRequestFromProfile(f ProfileForm) UpdateRequest {
	return UpdateRequest{
		Username:    f.Username,
		Email:       f.Email,
		PhoneNumber: f.Phone,
	}
}

// PatchFromProfile is the session change a successful profile update makes.
func PatchFromProfile(f ProfileForm) shared.UserPatch {
	return shared.UserPatch{
		Name:  shared.StringPtr(f.Username),
		Email: shared.StringPtr(f.Email),
		Phone: shared.StringPtr(f.Phone),
	}
}

// RegisterRequestFromSignUp maps the sign-up form onto the REST body.
func RegisterRequestFromSignUp(f SignUpForm) RegisterRequest {
	return RegisterRequest{
		Username: f.Username,
		Email:    f.Email,
		Password: f.Password,
	}
}
