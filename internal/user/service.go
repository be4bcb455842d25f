// File: internal/user/service.go
package user

import (
	"context"

	"authportal/internal/common"
	"authportal/internal/form"
	"authportal/internal/nav"
	"authportal/internal/notification"
	"authportal/internal/shared"

	"go.uber.org/zap"
)

const (
	signUpSuccessMessage  = "Successfully Registered!"
	profileSuccessMessage = "Profile Updated!"
)

// Registrar creates accounts on the remote API.
type Registrar interface {
	Register(ctx context.Context, req RegisterRequest) (*RemoteUser, error)
}

// ProfileUpdater changes profiles on the remote API.
type ProfileUpdater interface {
	Update(ctx context.Context, id string, req UpdateRequest) (*RemoteUser, error)
}

// Account is the part of the auth service the screens use.
type Account interface {
	CurrentUser() *shared.User
	UpdateUser(ctx context.Context, patch shared.UserPatch)
	SignOut(ctx context.Context) error
}

// SignUpScreen registers a new account and sends the user back to sign in.
// Registering does not sign the user in.
type SignUpScreen struct {
	ctrl *form.Controller[SignUpForm, *RemoteUser]
}

func NewSignUpScreen(api Registrar, delayed *nav.Delayed, notifier notification.Notifier, logger *zap.Logger) *SignUpScreen {
	return &SignUpScreen{
		ctrl: form.New(SignUpForm{}, form.Options[SignUpForm, *RemoteUser]{
			Name:      "signup",
			Validator: SignUpSchema,
			Submit: func(ctx context.Context, v SignUpForm) (*RemoteUser, error) {
				return api.Register(ctx, RegisterRequestFromSignUp(v))
			},
			SuccessMessage: signUpSuccessMessage,
			Redirect:       nav.RouteSignIn,
			Delayed:        delayed,
			Notifier:       notifier,
			Logger:         logger,
		}),
	}
}

func (s *SignUpScreen) Submit(ctx context.Context, values SignUpForm) form.Result[*RemoteUser] {
	return s.ctrl.Submit(ctx, values)
}

// State returns the screen state with the password blanked.
func (s *SignUpScreen) State() SignUpState {
	snap := s.ctrl.State()
	snap.Values.Password = ""
	return SignUpState{Form: snap}
}

func (s *SignUpScreen) Close() { s.ctrl.Close() }

// ProfileScreen edits the signed-in user's profile. Only password accounts
// may edit; federated accounts get a disabled form.
type ProfileScreen struct {
	ctrl       *form.Controller[ProfileForm, *RemoteUser]
	account    Account
	avatarBase string
	logger     *zap.Logger
}

func NewProfileScreen(
	api ProfileUpdater,
	account Account,
	delayed *nav.Delayed,
	notifier notification.Notifier,
	avatarBase string,
	logger *zap.Logger,
) *ProfileScreen {
	s := &ProfileScreen{account: account, avatarBase: avatarBase, logger: logger.Named("profile")}
	s.ctrl = form.New(ProfileFormFromUser(account.CurrentUser()), form.Options[ProfileForm, *RemoteUser]{
		Name:      "profile",
		Validator: ProfileSchema,
		Gate:      s.gate,
		Submit: func(ctx context.Context, v ProfileForm) (*RemoteUser, error) {
			u := account.CurrentUser()
			if u == nil {
				return nil, common.ErrNotSignedIn
			}
			return api.Update(ctx, u.ID, UpdateRequestFromProfile(v))
		},
		Effects: []form.Effect[ProfileForm, *RemoteUser]{
			func(ctx context.Context, v ProfileForm, _ *RemoteUser) {
				account.UpdateUser(ctx, PatchFromProfile(v))
			},
		},
		SuccessMessage: profileSuccessMessage,
		Redirect:       nav.RouteBack,
		Delayed:        delayed,
		Notifier:       notifier,
		Logger:         logger,
	})
	return s
}

func (s *ProfileScreen) gate() error {
	u := s.account.CurrentUser()
	if u == nil {
		return common.ErrNotSignedIn
	}
	if !u.Editable() {
		return common.ErrEditingDisabled
	}
	return nil
}

// Load refills the form from the session user.
func (s *ProfileScreen) Load() {
	s.ctrl.Reset(ProfileFormFromUser(s.account.CurrentUser()))
}

func (s *ProfileScreen) Submit(ctx context.Context, values ProfileForm) form.Result[*RemoteUser] {
	return s.ctrl.Submit(ctx, values)
}

func (s *ProfileScreen) State() ProfileState {
	u := s.account.CurrentUser()
	return ProfileState{
		Form:      s.ctrl.State(),
		Editable:  u.Editable(),
		AvatarURL: AvatarURL(s.avatarBase, u),
	}
}

// SelectAvatar would upload a new picture; uploads are not supported.
func (s *ProfileScreen) SelectAvatar(ctx context.Context, filename string) error {
	s.logger.Info("Avatar upload requested", zap.String("file", filename))
	return common.ErrNotImplemented.WithMessage("Changing the profile picture is not available yet.")
}

func (s *ProfileScreen) Close() { s.ctrl.Close() }

// HomeScreen greets the signed-in user.
type HomeScreen struct {
	account    Account
	avatarBase string
	logger     *zap.Logger
}

func NewHomeScreen(account Account, avatarBase string, logger *zap.Logger) *HomeScreen {
	return &HomeScreen{account: account, avatarBase: avatarBase, logger: logger.Named("home")}
}

func (s *HomeScreen) State() (*HomeState, error) {
	u := s.account.CurrentUser()
	if u == nil {
		return nil, common.ErrNotSignedIn
	}
	return &HomeState{
		User:        *u,
		DisplayName: u.DisplayName(),
		AvatarURL:   AvatarURL(s.avatarBase, u),
	}, nil
}

// SignOut ends the session. The local session is always gone afterwards;
// a returned error only describes a failed provider revocation.
func (s *HomeScreen) SignOut(ctx context.Context) error {
	if err := s.account.SignOut(ctx); err != nil {
		s.logger.Warn("Sign-out completed with errors", zap.Error(err))
		return err
	}
	return nil
}
