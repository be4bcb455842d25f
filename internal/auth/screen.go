// File: internal/auth/screen.go
package auth

import (
	"context"

	"authportal/internal/form"
	"authportal/internal/notification"
	"authportal/internal/shared"

	"go.uber.org/zap"
)

const (
	signInSuccessMessage       = "Signed in successfully!"
	googleSignInSuccessMessage = "Logged in!"
)

// SignInScreen drives the email/password form and the Google button.
// Each has its own submitting flag. There is no redirect here: the routing
// guard moves to home once the session appears.
type SignInScreen struct {
	password *form.Controller[SignInForm, *shared.User]
	google   *form.Controller[struct{}, *shared.User]
}

func NewSignInScreen(svc *Service, notifier notification.Notifier, logger *zap.Logger) *SignInScreen {
	return &SignInScreen{
		password: form.New(SignInForm{}, form.Options[SignInForm, *shared.User]{
			Name:      "signin",
			Validator: SignInSchema,
			Submit: func(ctx context.Context, v SignInForm) (*shared.User, error) {
				return svc.SignInWithPassword(ctx, v.Email, v.Password)
			},
			SuccessMessage: signInSuccessMessage,
			Notifier:       notifier,
			Logger:         logger,
		}),
		google: form.New(struct{}{}, form.Options[struct{}, *shared.User]{
			Name: "signin_google",
			Submit: func(ctx context.Context, _ struct{}) (*shared.User, error) {
				return svc.SignInWithFederatedProvider(ctx)
			},
			SuccessMessage: googleSignInSuccessMessage,
			Notifier:       notifier,
			Logger:         logger,
		}),
	}
}

// Submit signs in with the form values.
func (s *SignInScreen) Submit(ctx context.Context, values SignInForm) form.Result[*shared.User] {
	return s.password.Submit(ctx, values)
}

// SubmitGoogle runs the Google sign-in flow.
func (s *SignInScreen) SubmitGoogle(ctx context.Context) form.Result[*shared.User] {
	return s.google.Submit(ctx, struct{}{})
}

// State returns the screen state with the password blanked.
func (s *SignInScreen) State() SignInState {
	snap := s.password.State()
	snap.Values.Password = ""
	return SignInState{Form: snap, GoogleSubmitting: s.google.Submitting()}
}

func (s *SignInScreen) Close() {
	s.password.Close()
	s.google.Close()
}
