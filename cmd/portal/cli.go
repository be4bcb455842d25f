// File: cmd/portal/cli.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"authportal/internal/auth"
	"authportal/internal/common"
	"authportal/internal/form"
	"authportal/internal/nav"
	"authportal/internal/notification"
	"authportal/internal/user"
)

type command struct {
	summary string
	run     func(ctx context.Context, p *Portal, args []string, out io.Writer) error
}

// errReported marks a failure whose explanation is already printed.
var errReported = errors.New("reported")

var commands = map[string]command{
	"serve":         {summary: "run the local host API", run: nil},
	"signin":        {summary: "sign in with email and password", run: runSignIn},
	"signin-google": {summary: "sign in with Google in the browser", run: runSignInGoogle},
	"signup":        {summary: "create an account", run: runSignUp},
	"profile":       {summary: "show or edit the profile", run: runProfile},
	"home":          {summary: "show the signed-in user", run: runHome},
	"signout":       {summary: "sign out", run: runSignOut},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// run executes a screen command and returns the process exit code.
func run(ctx context.Context, p *Portal, name string, args []string, out io.Writer) int {
	cmd, ok := commands[name]
	if !ok || cmd.run == nil {
		fmt.Fprintf(out, "unknown command %q\n", name)
		return 2
	}
	err := cmd.run(ctx, p, args, out)
	printNotifications(out, p.Feed)
	if err != nil {
		if !errors.Is(err, errReported) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func runSignIn(ctx context.Context, p *Portal, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res := p.SignIn.Submit(ctx, auth.SignInForm{Email: *email, Password: *password})
	return settle(out, p, res.Status, res.FieldErrors)
}

func runSignInGoogle(ctx context.Context, p *Portal, _ []string, out io.Writer) error {
	fmt.Fprintln(out, "Opening the browser for Google sign-in...")
	res := p.SignIn.SubmitGoogle(ctx)
	return settle(out, p, res.Status, res.FieldErrors)
}

func runSignUp(ctx context.Context, p *Portal, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(out)
	username := fs.String("username", "", "user name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p.Guard.Navigate(nav.RouteSignUp)
	res := p.SignUp.Submit(ctx, user.SignUpForm{Username: *username, Email: *email, Password: *password})
	return settle(out, p, res.Status, res.FieldErrors)
}

func runProfile(ctx context.Context, p *Portal, args []string, out io.Writer) error {
	p.Guard.Navigate(nav.RouteProfile)
	if p.Guard.Current() != nav.RouteProfile {
		return common.ErrNotSignedIn
	}
	p.Profile.Load()
	current := p.Profile.State()

	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(out)
	username := fs.String("username", current.Form.Values.Username, "user name")
	email := fs.String("email", current.Form.Values.Email, "email")
	phone := fs.String("phone", current.Form.Values.Phone, "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NFlag() == 0 {
		fmt.Fprintf(out, "Name:     %s\nEmail:    %s\nPhone:    %s\nAvatar:   %s\nEditable: %t\n",
			current.Form.Values.Username, current.Form.Values.Email, current.Form.Values.Phone,
			current.AvatarURL, current.Editable)
		return nil
	}
	res := p.Profile.Submit(ctx, user.ProfileForm{Username: *username, Email: *email, Phone: *phone})
	if res.Status == form.StatusDisabled {
		return res.Err
	}
	return settle(out, p, res.Status, res.FieldErrors)
}

func runHome(_ context.Context, p *Portal, _ []string, out io.Writer) error {
	state, err := p.Home.State()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s\nEmail:  %s\nAvatar: %s\n", state.DisplayName, state.User.Email, state.AvatarURL)
	return nil
}

func runSignOut(ctx context.Context, p *Portal, _ []string, out io.Writer) error {
	if p.Auth.CurrentUser() == nil {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if err := p.Home.SignOut(ctx); err != nil {
		fmt.Fprintf(out, "Signed out locally; %v\n", err)
		return nil
	}
	fmt.Fprintln(out, "Signed out.")
	return nil
}

// settle prints field errors and waits out a scheduled redirect.
func settle(out io.Writer, p *Portal, status form.Status, fieldErrors map[string]string) error {
	switch status {
	case form.StatusInvalid:
		for _, field := range sortedKeys(fieldErrors) {
			fmt.Fprintf(out, "  %s: %s\n", field, fieldErrors[field])
		}
		return errReported
	case form.StatusOK:
		if p.Delayed.Pending() > 0 {
			printNotifications(out, p.Feed)
			fmt.Fprintf(out, "Continuing in %s...\n", p.Delayed.Delay())
			p.Delayed.Wait()
		}
		fmt.Fprintf(out, "Screen: %s\n", p.Guard.Current())
		return nil
	case form.StatusBusy:
		return common.ErrSubmissionInProgress
	default:
		// The error toast carries the message.
		return errReported
	}
}

func printNotifications(out io.Writer, feed *notification.Feed) {
	for _, n := range feed.Drain() {
		fmt.Fprintf(out, "[%s] %s\n", n.Severity, n.Message)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
