package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/common"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// Register prompts for name, email and a confirmed password and creates an
// account. A successful registration also logs the user in.
func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readNewPassword()
	if err != nil {
		return err
	}

	if _, err := a.auth.Register(ctx, name, email, password); err != nil {
		return err
	}
	a.signedOut.Store(false)

	fmt.Fprintln(a.out, "Account created. You are logged in.")
	return nil
}

// readNewPassword asks for a password twice.
func (a *App) readNewPassword() (string, error) {
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return "", err
	}
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", common.ValidationError("password", "passwords do not match")
	}
	return password, nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	if _, err := a.auth.Login(ctx, email, password); err != nil {
		return err
	}
	a.signedOut.Store(false)

	name := "User"
	if u, err := a.auth.CurrentUser(ctx); err == nil {
		name = u.DisplayName()
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", name)
	return nil
}

// Logout drops the stored session.
func (a *App) Logout(ctx context.Context) error {
	a.signedOut.Store(true)
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the current account and when the session expires.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	s, ok, err := a.auth.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrNotAuthenticated
	}

	fmt.Fprintln(a.out, titleStyle.Render(u.DisplayName()))
	fmt.Fprintln(a.out, field("Email", u.Email))
	fmt.Fprintln(a.out, field("Session", fmt.Sprintf("expires %s (in %s)",
		s.ExpiresAt.Local().Format("15:04:05"),
		s.Remaining(time.Now()).Round(time.Second))))
	return nil
}

// Account edits the display name and optionally the password.
func (a *App) Account(ctx context.Context) error {
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}

	name, err := GetTextWithDefault(a.reader, "Full name", u.FullName, a.out)
	if err != nil {
		return err
	}

	change, err := GetConfirm(a.reader, "Change password?", a.out)
	if err != nil {
		return err
	}
	var password string
	if change {
		if password, err = a.readNewPassword(); err != nil {
			return err
		}
	}

	if _, err := a.auth.UpdateProfile(ctx, name, password, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account updated.")
	return nil
}

// DeleteAccount removes the account after confirmation and re-entering the
// password, then drops every contact the account owned.
func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := GetConfirm(a.reader, "Delete your account and all of its contacts?", a.out)
	if err != nil || !ok {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	userID, err := a.auth.DeleteAccount(ctx, password)
	if err != nil {
		return err
	}
	a.signedOut.Store(true)

	if err := a.contacts.Purge(ctx, userID); err != nil {
		return fmt.Errorf("account deleted, but contacts were kept: %w", err)
	}
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}
