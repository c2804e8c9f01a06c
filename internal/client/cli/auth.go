package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// describe turns client errors into short user-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "access denied"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrAlreadyExists):
		return "already exists"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "not logged in"
	}
	return err.Error()
}

// Register prompts for email, display name and password and creates a local
// account. The new account is logged in right away.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter display name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.client.Register(ctx, email, name, password); err != nil {
		fmt.Fprintf(a.out, "Registration unsuccessful: %s\n", describe(err))
		return err
	}

	a.email = email
	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for email and password. When the account has a second
// factor, it also asks for the current one-time code.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", describe(err))
		return err
	}

	if resp.State == rpc.StateAwaitingSecondFactor {
		code, err := getSimpleText(a.reader, "Enter one-time code from your authenticator", a.out)
		if err != nil {
			return err
		}
		if _, err := a.client.CompleteSecondFactor(ctx, resp.SubjectID, code); err != nil {
			fmt.Fprintf(a.out, "Login unsuccessful: %s\n", describe(err))
			return err
		}
	}

	a.email = email
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	a.email = ""
	if err != nil {
		fmt.Fprintf(a.out, "Logout: %s\n", describe(err))
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the subject and roles of the current credential.
func (a *App) WhoAmI(ctx context.Context) error {
	info, err := a.client.WhoAmI(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", describe(err))
		return err
	}
	fmt.Fprintf(a.out, "Subject: %s\nRoles: %v\nExpires: %s\n", info.SubjectID, info.Roles, info.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

// Activity prints the per-day login counters.
func (a *App) Activity(ctx context.Context) error {
	days, err := a.client.LoginActivity(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", describe(err))
		return err
	}
	if len(days) == 0 {
		fmt.Fprintln(a.out, "No logins recorded")
		return nil
	}
	for _, d := range days {
		fmt.Fprintf(a.out, "%s  %d\n", d.Day, d.Count)
	}
	return nil
}
