package cli

import (
	"context"
	"fmt"
)

// EnableSecondFactor provisions a TOTP secret, shows it for enrollment in an
// authenticator app and confirms it with a code from that app.
func (a *App) EnableSecondFactor(ctx context.Context) error {
	enrollment, err := a.client.ProvisionSecondFactor(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", describe(err))
		return err
	}

	fmt.Fprintf(a.out, "Secret: %s\nURL: %s\n", enrollment.Secret, enrollment.URL)

	code, err := getSimpleText(a.reader, "Enter the code your authenticator shows", a.out)
	if err != nil {
		return err
	}

	if err := a.client.ConfirmSecondFactor(ctx, code); err != nil {
		fmt.Fprintf(a.out, "Confirmation failed: %s\n", describe(err))
		return err
	}

	fmt.Fprintln(a.out, "Second factor enabled")
	return nil
}

func (a *App) DisableSecondFactor(ctx context.Context) error {
	if err := a.client.DisableSecondFactor(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", describe(err))
		return err
	}
	fmt.Fprintln(a.out, "Second factor disabled")
	return nil
}

func (a *App) SecondFactorStatus(ctx context.Context) error {
	enabled, err := a.client.SecondFactorStatus(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", describe(err))
		return err
	}
	if enabled {
		fmt.Fprintln(a.out, "Second factor: enabled")
	} else {
		fmt.Fprintln(a.out, "Second factor: disabled")
	}
	return nil
}
