package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dkurosov/authguard/internal/client/api"
	"github.com/dkurosov/authguard/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a new account's details and creates it. The account
// starts unverified: the server mails a code that must be confirmed with the
// verify command before logging in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Register(ctx, email, string(password), firstName, lastName); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Account created. Check your mail for the verification code.")
	return nil
}

// Verify prompts for the emailed code and activates the account.
func (a *App) Verify(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter verification code", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.api.VerifyAccount(ctx, code); err != nil {
		log.Printf("Verification unsuccessful: %s", err.Error())
		return err
	}
	fmt.Println("Account verified. You can log in now.")
	return nil
}

// Login prompts for credentials and authenticates against the server.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, email, string(password)); err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			log.Printf("Server unavailable: %s", err.Error())
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	a.email = email
	log.Printf("Login successful")
	return nil
}

// ForgotPassword requests a password-reset code for an email address.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.api.ForgottenPassword(ctx, email); err != nil {
		return err
	}
	fmt.Println("If the address is registered, a reset code has been sent.")
	return nil
}

// ResetPassword redeems a reset code and sets a new password.
func (a *App) ResetPassword(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter reset code", os.Stdout)
	if err != nil {
		return err
	}

	newPassword, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	confirm, err := getPassword(os.Stdout, "Confirm new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.api.ResetPassword(ctx, code, string(newPassword), string(confirm)); err != nil {
		log.Printf("Password reset unsuccessful: %s", err.Error())
		return err
	}
	fmt.Println("Password updated.")
	return nil
}

// ChangePassword runs the authenticated password-update flow: request a code,
// then confirm it together with the current and new passwords.
func (a *App) ChangePassword(ctx context.Context) error {
	if err := a.api.RequestPasswordUpdate(ctx); err != nil {
		return err
	}
	fmt.Println("A confirmation code has been sent to your mail.")

	code, err := getSimpleText(a.reader, "Enter confirmation code", os.Stdout)
	if err != nil {
		return err
	}

	current, err := getPassword(os.Stdout, "Enter current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	newPassword, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	confirm, err := getPassword(os.Stdout, "Confirm new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.api.ChangePassword(ctx, code, string(current), string(newPassword), string(confirm)); err != nil {
		log.Printf("Password change unsuccessful: %s", err.Error())
		return err
	}
	fmt.Println("Password updated.")
	return nil
}

// Refresh rotates the session's token pair.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.api.Refresh(ctx); err != nil {
		log.Printf("Refresh unsuccessful: %s", err.Error())
		return err
	}
	fmt.Println("Session refreshed.")
	return nil
}

// Logout invalidates the session server-side and clears local state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		log.Printf("Logout error: %s", err.Error())
	}
	a.email = ""
	return nil
}
