package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// Profile fetches and prints the authenticated account.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.api.Profile(ctx)
	if err != nil {
		log.Printf("Error fetching profile: %s", err.Error())
		return err
	}

	fmt.Printf("Email:      %s\n", p.Email)
	fmt.Printf("First name: %s\n", p.FirstName)
	fmt.Printf("Last name:  %s\n", p.LastName)
	fmt.Printf("Status:     %s\n", p.Status)
	return nil
}

// UpdateProfile prompts for new name fields and saves them.
func (a *App) UpdateProfile(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.UpdateProfile(ctx, firstName, lastName); err != nil {
		log.Printf("Error updating profile: %s", err.Error())
		return err
	}
	fmt.Println("Profile updated.")
	return nil
}
