package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.email != "" {
		return fmt.Sprintf("(%s)", a.email)
	}
	return ""
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to authguard CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("ag %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: profile, update, passwd, refresh, logout, exit")
			} else {
				fmt.Println("Available commands: register, verify, login, forgot, reset, exit")
			}

		case "register":
			a.Register(ctx)
		case "verify":
			a.Verify(ctx)
		case "login":
			a.Login(ctx)
		case "forgot":
			a.ForgotPassword(ctx)
		case "reset":
			a.ResetPassword(ctx)
		case "profile":
			a.Profile(ctx)
		case "update":
			a.UpdateProfile(ctx)
		case "passwd":
			a.ChangePassword(ctx)
		case "refresh":
			a.Refresh(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}
