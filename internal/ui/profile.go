package ui

import (
	"context"
	"fmt"
)

func (r *Runner) profileScreen(ctx context.Context) screen {
	user, err := r.client.Me(ctx)
	if r.redirected() {
		return screenLogin
	}
	if err != nil {
		fmt.Fprintln(r.out, err)
		return screenDraft
	}

	fmt.Fprintf(r.out, "Profile: user #%d, role %s\n", user.ID, user.Role)
	if user.DisplayName != "" {
		fmt.Fprintf(r.out, "Display name: %s\n", user.DisplayName)
	}
	fmt.Fprintf(r.out, "Email: %s\n", user.Email)

	commands := "name, email, password, back"
	if user.IsAdmin() {
		commands = "name, email, password, pin-set, pin-change, back"
	}

	for {
		fmt.Fprintln(r.out, "Commands:", commands)
		line, ok := r.prompt("me> ")
		if !ok {
			return screenQuit
		}

		switch line {
		case "name":
			name, ok := r.prompt("New display name: ")
			if !ok {
				return screenQuit
			}
			if err := r.client.UpdateDisplayName(ctx, name); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			fmt.Fprintln(r.out, "Display name updated.")

		case "email":
			newEmail, ok := r.prompt("New email: ")
			if !ok {
				return screenQuit
			}
			password, ok := r.prompt("Confirm password: ")
			if !ok {
				return screenQuit
			}
			if err := r.client.UpdateEmail(ctx, newEmail, password); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			fmt.Fprintln(r.out, "Email updated.")

		case "password":
			oldPassword, ok := r.prompt("Old password: ")
			if !ok {
				return screenQuit
			}
			newPassword, ok := r.prompt("New password: ")
			if !ok {
				return screenQuit
			}
			if err := r.client.UpdatePassword(ctx, oldPassword, newPassword); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			fmt.Fprintln(r.out, "Password updated.")

		case "pin-set":
			if !user.IsAdmin() {
				fmt.Fprintln(r.out, "Commands:", commands)
				continue
			}
			pin, ok := r.prompt("New 4-digit PIN: ")
			if !ok {
				return screenQuit
			}
			pin = digitsOnly(pin)
			if len(pin) != 4 {
				fmt.Fprintln(r.out, "PIN must be exactly 4 digits.")
				continue
			}
			if err := r.client.SetPIN(ctx, pin); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			fmt.Fprintln(r.out, "PIN set.")

		case "pin-change":
			if !user.IsAdmin() {
				fmt.Fprintln(r.out, "Commands:", commands)
				continue
			}
			oldPin, ok := r.prompt("Old PIN: ")
			if !ok {
				return screenQuit
			}
			newPin, ok := r.prompt("New 4-digit PIN: ")
			if !ok {
				return screenQuit
			}
			newPin = digitsOnly(newPin)
			if len(newPin) != 4 {
				fmt.Fprintln(r.out, "PIN must be exactly 4 digits.")
				continue
			}
			if err := r.client.ChangePIN(ctx, oldPin, newPin); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			fmt.Fprintln(r.out, "PIN changed.")

		case "back":
			return screenDraft
		case "quit", "exit":
			return screenQuit
		default:
		}
	}
}
