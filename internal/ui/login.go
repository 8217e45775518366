package ui

import (
	"context"
	"fmt"
)

func (r *Runner) loginScreen(ctx context.Context) screen {
	fmt.Fprintln(r.out, "Login (enter 'register' to create an account, blank email to quit)")

	email, ok := r.prompt("Email: ")
	if !ok || email == "" {
		return screenQuit
	}
	if email == "register" {
		return screenRegister
	}

	password, ok := r.prompt("Password: ")
	if !ok {
		return screenQuit
	}

	result, err := r.client.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return screenLogin
	}

	// Admins get a full token straight away; staff must pass the PIN step
	// with the pre-auth token first.
	if !result.RequiresPIN {
		r.session.Init(result.Token, result.User)
		return screenDraft
	}
	return r.pinStep(ctx, result.Token)
}

func (r *Runner) pinStep(ctx context.Context, preToken string) screen {
	for {
		pin, ok := r.prompt("4-digit PIN (blank to cancel): ")
		if !ok {
			return screenQuit
		}
		if pin == "" {
			return screenLogin
		}

		pin = digitsOnly(pin)
		if len(pin) != 4 {
			fmt.Fprintln(r.out, "PIN must be exactly 4 digits.")
			continue
		}

		result, err := r.client.VerifyPIN(ctx, preToken, pin)
		if err != nil {
			fmt.Fprintln(r.out, err)
			continue
		}

		r.session.Init(result.Token, result.User)
		return screenDraft
	}
}

func (r *Runner) registerScreen(ctx context.Context) screen {
	fmt.Fprintln(r.out, "Create account (blank email to go back)")

	displayName, ok := r.prompt("Display name (optional): ")
	if !ok {
		return screenQuit
	}
	email, ok := r.prompt("Email: ")
	if !ok {
		return screenQuit
	}
	if email == "" {
		return screenLogin
	}
	password, ok := r.prompt("Password (min 8 chars): ")
	if !ok {
		return screenQuit
	}

	if err := r.client.Register(ctx, email, password, displayName); err != nil {
		fmt.Fprintln(r.out, err)
		return screenRegister
	}

	fmt.Fprintln(r.out, "Account created, please log in.")
	return screenLogin
}
