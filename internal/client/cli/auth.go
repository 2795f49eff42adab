package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email and password and creates an account.
// A successful registration also logs the user in, matching the server
// contract which returns a session token with the new account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}

	s, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	a.saveSession(ctx, s.Token, s.User.Name)
	printlnFn(fmt.Sprintf("Welcome, %s!", s.User.Name))
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

	s, err := a.api.Login(ctx, email, password)
	if err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	a.saveSession(ctx, s.Token, s.User.Name)
	printlnFn(fmt.Sprintf("Welcome back, %s!", s.User.Name))
	return nil
}

// Logout drops the cached session. The server keeps no session state, so
// forgetting the token locally is all there is to it.
func (a *App) Logout(ctx context.Context) error {
	a.clearSession(ctx)
	printlnFn("Logged out")
	return nil
}

// Whoami shows the current account as the server sees it.
func (a *App) Whoami(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}

	u, err := a.api.Me(ctx)
	if err != nil {
		a.checkSession(ctx, err)
		printlnFn("Error:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("%s <%s>", u.Name, u.Email))
	if u.LastLogin != nil {
		printlnFn("Last login:", u.LastLogin.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
