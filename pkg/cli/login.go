package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
)

func newLoginCommand() *Command {
	cmd := &Command{
		Name:        "login",
		Description: "Authenticate against the Streamweave backend",
		Flags:       flag.NewFlagSet("login", flag.ExitOnError),
		Run:         runLogin,
	}

	cmd.Flags.String("email", "", "Account email")
	cmd.Flags.String("password", "", "Account password (prompted when omitted)")

	return cmd
}

func runLogin(args []string) error {
	cmd := newLoginCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	email := cmd.Flags.Lookup("email").Value.String()
	password := cmd.Flags.Lookup("password").Value.String()

	if email == "" {
		return fmt.Errorf("email is required")
	}
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	app.Machine.Bootstrap(ctx)
	if err := app.Machine.Login(ctx, email, password); err != nil {
		return err
	}

	snap := app.Machine.Current()
	fmt.Printf("Logged in as %s (%s)\n", snap.Identity.Email, snap.Identity.Role)
	return nil
}

func newLogoutCommand() *Command {
	return &Command{
		Name:        "logout",
		Description: "End the session and clear the stored credential",
		Flags:       flag.NewFlagSet("logout", flag.ExitOnError),
		Run:         runLogout,
	}
}

func runLogout(args []string) error {
	cmd := newLogoutCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	app.Machine.Bootstrap(ctx)
	app.Machine.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func newWhoamiCommand() *Command {
	return &Command{
		Name:        "whoami",
		Description: "Show the identity behind the current session",
		Flags:       flag.NewFlagSet("whoami", flag.ExitOnError),
		Run:         runWhoami,
	}
}

func runWhoami(args []string) error {
	cmd := newWhoamiCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	snap, err := app.requireAuthenticated(context.Background())
	if err != nil {
		return err
	}
	return printJSON(snap.Identity)
}
