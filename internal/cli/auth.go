package cli

import (
	"context"
	"flag"
	"fmt"

	"cordial/internal/engine/session"
)

func newLoginCommand(app *App) *Command {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	email := flags.String("email", "", "Account email")
	password := flags.String("password", "", "Account password")
	provider := flags.String("provider", "", "OAuth provider to sign in with instead of a password")

	return &Command{
		Name:        "login",
		Description: "Sign in with email/password or an OAuth provider",
		Flags:       flags,
		Run: func(ctx context.Context, args []string) error {
			if *provider != "" {
				ctx, cancel := context.WithTimeout(ctx, session.WaitTimeout)
				defer cancel()
				user, err := app.Session.LoginWithOAuth(ctx, *provider, app.Config.OAuth.CallbackAddr, openBrowser)
				if err != nil {
					return friendlyError(err)
				}
				fmt.Fprintf(app.Out, "Logged in as %s (%s) via %s\n", user.FullName, user.Email, *provider)
				return nil
			}

			if *email == "" || *password == "" {
				return fmt.Errorf("login requires -email and -password (or -provider)")
			}
			user, err := app.Session.Login(ctx, *email, *password)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Logged in as %s (%s)\n", user.FullName, user.Email)
			return nil
		},
	}
}

func newLogoutCommand(app *App) *Command {
	return &Command{
		Name:        "logout",
		Description: "Sign out and clear local session state",
		Run: func(ctx context.Context, args []string) error {
			if err := app.Session.Logout(ctx); err != nil {
				return err
			}
			if app.Cache != nil {
				if err := app.Cache.Reset(); err != nil {
					return err
				}
			}
			fmt.Fprintln(app.Out, "Logged out")
			return nil
		},
	}
}

func newLogoutAllCommand(app *App) *Command {
	return &Command{
		Name:        "logout-all",
		Description: "Sign out of every device, then clear local state",
		Run: func(ctx context.Context, args []string) error {
			if err := app.Session.LogoutAll(ctx); err != nil {
				return err
			}
			if app.Cache != nil {
				if err := app.Cache.Reset(); err != nil {
					return err
				}
			}
			fmt.Fprintln(app.Out, "Logged out everywhere")
			return nil
		},
	}
}

func newRegisterCommand(app *App) *Command {
	flags := flag.NewFlagSet("register", flag.ContinueOnError)
	email := flags.String("email", "", "Account email")
	password := flags.String("password", "", "Account password (12+ characters)")
	fullName := flags.String("name", "", "Full name")
	inviteCode := flags.String("invite", "", "Invite code to join an organization")

	return &Command{
		Name:        "register",
		Description: "Create an account and sign in",
		Flags:       flags,
		Run: func(ctx context.Context, args []string) error {
			if *email == "" || *password == "" || *fullName == "" {
				return fmt.Errorf("register requires -email, -password and -name")
			}
			user, err := app.Session.Register(ctx, *email, *password, *fullName, *inviteCode)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Welcome, %s. A verification email is on its way to %s.\n", user.FullName, user.Email)
			return nil
		},
	}
}

func newWhoamiCommand(app *App) *Command {
	return &Command{
		Name:        "whoami",
		Description: "Show the signed-in account",
		Run: func(ctx context.Context, args []string) error {
			user, err := app.Session.CurrentUser(ctx)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "%s <%s>\n", user.FullName, user.Email)
			if !user.IsVerified {
				fmt.Fprintln(app.Out, "email not verified")
			}
			return nil
		},
	}
}

// newAuthCommand groups the account-maintenance endpoints.
func newAuthCommand(app *App) *Command {
	group := newGroup("auth", "Account maintenance (passwords, verification, providers)")

	group.add(&Command{
		Name:        "providers",
		Description: "List available OAuth providers",
		Run: func(ctx context.Context, args []string) error {
			providers, err := app.Client.Auth.Providers(ctx)
			if err != nil {
				return friendlyError(err)
			}
			if len(providers) == 0 {
				fmt.Fprintln(app.Out, "No OAuth providers configured")
				return nil
			}
			for _, p := range providers {
				fmt.Fprintf(app.Out, "%s\t%s\n", p.Name, p.DisplayName)
			}
			return nil
		},
	})

	group.add(&Command{
		Name:        "oauth",
		Description: "Sign in with an OAuth provider",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial auth oauth <provider>")
			}
			ctx, cancel := context.WithTimeout(ctx, session.WaitTimeout)
			defer cancel()
			user, err := app.Session.LoginWithOAuth(ctx, args[0], app.Config.OAuth.CallbackAddr, openBrowser)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Logged in as %s (%s) via %s\n", user.FullName, user.Email, args[0])
			return nil
		},
	})

	forgotFlags := flag.NewFlagSet("forgot-password", flag.ContinueOnError)
	forgotEmail := forgotFlags.String("email", "", "Account email")
	group.add(&Command{
		Name:        "forgot-password",
		Description: "Request a password reset email",
		Flags:       forgotFlags,
		Run: func(ctx context.Context, args []string) error {
			if *forgotEmail == "" {
				return fmt.Errorf("forgot-password requires -email")
			}
			if err := app.Client.Auth.ForgotPassword(ctx, *forgotEmail); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "If that account exists, a reset email has been sent")
			return nil
		},
	})

	resetFlags := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	resetToken := resetFlags.String("token", "", "Reset token from the email")
	resetPassword := resetFlags.String("password", "", "New password")
	group.add(&Command{
		Name:        "reset-password",
		Description: "Set a new password using a reset token",
		Flags:       resetFlags,
		Run: func(ctx context.Context, args []string) error {
			if *resetToken == "" || *resetPassword == "" {
				return fmt.Errorf("reset-password requires -token and -password")
			}
			if err := app.Client.Auth.ResetPassword(ctx, *resetToken, *resetPassword); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Password updated; sign in again")
			return nil
		},
	})

	changeFlags := flag.NewFlagSet("change-password", flag.ContinueOnError)
	currentPassword := changeFlags.String("current", "", "Current password")
	newPassword := changeFlags.String("new", "", "New password")
	group.add(&Command{
		Name:        "change-password",
		Description: "Change the signed-in account's password",
		Flags:       changeFlags,
		Run: func(ctx context.Context, args []string) error {
			if *currentPassword == "" || *newPassword == "" {
				return fmt.Errorf("change-password requires -current and -new")
			}
			if err := app.Client.Auth.ChangePassword(ctx, *currentPassword, *newPassword); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Password changed")
			return nil
		},
	})

	verifyFlags := flag.NewFlagSet("verify-email", flag.ContinueOnError)
	verifyToken := verifyFlags.String("token", "", "Verification token from the email")
	group.add(&Command{
		Name:        "verify-email",
		Description: "Confirm an email address with its verification token",
		Flags:       verifyFlags,
		Run: func(ctx context.Context, args []string) error {
			if *verifyToken == "" {
				return fmt.Errorf("verify-email requires -token")
			}
			if err := app.Client.Auth.VerifyEmail(ctx, *verifyToken); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Email verified")
			return nil
		},
	})

	resendFlags := flag.NewFlagSet("resend-verification", flag.ContinueOnError)
	resendEmail := resendFlags.String("email", "", "Account email")
	group.add(&Command{
		Name:        "resend-verification",
		Description: "Resend the verification email",
		Flags:       resendFlags,
		Run: func(ctx context.Context, args []string) error {
			if *resendEmail == "" {
				return fmt.Errorf("resend-verification requires -email")
			}
			if err := app.Client.Auth.ResendVerification(ctx, *resendEmail); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Verification email sent")
			return nil
		},
	})

	return group
}
