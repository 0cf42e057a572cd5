package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"cordial/internal/crm"
)

func newInviteCommand(app *App) *Command {
	group := newGroup("invite", "Create and manage organization invites")

	createFlags := flag.NewFlagSet("create", flag.ContinueOnError)
	createRole := createFlags.String("role", "viewer", "Role granted on acceptance")
	createEmail := createFlags.String("email", "", "Restrict the invite to one email")
	createExpiry := createFlags.Duration("expires-in", 7*24*time.Hour, "Invite lifetime")
	createMaxUses := createFlags.Int("max-uses", 1, "How many accounts may accept")
	group.add(&Command{
		Name:        "create",
		Description: "Create an invite for the active organization (admin only)",
		Flags:       createFlags,
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleAdmin); err != nil {
				return err
			}
			role := crm.Role(*createRole)
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", *createRole)
			}
			expires := time.Now().Add(*createExpiry)
			inv, err := app.Client.Invites.Create(ctx, crm.InviteCreate{
				OrganizationID: active.Org.ID,
				TargetRole:     role,
				Email:          *createEmail,
				ExpiresAt:      &expires,
				MaxUses:        *createMaxUses,
			})
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Invite code: %s (role %s, expires %s)\n",
				inv.Code, inv.TargetRole, inv.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	})

	group.add(&Command{
		Name:        "list",
		Description: "List invites for the active organization",
		Run: func(ctx context.Context, args []string) error {
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			invites, err := app.Client.Invites.List(ctx)
			if err != nil {
				return friendlyError(err)
			}
			if len(invites) == 0 {
				fmt.Fprintln(app.Out, "No invites")
				return nil
			}
			t := newTable(app.Out, "CODE", "ROLE", "EMAIL", "STATUS", "USES", "EXPIRES")
			for _, inv := range invites {
				email := inv.Email
				if email == "" {
					email = "-"
				}
				t.row(inv.Code, inv.TargetRole.String(), email, string(inv.Status),
					fmt.Sprintf("%d/%d", inv.CurrentUses, inv.MaxUses),
					inv.ExpiresAt.Local().Format("2006-01-02"))
			}
			t.flush()
			return nil
		},
	})

	group.add(&Command{
		Name:        "show",
		Description: "Show one invite by id",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial invite show <invite-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			inv, err := app.Client.Invites.Get(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			printInvite(app, inv)
			return nil
		},
	})

	revokeFlags := flag.NewFlagSet("revoke", flag.ContinueOnError)
	revokeReason := revokeFlags.String("reason", "", "Why the invite is revoked")
	group.add(&Command{
		Name:        "revoke",
		Description: "Revoke an invite (admin only)",
		Flags:       revokeFlags,
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial invite revoke <invite-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleAdmin); err != nil {
				return err
			}
			if err := app.Client.Invites.Revoke(ctx, args[0], *revokeReason); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Invite revoked")
			return nil
		},
	})

	group.add(&Command{
		Name:        "resend",
		Description: "Resend an emailed invite (admin only)",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial invite resend <invite-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleAdmin); err != nil {
				return err
			}
			if err := app.Client.Invites.Resend(ctx, args[0]); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Invite email resent")
			return nil
		},
	})

	group.add(&Command{
		Name:        "accept",
		Description: "Accept an invite code and switch to its organization",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial invite accept <code>")
			}
			result, err := app.Client.Invites.Accept(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Joined as %s\n", result.Role)
			active, err := app.Orgs.Switch(ctx, result.OrganizationID)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Switched to %s\n", active.Org.Name)
			return nil
		},
	})

	group.add(&Command{
		Name:        "peek",
		Description: "Preview an invite code without accepting it",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial invite peek <code>")
			}
			inv, err := app.Client.Invites.Peek(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Invite to %s as %s, from %s\n", inv.OrganizationName, inv.TargetRole, inv.InvitedByName)
			if !inv.IsUsable {
				fmt.Fprintln(app.Out, "This invite can no longer be used")
			}
			return nil
		},
	})

	return group
}

func printInvite(app *App, inv *crm.Invite) {
	fmt.Fprintf(app.Out, "invite %s\n", inv.ID)
	fmt.Fprintf(app.Out, "  code:    %s\n", inv.Code)
	fmt.Fprintf(app.Out, "  role:    %s\n", inv.TargetRole)
	fmt.Fprintf(app.Out, "  status:  %s\n", inv.Status)
	fmt.Fprintf(app.Out, "  uses:    %d/%d\n", inv.CurrentUses, inv.MaxUses)
	fmt.Fprintf(app.Out, "  expires: %s\n", inv.ExpiresAt.Local().Format("2006-01-02 15:04"))
	if inv.Email != "" {
		fmt.Fprintf(app.Out, "  email:   %s\n", inv.Email)
	}
}
