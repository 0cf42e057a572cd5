package cli

import (
	"context"
	"flag"
	"fmt"

	"cordial/internal/crm"
)

func newMemberCommand(app *App) *Command {
	group := newGroup("member", "Manage members of the active organization")

	updateFlags := flag.NewFlagSet("update", flag.ContinueOnError)
	updateRole := updateFlags.String("role", "", "New role (viewer, editor or admin)")
	updateStatus := updateFlags.String("status", "", "New status (active, inactive, suspended)")
	group.add(&Command{
		Name:        "update",
		Description: "Change a member's role or status (admin only)",
		Flags:       updateFlags,
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial member update <membership-id> [-role ...] [-status ...]")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleAdmin); err != nil {
				return err
			}

			var req crm.MembershipUpdate
			if *updateRole != "" {
				role := crm.Role(*updateRole)
				if !role.Valid() {
					return fmt.Errorf("unknown role %q", *updateRole)
				}
				req.Role = &role
			}
			if *updateStatus != "" {
				status := crm.MembershipStatus(*updateStatus)
				req.Status = &status
			}
			if req.Role == nil && req.Status == nil {
				return fmt.Errorf("nothing to change; pass -role or -status")
			}

			m, err := app.Client.Memberships.Update(ctx, args[0], req)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Member updated: role=%s status=%s\n", m.Role, m.Status)
			return nil
		},
	})

	group.add(&Command{
		Name:        "remove",
		Description: "Remove a member from the active organization (admin only)",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial member remove <membership-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleAdmin); err != nil {
				return err
			}
			if err := app.Client.Memberships.Remove(ctx, args[0]); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Member removed")
			return nil
		},
	})

	group.add(&Command{
		Name:        "show",
		Description: "Show one membership",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial member show <membership-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			m, err := app.Client.Memberships.Get(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "membership %s\n", m.ID)
			fmt.Fprintf(app.Out, "  user:   %s\n", m.UserID)
			fmt.Fprintf(app.Out, "  role:   %s\n", m.Role)
			fmt.Fprintf(app.Out, "  status: %s\n", m.Status)
			fmt.Fprintf(app.Out, "  joined: %s\n", formatTime(m.JoinedAt))
			return nil
		},
	})

	return group
}
