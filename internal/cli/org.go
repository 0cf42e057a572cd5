package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"cordial/internal/crm"
	"cordial/internal/engine/orgs"
)

func newOrgCommand(app *App) *Command {
	group := newGroup("org", "Organization management and context switching")

	group.add(&Command{
		Name:        "list",
		Description: "List organizations you belong to",
		Run: func(ctx context.Context, args []string) error {
			memberships, err := app.Client.Organizations.List(ctx)
			if err != nil {
				return friendlyError(err)
			}
			if len(memberships) == 0 {
				fmt.Fprintln(app.Out, "You belong to no organizations")
				return nil
			}
			current := app.Orgs.CurrentOrgID()
			t := newTable(app.Out, "", "NAME", "SLUG", "ROLE", "STATUS")
			for _, m := range memberships {
				marker := " "
				if m.OrganizationID == current {
					marker = "*"
				}
				t.row(marker, m.OrganizationName, m.OrganizationSlug, m.Role.String(), string(m.Status))
			}
			t.flush()
			return nil
		},
	})

	group.add(&Command{
		Name:        "show",
		Description: "Show details of the active organization",
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			org := active.Org
			fmt.Fprintf(app.Out, "%s (%s)\n", org.Name, org.Slug)
			fmt.Fprintf(app.Out, "  id:       %s\n", org.ID)
			fmt.Fprintf(app.Out, "  plan:     %s\n", org.Plan)
			fmt.Fprintf(app.Out, "  your role: %s\n", active.Role)
			if org.Description != "" {
				fmt.Fprintf(app.Out, "  about:    %s\n", org.Description)
			}
			if org.Website != "" {
				fmt.Fprintf(app.Out, "  website:  %s\n", org.Website)
			}
			if org.Industry != "" {
				fmt.Fprintf(app.Out, "  industry: %s\n", org.Industry)
			}
			return nil
		},
	})

	group.add(&Command{
		Name:        "switch",
		Description: "Switch the active organization by id or slug",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial org switch <id-or-slug>")
			}
			active, err := app.Orgs.Switch(ctx, args[0])
			if err != nil {
				var notMember *orgs.NotMemberError
				if errors.As(err, &notMember) {
					return fmt.Errorf("you are not a member of %q; run 'cordial org list'", notMember.Target)
				}
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Switched to %s (%s) as %s\n", active.Org.Name, active.Org.Slug, active.Role)
			return nil
		},
	})

	createFlags := flag.NewFlagSet("create", flag.ContinueOnError)
	createName := createFlags.String("name", "", "Organization name")
	createSlug := createFlags.String("slug", "", "URL slug (derived from the name when empty)")
	createDesc := createFlags.String("description", "", "Short description")
	createWebsite := createFlags.String("website", "", "Website URL")
	createIndustry := createFlags.String("industry", "", "Industry")
	group.add(&Command{
		Name:        "create",
		Description: "Create an organization and switch to it",
		Flags:       createFlags,
		Run: func(ctx context.Context, args []string) error {
			if *createName == "" {
				return fmt.Errorf("create requires -name")
			}
			org, err := app.Client.Organizations.Create(ctx, crm.OrganizationCreate{
				Name:        *createName,
				Slug:        *createSlug,
				Description: *createDesc,
				Website:     *createWebsite,
				Industry:    *createIndustry,
			})
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Created %s (%s)\n", org.Name, org.Slug)
			if _, err := app.Orgs.Switch(ctx, org.ID); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Switched to %s\n", org.Name)
			return nil
		},
	})

	updateFlags := flag.NewFlagSet("update", flag.ContinueOnError)
	updateName := updateFlags.String("name", "", "New name")
	updateDesc := updateFlags.String("description", "", "New description")
	updateWebsite := updateFlags.String("website", "", "New website URL")
	updateIndustry := updateFlags.String("industry", "", "New industry")
	group.add(&Command{
		Name:        "update",
		Description: "Update the active organization (admin only)",
		Flags:       updateFlags,
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleAdmin); err != nil {
				return err
			}
			var req crm.OrganizationUpdate
			if *updateName != "" {
				req.Name = updateName
			}
			if *updateDesc != "" {
				req.Description = updateDesc
			}
			if *updateWebsite != "" {
				req.Website = updateWebsite
			}
			if *updateIndustry != "" {
				req.Industry = updateIndustry
			}
			org, err := app.Client.Organizations.Update(ctx, active.Org.ID, req)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Updated %s\n", org.Name)
			return nil
		},
	})

	deleteFlags := flag.NewFlagSet("delete", flag.ContinueOnError)
	deleteYes := deleteFlags.Bool("yes", false, "Skip the confirmation check")
	group.add(&Command{
		Name:        "delete",
		Description: "Delete the active organization (admin only)",
		Flags:       deleteFlags,
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleAdmin); err != nil {
				return err
			}
			if !*deleteYes {
				return fmt.Errorf("deleting %q removes all of its data; rerun with -yes to confirm", active.Org.Name)
			}
			if err := app.Client.Organizations.Delete(ctx, active.Org.ID); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Deleted %s\n", active.Org.Name)
			app.Orgs.Forget()
			if _, err := app.Orgs.Resolve(ctx); err != nil && !errors.Is(err, orgs.ErrNoOrganizations) {
				return err
			}
			return nil
		},
	})

	group.add(&Command{
		Name:        "members",
		Description: "List members of the active organization",
		Run: func(ctx context.Context, args []string) error {
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			members, err := app.Client.Memberships.List(ctx, "")
			if err != nil {
				return friendlyError(err)
			}
			t := newTable(app.Out, "MEMBERSHIP", "NAME", "EMAIL", "ROLE", "STATUS", "JOINED")
			for _, m := range members {
				t.row(m.ID, m.UserName, m.UserEmail, m.Role.String(), string(m.Status), formatDate(m.JoinedAt))
			}
			t.flush()
			return nil
		},
	})

	leaveFlags := flag.NewFlagSet("leave", flag.ContinueOnError)
	leaveYes := leaveFlags.Bool("yes", false, "Skip the confirmation check")
	group.add(&Command{
		Name:        "leave",
		Description: "Leave the active organization",
		Flags:       leaveFlags,
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			if !*leaveYes {
				return fmt.Errorf("this removes your access to %q; rerun with -yes to confirm", active.Org.Name)
			}
			if err := app.Client.Memberships.Leave(ctx); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Left %s\n", active.Org.Name)
			app.Orgs.Forget()
			if _, err := app.Orgs.Resolve(ctx); err != nil && !errors.Is(err, orgs.ErrNoOrganizations) {
				return err
			}
			return nil
		},
	})

	return group
}
