package cli

import (
	"context"
	"flag"
	"fmt"

	"cordial/internal/crm"
)

func newContactCommand(app *App) *Command {
	group := newGroup("contact", "Manage contacts in the active organization")

	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	listSearch := listFlags.String("search", "", "Filter by name, email or company")
	group.add(&Command{
		Name:        "list",
		Description: "List contacts",
		Flags:       listFlags,
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			contacts, stale, err := listWithFallback(app, active.Org.ID, "contacts", func() ([]crm.Contact, error) {
				return app.Client.Contacts.List(ctx, *listSearch)
			})
			if err != nil {
				return friendlyError(err)
			}
			staleNotice(app.Out, stale)
			if len(contacts) == 0 {
				fmt.Fprintln(app.Out, "No contacts")
				return nil
			}
			t := newTable(app.Out, "ID", "NAME", "EMAIL", "COMPANY", "PHONE")
			for _, c := range contacts {
				t.row(c.ID, c.FirstName+" "+c.LastName, c.Email, c.Company, c.Phone)
			}
			t.flush()
			return nil
		},
	})

	group.add(&Command{
		Name:        "show",
		Description: "Show one contact",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial contact show <contact-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			c, err := app.Client.Contacts.Get(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "%s %s <%s>\n", c.FirstName, c.LastName, c.Email)
			if c.Company != "" {
				fmt.Fprintf(app.Out, "  company:  %s", c.Company)
				if c.Position != "" {
					fmt.Fprintf(app.Out, " (%s)", c.Position)
				}
				fmt.Fprintln(app.Out)
			}
			if c.Phone != "" {
				fmt.Fprintf(app.Out, "  phone:    %s\n", c.Phone)
			}
			if c.Address != "" {
				fmt.Fprintf(app.Out, "  address:  %s\n", c.Address)
			}
			if c.Notes != "" {
				fmt.Fprintf(app.Out, "  notes:    %s\n", c.Notes)
			}
			return nil
		},
	})

	createFlags := flag.NewFlagSet("create", flag.ContinueOnError)
	createFirst := createFlags.String("first", "", "First name")
	createLast := createFlags.String("last", "", "Last name")
	createEmail := createFlags.String("email", "", "Email address")
	createPhone := createFlags.String("phone", "", "Phone number")
	createCompany := createFlags.String("company", "", "Company")
	createPosition := createFlags.String("position", "", "Job title")
	createNotes := createFlags.String("notes", "", "Free-form notes")
	group.add(&Command{
		Name:        "create",
		Description: "Create a contact (editor or above)",
		Flags:       createFlags,
		Run: func(ctx context.Context, args []string) error {
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			if *createFirst == "" || *createEmail == "" {
				return fmt.Errorf("create requires -first and -email")
			}
			c, err := app.Client.Contacts.Create(ctx, crm.ContactCreate{
				FirstName: *createFirst,
				LastName:  *createLast,
				Email:     *createEmail,
				Phone:     *createPhone,
				Company:   *createCompany,
				Position:  *createPosition,
				Notes:     *createNotes,
			})
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Created contact %s (%s %s)\n", c.ID, c.FirstName, c.LastName)
			return nil
		},
	})

	updateFlags := flag.NewFlagSet("update", flag.ContinueOnError)
	updateFirst := updateFlags.String("first", "", "New first name")
	updateLast := updateFlags.String("last", "", "New last name")
	updateEmail := updateFlags.String("email", "", "New email address")
	updatePhone := updateFlags.String("phone", "", "New phone number")
	updateCompany := updateFlags.String("company", "", "New company")
	updatePosition := updateFlags.String("position", "", "New job title")
	updateNotes := updateFlags.String("notes", "", "New notes")
	group.add(&Command{
		Name:        "update",
		Description: "Update a contact (editor or above)",
		Flags:       updateFlags,
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial contact update <contact-id> [flags]")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			var req crm.ContactUpdate
			set := func(dst **string, v *string) {
				if *v != "" {
					*dst = v
				}
			}
			set(&req.FirstName, updateFirst)
			set(&req.LastName, updateLast)
			set(&req.Email, updateEmail)
			set(&req.Phone, updatePhone)
			set(&req.Company, updateCompany)
			set(&req.Position, updatePosition)
			set(&req.Notes, updateNotes)
			c, err := app.Client.Contacts.Update(ctx, args[0], req)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Updated %s %s\n", c.FirstName, c.LastName)
			return nil
		},
	})

	group.add(&Command{
		Name:        "delete",
		Description: "Delete a contact (editor or above)",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial contact delete <contact-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			if err := app.Client.Contacts.Delete(ctx, args[0]); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Contact deleted")
			return nil
		},
	})

	return group
}
