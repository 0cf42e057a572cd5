package cli

import (
	"context"
	"flag"
	"fmt"

	"cordial/internal/crm"
)

func newActivityCommand(app *App) *Command {
	group := newGroup("activity", "Manage activities in the active organization")

	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	listContact := listFlags.String("contact", "", "Filter by contact id")
	listDeal := listFlags.String("deal", "", "Filter by deal id")
	listOpen := listFlags.Bool("open", false, "Only incomplete activities")
	listDone := listFlags.Bool("done", false, "Only completed activities")
	group.add(&Command{
		Name:        "list",
		Description: "List activities",
		Flags:       listFlags,
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			opts := crm.ActivityListOptions{ContactID: *listContact, DealID: *listDeal}
			if *listOpen {
				completed := false
				opts.Completed = &completed
			}
			if *listDone {
				completed := true
				opts.Completed = &completed
			}
			activities, stale, err := listWithFallback(app, active.Org.ID, "activities", func() ([]crm.Activity, error) {
				return app.Client.Activities.List(ctx, opts)
			})
			if err != nil {
				return friendlyError(err)
			}
			staleNotice(app.Out, stale)
			if len(activities) == 0 {
				fmt.Fprintln(app.Out, "No activities")
				return nil
			}
			t := newTable(app.Out, "ID", "TYPE", "TITLE", "PRIORITY", "DUE", "DONE")
			for _, a := range activities {
				done := " "
				if a.Completed {
					done = "x"
				}
				t.row(a.ID, string(a.Type), truncate(a.Title, 40), string(a.Priority), formatTime(a.DueDate), done)
			}
			t.flush()
			return nil
		},
	})

	group.add(&Command{
		Name:        "show",
		Description: "Show one activity",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial activity show <activity-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			a, err := app.Client.Activities.Get(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "[%s] %s\n", a.Type, a.Title)
			fmt.Fprintf(app.Out, "  contact:  %s\n", a.ContactID)
			if a.DealID != "" {
				fmt.Fprintf(app.Out, "  deal:     %s\n", a.DealID)
			}
			fmt.Fprintf(app.Out, "  priority: %s\n", a.Priority)
			fmt.Fprintf(app.Out, "  due:      %s\n", formatTime(a.DueDate))
			fmt.Fprintf(app.Out, "  done:     %t\n", a.Completed)
			if a.Description != "" {
				fmt.Fprintf(app.Out, "  about:    %s\n", a.Description)
			}
			return nil
		},
	})

	createFlags := flag.NewFlagSet("create", flag.ContinueOnError)
	createContact := createFlags.String("contact", "", "Contact id")
	createDeal := createFlags.String("deal", "", "Deal id")
	createType := createFlags.String("type", string(crm.ActivityTask), "Activity type (Call, Email, Meeting, Note, Task)")
	createTitle := createFlags.String("title", "", "Title")
	createDesc := createFlags.String("description", "", "Description")
	createDue := createFlags.String("due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	createPriority := createFlags.String("priority", string(crm.PriorityMedium), "Priority (Low, Medium, High)")
	group.add(&Command{
		Name:        "create",
		Description: "Create an activity (editor or above)",
		Flags:       createFlags,
		Run: func(ctx context.Context, args []string) error {
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			if *createContact == "" || *createTitle == "" {
				return fmt.Errorf("create requires -contact and -title")
			}
			due, err := parseDate(*createDue)
			if err != nil {
				return err
			}
			a, err := app.Client.Activities.Create(ctx, crm.ActivityCreate{
				ContactID:   *createContact,
				DealID:      *createDeal,
				Type:        crm.ActivityType(*createType),
				Title:       *createTitle,
				Description: *createDesc,
				DueDate:     due,
				Priority:    crm.Priority(*createPriority),
			})
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Created activity %s (%s)\n", a.ID, a.Title)
			return nil
		},
	})

	updateFlags := flag.NewFlagSet("update", flag.ContinueOnError)
	updateTitle := updateFlags.String("title", "", "New title")
	updateDesc := updateFlags.String("description", "", "New description")
	updateDue := updateFlags.String("due", "", "New due date")
	updatePriority := updateFlags.String("priority", "", "New priority")
	group.add(&Command{
		Name:        "update",
		Description: "Update an activity (editor or above)",
		Flags:       updateFlags,
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial activity update <activity-id> [flags]")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			var req crm.ActivityUpdate
			if *updateTitle != "" {
				req.Title = updateTitle
			}
			if *updateDesc != "" {
				req.Description = updateDesc
			}
			if *updatePriority != "" {
				p := crm.Priority(*updatePriority)
				req.Priority = &p
			}
			due, err := parseDate(*updateDue)
			if err != nil {
				return err
			}
			req.DueDate = due

			a, err := app.Client.Activities.Update(ctx, args[0], req)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Updated %s\n", a.Title)
			return nil
		},
	})

	group.add(&Command{
		Name:        "complete",
		Description: "Mark an activity as done (editor or above)",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial activity complete <activity-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			a, err := app.Client.Activities.Complete(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Completed %s\n", a.Title)
			return nil
		},
	})

	group.add(&Command{
		Name:        "delete",
		Description: "Delete an activity (editor or above)",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial activity delete <activity-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			if err := app.Client.Activities.Delete(ctx, args[0]); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Activity deleted")
			return nil
		},
	})

	return group
}
