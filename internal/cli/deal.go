package cli

import (
	"context"
	"flag"
	"fmt"

	"cordial/internal/crm"
)

func newDealCommand(app *App) *Command {
	group := newGroup("deal", "Manage deals in the active organization")

	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	listStage := listFlags.String("stage", "", "Filter by stage")
	listContact := listFlags.String("contact", "", "Filter by contact id")
	group.add(&Command{
		Name:        "list",
		Description: "List deals",
		Flags:       listFlags,
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			deals, stale, err := listWithFallback(app, active.Org.ID, "deals", func() ([]crm.Deal, error) {
				return app.Client.Deals.List(ctx, crm.DealListOptions{
					Stage:     crm.DealStage(*listStage),
					ContactID: *listContact,
				})
			})
			if err != nil {
				return friendlyError(err)
			}
			staleNotice(app.Out, stale)
			if len(deals) == 0 {
				fmt.Fprintln(app.Out, "No deals")
				return nil
			}
			t := newTable(app.Out, "ID", "TITLE", "STAGE", "VALUE", "PROB", "CLOSES")
			for _, d := range deals {
				t.row(d.ID, truncate(d.Title, 40), string(d.Stage), formatMoney(d.Value),
					fmt.Sprintf("%d%%", d.Probability), formatDate(d.ExpectedCloseDate))
			}
			t.flush()
			return nil
		},
	})

	group.add(&Command{
		Name:        "show",
		Description: "Show one deal",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial deal show <deal-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			d, err := app.Client.Deals.Get(ctx, args[0])
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "%s\n", d.Title)
			fmt.Fprintf(app.Out, "  stage:       %s\n", d.Stage)
			fmt.Fprintf(app.Out, "  value:       %s\n", formatMoney(d.Value))
			fmt.Fprintf(app.Out, "  probability: %d%%\n", d.Probability)
			fmt.Fprintf(app.Out, "  contact:     %s\n", d.ContactID)
			fmt.Fprintf(app.Out, "  closes:      %s\n", formatDate(d.ExpectedCloseDate))
			if d.Description != "" {
				fmt.Fprintf(app.Out, "  about:       %s\n", d.Description)
			}
			return nil
		},
	})

	createFlags := flag.NewFlagSet("create", flag.ContinueOnError)
	createTitle := createFlags.String("title", "", "Deal title")
	createContact := createFlags.String("contact", "", "Contact id")
	createValue := createFlags.Float64("value", 0, "Deal value")
	createStage := createFlags.String("stage", string(crm.StageLead), "Initial stage")
	createProb := createFlags.Int("probability", 0, "Win probability (0-100)")
	createCloses := createFlags.String("closes", "", "Expected close date (YYYY-MM-DD)")
	createDesc := createFlags.String("description", "", "Description")
	group.add(&Command{
		Name:        "create",
		Description: "Create a deal (editor or above)",
		Flags:       createFlags,
		Run: func(ctx context.Context, args []string) error {
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			if *createTitle == "" || *createContact == "" {
				return fmt.Errorf("create requires -title and -contact")
			}
			closes, err := parseDate(*createCloses)
			if err != nil {
				return err
			}
			d, err := app.Client.Deals.Create(ctx, crm.DealCreate{
				Title:             *createTitle,
				ContactID:         *createContact,
				Value:             *createValue,
				Stage:             crm.DealStage(*createStage),
				Probability:       *createProb,
				ExpectedCloseDate: closes,
				Description:       *createDesc,
			})
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Created deal %s (%s)\n", d.ID, d.Title)
			return nil
		},
	})

	updateFlags := flag.NewFlagSet("update", flag.ContinueOnError)
	updateTitle := updateFlags.String("title", "", "New title")
	updateValue := updateFlags.Float64("value", -1, "New value")
	updateStage := updateFlags.String("stage", "", "New stage")
	updateProb := updateFlags.Int("probability", -1, "New win probability")
	updateCloses := updateFlags.String("closes", "", "New expected close date (YYYY-MM-DD)")
	updateDesc := updateFlags.String("description", "", "New description")
	group.add(&Command{
		Name:        "update",
		Description: "Update a deal (editor or above)",
		Flags:       updateFlags,
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial deal update <deal-id> [flags]")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			var req crm.DealUpdate
			if *updateTitle != "" {
				req.Title = updateTitle
			}
			if *updateValue >= 0 {
				req.Value = updateValue
			}
			if *updateStage != "" {
				stage := crm.DealStage(*updateStage)
				req.Stage = &stage
			}
			if *updateProb >= 0 {
				req.Probability = updateProb
			}
			if *updateDesc != "" {
				req.Description = updateDesc
			}
			closes, err := parseDate(*updateCloses)
			if err != nil {
				return err
			}
			req.ExpectedCloseDate = closes

			d, err := app.Client.Deals.Update(ctx, args[0], req)
			if err != nil {
				return friendlyError(err)
			}
			fmt.Fprintf(app.Out, "Updated %s (stage %s)\n", d.Title, d.Stage)
			return nil
		},
	})

	group.add(&Command{
		Name:        "delete",
		Description: "Delete a deal (editor or above)",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: cordial deal delete <deal-id>")
			}
			if _, err := app.requireOrg(ctx); err != nil {
				return err
			}
			if err := app.Orgs.RequireRole(crm.RoleEditor); err != nil {
				return err
			}
			if err := app.Client.Deals.Delete(ctx, args[0]); err != nil {
				return friendlyError(err)
			}
			fmt.Fprintln(app.Out, "Deal deleted")
			return nil
		},
	})

	return group
}
