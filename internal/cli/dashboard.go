package cli

import (
	"context"
	"fmt"

	"cordial/internal/crm"
)

// stageOrder fixes the pipeline display order.
var stageOrder = []crm.DealStage{
	crm.StageLead,
	crm.StageQualified,
	crm.StageProposal,
	crm.StageNegotiation,
	crm.StageClosedWon,
	crm.StageClosedLost,
}

func newDashboardCommand(app *App) *Command {
	return &Command{
		Name:        "dashboard",
		Description: "Show pipeline stats for the active organization",
		Run: func(ctx context.Context, args []string) error {
			active, err := app.requireOrg(ctx)
			if err != nil {
				return err
			}
			stats, err := app.Client.Dashboard.Stats(ctx)
			if err != nil {
				return friendlyError(err)
			}

			fmt.Fprintf(app.Out, "%s\n\n", active.Org.Name)
			fmt.Fprintf(app.Out, "contacts:       %d\n", stats.TotalContacts)
			fmt.Fprintf(app.Out, "deals:          %d (%d won)\n", stats.TotalDeals, stats.WonDeals)
			fmt.Fprintf(app.Out, "revenue:        %s\n", formatMoney(stats.TotalRevenue))
			fmt.Fprintf(app.Out, "pipeline value: %s\n", formatMoney(stats.PipelineValue))

			if len(stats.DealsByStage) > 0 {
				fmt.Fprintln(app.Out)
				t := newTable(app.Out, "STAGE", "DEALS")
				for _, stage := range stageOrder {
					if n, ok := stats.DealsByStage[stage]; ok {
						t.row(string(stage), fmt.Sprintf("%d", n))
					}
				}
				t.flush()
			}
			return nil
		},
	}
}
