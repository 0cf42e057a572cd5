package cli

import "flag"

// NewRootCommand builds the full command tree.
func NewRootCommand(app *App) *Command {
	root := &Command{
		Name:        "cordial",
		Description: "cordial - a terminal client for your CRM",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("cordial", flag.ContinueOnError),
	}

	root.add(newLoginCommand(app))
	root.add(newLogoutCommand(app))
	root.add(newLogoutAllCommand(app))
	root.add(newRegisterCommand(app))
	root.add(newWhoamiCommand(app))
	root.add(newAuthCommand(app))
	root.add(newOrgCommand(app))
	root.add(newMemberCommand(app))
	root.add(newInviteCommand(app))
	root.add(newContactCommand(app))
	root.add(newDealCommand(app))
	root.add(newActivityCommand(app))
	root.add(newDashboardCommand(app))

	return root
}
