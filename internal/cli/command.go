package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
)

// Command is one node of the CLI tree. Leaf commands own a FlagSet and a
// Run func; group commands only dispatch to subcommands.
type Command struct {
	Name        string
	Description string
	Flags       *flag.FlagSet
	Run         func(ctx context.Context, args []string) error
	Subcommands map[string]*Command
}

func newGroup(name, description string) *Command {
	return &Command{
		Name:        name,
		Description: description,
		Subcommands: make(map[string]*Command),
	}
}

func (c *Command) add(sub *Command) {
	c.Subcommands[sub.Name] = sub
}

// Execute dispatches args into the tree.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		return c.usage()
	}

	if len(c.Subcommands) > 0 {
		if len(args) == 0 {
			return c.usage()
		}
		sub, ok := c.Subcommands[args[0]]
		if !ok {
			return fmt.Errorf("unknown command: %s %s", c.Name, args[0])
		}
		return sub.Execute(ctx, args[1:])
	}

	if c.Flags != nil {
		if err := c.Flags.Parse(args); err != nil {
			return err
		}
		args = c.Flags.Args()
	}
	return c.Run(ctx, args)
}

func (c *Command) usage() error {
	if len(c.Subcommands) == 0 {
		fmt.Printf("Usage: %s [flags]\n", c.Name)
		if c.Flags != nil {
			c.Flags.PrintDefaults()
		}
		return nil
	}

	fmt.Printf("Usage: %s <command> [args]\n\nCommands:\n", c.Name)
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
