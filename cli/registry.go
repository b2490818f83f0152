package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type commandRegistry struct {
	opts *options
}

func newCommandRegistry(opts *options) *commandRegistry {
	return &commandRegistry{opts: opts}
}

// GetAllCommands returns every subcommand in the order shown in help.
func (r *commandRegistry) GetAllCommands() []*cobra.Command {
	return []*cobra.Command{
		newServeCommand(),
		newDiceCommand(r.opts, "roll", "Roll a dice expression, e.g. knucklebone roll 4d6kh3"),
		newDiceCommand(r.opts, "reroll", "Roll the last expression rolled from the command line again"),
		newDiceCommand(r.opts, "check", "Mörk Borg check; use -- before a negative modifier: check -- -1 14"),
		newDiceCommand(r.opts, "reaction", "Mörk Borg reaction roll"),
		newKVCommand(r.opts),
		newVersionCommand(),
	}
}

func (r *commandRegistry) RegisterCommands(rootCmd *cobra.Command) {
	for _, cmd := range r.GetAllCommands() {
		rootCmd.AddCommand(cmd)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "knucklebone version %s\n", Version)
		},
	}
}
