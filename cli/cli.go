// Package cli is the knucklebone command line: the bot server plus offline
// access to the dice commands and the key-value store.
package cli

import (
	"github.com/spf13/cobra"
)

const Version = "v0.1.0"

type CLI struct {
	root *cobra.Command
}

// options are the persistent flags shared by subcommands.
type options struct {
	dbPath string
	seed   int64
}

func NewCLI() *CLI {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "knucklebone",
		Short:        "A dice bot for Mörk Borg tables",
		Long:         "Knucklebone rolls dice expressions and Mörk Borg checks on Telegram or Discord, and from the command line.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (overrides DB_PATH)")
	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "dice seed (overrides DICE_SEED)")

	registry := newCommandRegistry(opts)
	registry.RegisterCommands(rootCmd)

	return &CLI{root: rootCmd}
}

func (c *CLI) Run() error {
	return c.root.Execute()
}
