package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"knucklebone/database"
)

func newKVCommand(opts *options) *cobra.Command {
	kv := &cobra.Command{
		Use:   "kv",
		Short: "Inspect and edit the bot's key-value store",
	}
	kv.AddCommand(
		newKVGetCommand(opts),
		newKVSetCommand(opts),
		newKVDeleteCommand(opts),
		newKVListCommand(opts),
	)
	return kv
}

func newKVGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a value by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			value, ok, err := db.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newKVSetCommand(opts *options) *cobra.Command {
	var noOverwrite bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a key, replacing any existing value",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			key, value := args[0], strings.Join(args[1:], " ")
			if noOverwrite {
				err = db.Insert(cmd.Context(), key, value)
				if errors.Is(err, database.ErrDuplicateKey) {
					return fmt.Errorf("key %q already exists", key)
				}
			} else {
				err = db.Set(cmd.Context(), key, value)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "fail if the key already exists")
	return cmd
}

func newKVDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func newKVListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all keys with their values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			keys, err := db.Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, key := range keys {
				value, _, err := db.Get(cmd.Context(), key)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", key, value)
			}
			return nil
		},
	}
}
