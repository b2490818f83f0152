package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"knucklebone/commands"
)

func tableCommand(name string) commands.Command {
	for _, c := range commands.Table() {
		if c.Name == name {
			return c
		}
	}
	panic("cli: no command " + name)
}

// newDiceCommand exposes a chat command on the command line. Arguments are
// parsed exactly as a chat message would be.
func newDiceCommand(opts *options, name, short string) *cobra.Command {
	def := tableCommand(name)

	return &cobra.Command{
		Use:   strings.TrimPrefix(def.Usage(), "/"),
		Short: short,
		Long:  def.Description,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := commands.ParseArgs(def, strings.Join(args, " "))
			if err != nil {
				return errors.New(markupStripper.Replace(err.Error()))
			}

			l, err := openLocal(opts)
			if err != nil {
				return err
			}
			defer l.Close()

			reply := l.dispatcher.Dispatch(cmd.Context(), commands.Invocation{
				Command:   def.Name,
				Args:      parsed,
				ChannelID: cliChannel,
			})
			if reply.Ephemeral {
				return errors.New(renderPlain(reply))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlain(reply))
			return nil
		},
	}
}
