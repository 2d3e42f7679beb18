package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/registry"
	"github.com/msto63/unilang/pkg/unilang/semantic"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// newHelpCmd replaces cobra's help command. Arguments naming a CLI
// subcommand show its usage, anything else is looked up as an instruction
// command.
func newHelpCmd(opts *options, root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Show help for a CLI subcommand or an instruction command",
		Example: `  unilang help run
  unilang help .math.add`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return root.Help()
			}
			if sub, _, err := root.Find(args); err == nil && sub != root {
				return sub.Help()
			}

			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			text, ok := a.help.CommandByName(args[0])
			if !ok {
				name := strings.TrimPrefix(args[0], ".")
				suggestions := semantic.Suggest(name, registry.Names(a.registry), semantic.DefaultSuggestionDistance)
				for i, s := range suggestions {
					suggestions[i] = "." + s
				}
				ed := types.ErrorDataFrom(uerrors.RoutineNotFound(name, suggestions))
				fmt.Fprintln(cmd.ErrOrStderr(), renderError(ed))
				return exitError{code: codeFor(ed)}
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
