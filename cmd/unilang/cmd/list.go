package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/unilang/pkg/unilang/help"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		verbosity int
		conflicts bool
	)

	cmd := &cobra.Command{
		Use:   "list [prefix]",
		Short: "List available commands",
		Long: `List the registered commands, optionally only those below a namespace
prefix such as ".math". With --conflicts the aggregation conflict report
is printed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if conflicts {
				fmt.Fprintln(out, titleStyle.Render("Aggregation conflicts"))
				fmt.Fprintln(out, a.report.String())
				return nil
			}

			gen := a.help
			if cmd.Flags().Changed("verbosity") {
				gen = help.New(a.registry, help.Verbosity(verbosity))
			}

			if len(args) == 1 {
				fmt.Fprint(out, gen.ListPrefix(strings.TrimPrefix(args[0], ".")))
				return nil
			}
			fmt.Fprint(out, gen.List())
			return nil
		},
	}

	cmd.Flags().IntVar(&verbosity, "verbosity", int(help.Normal), "help verbosity (0, 1 or 2)")
	cmd.Flags().BoolVar(&conflicts, "conflicts", false, "print the aggregation conflict report")
	return cmd
}
