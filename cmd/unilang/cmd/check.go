package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/unilang/pkg/unilang/types"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <program>",
		Short: "Validate a program without executing it",
		Long: `Parse the program, resolve every command and bind its arguments.
Nothing is executed. The exit code is 2 for lexical, syntactic and
binding errors and 1 for unknown commands.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := programText(cmd, args)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.pipeline.ValidateCommand(program); err != nil {
				ed := types.ErrorDataFrom(err)
				fmt.Fprintln(cmd.ErrOrStderr(), renderError(ed))
				return exitError{code: codeFor(ed)}
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("ok"))
			return nil
		},
	}
}
