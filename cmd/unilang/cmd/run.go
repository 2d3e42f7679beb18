package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <program>",
		Short: "Execute an instruction program",
		Long: `Execute an instruction program. Instructions are separated by ";;" and
run in order. The program stops at the first failure unless --best-effort
is given. Use "-" to read the program from stdin.`,
		Example: `  unilang run '.math.add a::1 b::2 ;; .echo done'
  echo '.store.set key::a value::1 ;; .store.get key::a' | unilang run -`,
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

			res := a.pipeline.Process(cmd.Context(), program)
			renderResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)

			if code := programExitCode(res); code != ExitOK {
				return exitError{code: code}
			}
			return nil
		},
	}
}

// programText joins args into one program; a single "-" reads stdin
func programText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read program from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.Join(args, " "), nil
}
