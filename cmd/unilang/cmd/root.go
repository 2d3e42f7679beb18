package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/pipeline"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitUsage is returned for lexical, syntactic and binding errors
	ExitUsage = 2
)

// options holds the persistent flags
type options struct {
	cfgFile    string
	defs       []string
	bestEffort bool
	auditPath  string
	verbose    bool
}

// exitError ends the process with a code after the output was rendered
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "unilang",
		Short: "unilang - Command instruction runner",
		Long: `unilang parses, verifies and executes instruction programs such as

  .math.add a::1 b::2 ;; .echo "done"

against commands declared in YAML, JSON or CUE definition files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: $UNILANG_CONFIG or ./unilang.toml)")
	flags.StringSliceVar(&opts.defs, "defs", nil, "command definition files (YAML, JSON or CUE)")
	flags.BoolVar(&opts.bestEffort, "best-effort", false, "continue after failed instructions")
	flags.StringVar(&opts.auditPath, "audit", "", "write an audit trail to this SQLite database")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRunCmd(opts),
		newReplCmd(opts),
		newListCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	root.SetHelpCommand(newHelpCmd(opts, root))

	return root
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	root := NewRootCmd()
	return exitCode(root, root.ExecuteContext(context.Background()))
}

func exitCode(root *cobra.Command, err error) int {
	if err == nil {
		return ExitOK
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(root.ErrOrStderr(), renderError(types.ErrorDataFrom(err)))
	return codeFor(types.ErrorDataFrom(err))
}

// codeFor maps a failure to its exit code
func codeFor(ed *types.ErrorData) int {
	if ed == nil {
		return ExitOK
	}
	switch ed.Category() {
	case uerrors.CategoryLexical, uerrors.CategorySyntactic, uerrors.CategoryBinding:
		return ExitUsage
	}
	return ExitFailure
}

// programExitCode derives the exit code from the first failure
func programExitCode(res *pipeline.ProgramResult) int {
	return codeFor(res.FirstError())
}
