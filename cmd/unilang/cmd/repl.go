package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/msto63/unilang/pkg/unilang/types"
)

const replPrompt = "unilang> "

// lineReader yields input lines; io.EOF ends the session
type lineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	scanner *bufio.Scanner
}

func (r *scannerReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read and execute programs line by line",
		Long: `Start an interactive session. Every line is a program; all lines share
one session so values stored with .store.set stay available. Type "exit"
or press Ctrl-D to leave.

When stdin is not a terminal, lines are read without a prompt and the exit
code reflects the most severe failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return a.interactive(cmd.Context(), f)
			}

			in := &scannerReader{scanner: bufio.NewScanner(cmd.InOrStdin())}
			code, err := a.repl(cmd.Context(), in, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if code != ExitOK {
				return exitError{code: code}
			}
			return nil
		},
	}
}

// interactive runs the session on a raw-mode terminal with line editing
func (a *app) interactive(ctx context.Context, f *os.File) error {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	screen := struct {
		io.Reader
		io.Writer
	}{f, os.Stdout}
	t := term.NewTerminal(screen, promptStyle.Render(replPrompt))
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}

	fmt.Fprintln(t, titleStyle.Render("unilang")+mutedStyle.Render(" - type a program, \".\" to list commands, \"exit\" to quit"))
	_, err = a.repl(ctx, t, t, t)
	return err
}

// repl executes lines until EOF or "exit" and returns the exit code of the
// most severe failure
func (a *app) repl(ctx context.Context, in lineReader, out, errOut io.Writer) (int, error) {
	ec := types.NewExecutionContext()
	worst := ExitOK

	for {
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return worst, nil
		}
		if err != nil {
			return worst, err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return worst, nil
		}

		res := a.pipeline.ProcessWithContext(ctx, line, ec)
		renderResult(out, errOut, res)
		if code := programExitCode(res); code > worst {
			worst = code
		}
	}
}
