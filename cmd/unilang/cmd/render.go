package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/unilang/pkg/unilang/pipeline"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
)

// Styles
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	codeStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	okStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)
)

// renderResult writes outputs to out and failures to errOut, in
// instruction order
func renderResult(out, errOut io.Writer, res *pipeline.ProgramResult) {
	multi := len(res.Results) > 1
	for i := range res.Results {
		r := &res.Results[i]
		if r.Error != nil {
			if multi {
				fmt.Fprintln(errOut, mutedStyle.Render(fmt.Sprintf("[%d] %s", r.Index, r.Text)))
			}
			fmt.Fprintln(errOut, renderError(r.Error))
			continue
		}
		if r.Output == nil || r.Output.Content == "" {
			continue
		}
		content := r.Output.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		fmt.Fprint(out, content)
	}
}

// renderError formats ErrorData as "error[CODE]: message" followed by its
// location and details
func renderError(ed *types.ErrorData) string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("error"))
	b.WriteString(codeStyle.Render("[" + string(ed.Code) + "]"))
	b.WriteString(": ")
	b.WriteString(ed.Message)

	if ed.Location != nil {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  at %d..%d", ed.Location.Start, ed.Location.End)))
	}

	keys := make([]string, 0, len(ed.Details))
	for k := range ed.Details {
		if k == "help" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s: %v", k, ed.Details[k])))
	}
	return b.String()
}
