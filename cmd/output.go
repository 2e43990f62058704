package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// stdout receives the reports.
var stdout io.Writer = os.Stdout

// printMarkdown renders a markdown report for the terminal, and writes it as
// HTML too when -html is set. renderErr is the error of the report rendering
// itself, it fails the command.
func printMarkdown(title, md string, renderErr error) subcommands.ExitStatus {
	if renderErr != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", renderErr)
		return subcommands.ExitFailure
	}
	if *htmlFile != "" {
		page, err := renderer.HTML(title, md)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering HTML: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(*htmlFile, []byte(page), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing HTML file %q: %v\n", *htmlFile, err)
			return subcommands.ExitFailure
		}
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		// fall back to raw markdown
		fmt.Fprint(stdout, md)
		return subcommands.ExitSuccess
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return subcommands.ExitSuccess
	}
	fmt.Fprint(stdout, out)
	return subcommands.ExitSuccess
}

// printJSON writes v as indented JSON on stdout.
func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
