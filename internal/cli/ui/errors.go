package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/equal-orm/equal/internal/orm/schema"
	"github.com/equal-orm/equal/internal/orm/store"
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Context      string
	Problem      string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates an error message followed by help commands
//
// Example output:
//
//	❌ TABLE MISSING: relation "user" does not exist
//
//	   → Create the tables: equal schema
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	header := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan)
	if opts.NoColor {
		header.DisableColor()
		cyan.DisableColor()
	}

	if opts.Context != "" {
		header.Fprintf(&b, "❌ %s: %s\n", strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "❌ %s\n", opts.Problem)
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// Describe classifies err into error options with hints for the CLI user
func Describe(err error, noColor bool) ErrorOptions {
	opts := ErrorOptions{Problem: err.Error(), NoColor: noColor}

	switch {
	case schema.IsNotFound(err):
		opts.Context = "metadata not found"
		opts.HelpCommands = []string{"Register every entity and repository before opening repositories"}
	case store.IsUndefinedTable(err):
		opts.Context = "table missing"
		opts.HelpCommands = []string{"Create the tables: equal schema"}
	case store.IsUniqueViolation(err), store.IsForeignKeyViolation(err), store.IsNotNullViolation(err):
		opts.Context = "constraint violation"
		opts.HelpCommands = []string{"Recreate the tables: equal schema --reset"}
	default:
		opts.HelpCommands = []string{"Get help: equal --help"}
	}
	return opts
}
