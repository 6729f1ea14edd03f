package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/synapse/internal/errors"
)

// DiagnosticReporter renders generator errors with their location,
// context and suggestions
type DiagnosticReporter struct {
	verbose   bool
	out       io.Writer
	useColors bool
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose:   verbose,
		out:       os.Stderr,
		useColors: !color.NoColor,
	}
}

// SetOutput redirects the reporter and turns colors off
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
	r.useColors = false
}

var (
	warningMark  = color.New(color.FgYellow, color.Bold)
	errorHeading = color.New(color.FgRed, color.Bold)
	dimmed       = color.New(color.FgHiBlack)
)

// ReportWarning prints a single warning line followed by its suggestions
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	fmt.Fprintf(r.out, "%s%s\n", r.paint(warningMark, "! "), message)
	for _, suggestion := range suggestions {
		fmt.Fprintf(r.out, "  %s\n", r.paint(dimmed, suggestion))
	}
}

// ReportError prints err. Collections are reported one error at a time.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.out, "\n%s\n", r.paint(errorHeading, fmt.Sprintf("Code generation failed with %d errors", multi.Count())))
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "\n[%d/%d]\n", i+1, multi.Count())
			r.reportOne(e)
		}
		return
	}

	fmt.Fprintf(r.out, "\n%s\n", r.paint(errorHeading, "Code generation failed"))
	r.reportOne(err)
}

func (r *DiagnosticReporter) reportOne(err error) {
	var synErr errors.SynapseError
	if !stderrors.As(err, &synErr) {
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
		return
	}

	fmt.Fprintf(r.out, "Type: %s\n", synErr.ErrorCode())
	fmt.Fprintf(r.out, "Message: %s\n", errorMessage(synErr))
	if loc := synErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc)
	}

	if context := synErr.Context(); len(context) > 0 {
		r.printContext(context)
	}
	if suggestions := synErr.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	if r.verbose {
		r.printErrorChain(synErr)
	}
}

// errorMessage strips the location prefix Error() adds
func errorMessage(err errors.SynapseError) string {
	message := err.Error()
	if loc := err.Location(); !loc.IsEmpty() {
		message = strings.TrimPrefix(message, loc.String()+": ")
	}
	return message
}

func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
}

// formatContextKey turns snake_case keys into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		switch {
		case part == "id":
			parts[i] = "ID"
		case len(part) > 0:
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	cause := stderrors.Unwrap(err)
	if cause == nil {
		return
	}

	fmt.Fprintf(r.out, "Error chain:\n")
	for level := 1; cause != nil; level++ {
		fmt.Fprintf(r.out, "   %d. %s\n", level, cause.Error())
		cause = stderrors.Unwrap(cause)
	}
}

func (r *DiagnosticReporter) paint(c *color.Color, s string) string {
	if !r.useColors {
		return s
	}
	return c.Sprint(s)
}
