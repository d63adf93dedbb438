// Package output renders gomacro diagnostics and listings for the terminal.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/itsmostafa/gomacro/internal/history"
	"github.com/itsmostafa/gomacro/internal/interp"
	"github.com/itsmostafa/gomacro/internal/lexer"
	"github.com/itsmostafa/gomacro/internal/parser"
	"github.com/itsmostafa/gomacro/internal/token"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	// warnStyle for handler faults
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// caretStyle for the marker under a source column
	caretStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	// boxStyle for the run summary with rounded border
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	// kindStyle for token kinds and variable types
	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))
)

// FormatError renders err. Errors that carry a source position are shown
// with the offending line of src and a caret under the column.
func FormatError(w io.Writer, file, src string, err error) {
	pos, msg, ok := errorPosition(err)
	if !ok {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render("error:"), err)
		return
	}

	label := "error:"
	var re *interp.RuntimeError
	if errors.As(err, &re) {
		label = "runtime error:"
	}
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render(label), msg)
	fmt.Fprintf(w, "  %s %s:%s\n", dimStyle.Render("-->"), file, pos)

	line, ok := sourceLine(src, pos.Line)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%d | ", pos.Line)
	fmt.Fprintf(w, "%s%s\n", dimStyle.Render(gutter), line)
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", len(gutter)), caretStyle.Render(caretPad(line, pos.Column)+"^"))
}

// FormatSuccess writes a one-line success message.
func FormatSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("ok:"), msg)
}

// FormatFault renders a handler-local fault as a warning.
func FormatFault(w io.Writer, f *interp.Fault) {
	fmt.Fprintf(w, "%s %s %s\n", warnStyle.Render("warning:"), dimStyle.Render(f.Pos.String()), f.Error())
}

// FormatTokens writes one token per line with its position and kind.
func FormatTokens(w io.Writer, toks []token.Token) {
	for _, t := range toks {
		lit := t.Literal
		switch t.Kind {
		case token.EOF:
			lit = ""
		case token.Semicolon:
			if lit == "\n" {
				lit = `\n`
			}
		case token.String:
			lit = `"` + lit + `"`
		}
		fmt.Fprintf(w, "%-8s %-10s %s\n", dimStyle.Render(t.Pos.String()), kindStyle.Render(t.Kind.String()), lit)
	}
}

// FormatVars writes every variable in env with its kind.
func FormatVars(w io.Writer, env *interp.Env) {
	names := env.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no variables"))
		return
	}
	for _, name := range names {
		v, _ := env.Get(name)
		fmt.Fprintf(w, "%s %s = %#v\n", kindStyle.Render(v.Kind().String()), name, v)
	}
}

// FormatRunSummary renders the summary box printed after a run.
func FormatRunSummary(w io.Writer, file string, elapsed time.Duration, err error) {
	status := successStyle.Render("OK")
	if err != nil {
		status = errorStyle.Render("FAILED")
	}
	content := fmt.Sprintf("%s\n%s %s  %s %s  %s",
		titleStyle.Render("Run Complete"),
		dimStyle.Render("Script:"), file,
		dimStyle.Render("Duration:"), formatDuration(elapsed),
		status,
	)
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatHistory writes a table of recorded runs.
func FormatHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no runs recorded"))
		return
	}
	for _, e := range entries {
		var status string
		switch e.Status {
		case history.StatusOK:
			status = successStyle.Render(e.Status)
		case history.StatusFault:
			status = errorStyle.Render(e.Status)
		default:
			status = warnStyle.Render(e.Status)
		}
		fmt.Fprintf(w, "%s  %s  %-9s %8s  %s\n",
			dimStyle.Render(shortID(e.ID)),
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			formatDuration(e.Duration()),
			e.Script,
		)
		if e.Error != "" {
			fmt.Fprintf(w, "          %s\n", dimStyle.Render(e.Error))
		}
	}
}

func errorPosition(err error) (token.Position, string, bool) {
	var (
		le *lexer.Error
		se *parser.SyntaxError
		re *interp.RuntimeError
	)
	switch {
	case errors.As(err, &le):
		return le.Pos, le.Msg, true
	case errors.As(err, &se):
		return se.Pos, strings.TrimPrefix(se.Error(), se.Pos.String()+": "), true
	case errors.As(err, &re):
		return re.Pos, strings.TrimPrefix(re.Error(), re.Pos.String()+": "), true
	}
	return token.Position{}, "", false
}

func sourceLine(src string, n int) (string, bool) {
	if src == "" {
		return "", false
	}
	lines := strings.Split(src, "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// caretPad returns whitespace reaching column col of line, keeping tabs so
// the caret lines up.
func caretPad(line string, col int) string {
	var b strings.Builder
	i := 1
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
		i++
	}
	for ; i < col; i++ {
		b.WriteRune(' ')
	}
	return b.String()
}

// shortID trims a run id for display. Ids shorter than eight bytes are
// shown whole.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
