package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/gomacro/internal/engine"
	"github.com/itsmostafa/gomacro/internal/output"
	"github.com/itsmostafa/gomacro/internal/parser"
	"github.com/itsmostafa/gomacro/internal/version"
)

const (
	replHistoryFile = ".gomacro_history"
	promptMain      = "gomacro> "
	promptCont      = "    ... "
)

var replScreen string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Start an interactive session. Variables persist between inputs and
unfinished statements continue on the next line.

Session commands:
  :vars      list variables
  :commands  list available commands
  :quit      leave the session`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		e := newEngine(stdout, stderr, cfg.Run.Strict, replScreen)

		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		ln.SetWordCompleter(func(line string, pos int) (string, []string, string) {
			return completeWord(e, line, pos)
		})

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, replHistoryFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()

		fmt.Fprintf(stdout, "gomacro %s. Type :quit to exit.\n", version.Version)
		for {
			code, ok := readByParseProbe(ln, e)
			if !ok {
				fmt.Fprintln(stdout)
				return nil
			}

			trimmed := strings.TrimSpace(code)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				switch trimmed {
				case ":quit", ":q":
					return nil
				case ":vars":
					output.FormatVars(stdout, e.Env())
				case ":commands":
					fmt.Fprintln(stdout, strings.Join(e.Commands(), " "))
				default:
					fmt.Fprintln(stderr, "unknown command. Type :quit to exit.")
				}
				continue
			}

			ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
			if err := e.RunSource(cmd.Context(), code); err != nil {
				output.FormatError(stderr, "<repl>", code, err)
			}
		}
	},
}

// readByParseProbe reads lines until they form a complete program or a
// definite syntax error. It returns false at end of input.
func readByParseProbe(ln *liner.State, e *engine.Engine) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C discards the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := e.Parse(src); parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// completeWord offers keywords, commands and variables for the word ending
// at pos.
func completeWord(e *engine.Engine, line string, pos int) (string, []string, string) {
	runes := []rune(line)
	if pos > len(runes) {
		pos = len(runes)
	}
	start := pos
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	prefix := string(runes[start:pos])
	if prefix == "" {
		return line, nil, ""
	}

	var candidates []string
	words := append([]string{"var", "if", "else", "loop"}, e.Commands()...)
	words = append(words, e.Env().Names()...)
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			candidates = append(candidates, w)
		}
	}
	return string(runes[:start]), candidates, string(runes[pos:])
}

func isWordRune(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

func init() {
	replCmd.Flags().StringVar(&replScreen, "screen", "", "Image file sampled by get_color and color")
	rootCmd.AddCommand(replCmd)
}
