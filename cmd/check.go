package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/gomacro/internal/ast"
	"github.com/itsmostafa/gomacro/internal/lexer"
	"github.com/itsmostafa/gomacro/internal/output"
	"github.com/itsmostafa/gomacro/internal/parser"
)

var checkTokens bool
var checkAST bool
var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check a script for syntax errors without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		src := string(data)
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

		var opts []lexer.Option
		if checkStrict || cfg.Run.Strict {
			opts = append(opts, lexer.Strict())
		}

		toks, err := lexer.Tokenize(src, opts...)
		if err != nil {
			output.FormatError(stderr, path, src, err)
			return errReported
		}
		if checkTokens {
			output.FormatTokens(stdout, toks)
		}

		nodes, err := parser.Parse(toks)
		if err != nil {
			output.FormatError(stderr, path, src, err)
			return errReported
		}
		if checkAST {
			fmt.Fprint(stdout, ast.Format(nodes))
		}

		output.FormatSuccess(stderr, fmt.Sprintf("%s: %d statements", path, len(nodes)))
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkTokens, "tokens", false, "Print the token stream")
	checkCmd.Flags().BoolVar(&checkAST, "ast", false, "Print the parsed program in canonical form")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Reject unrecognized characters in the source")
	rootCmd.AddCommand(checkCmd)
}
