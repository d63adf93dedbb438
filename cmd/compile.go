package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/gomacro/internal/ast"
	"github.com/itsmostafa/gomacro/internal/output"
)

var compileOut string
var compileStrict bool

var compileCmd = &cobra.Command{
	Use:   "compile FILE",
	Short: "Compile a script to a .gmc program",
	Long: `Parse a script and write its syntax tree as a compact binary program.
Compiled programs skip lexing and parsing when passed to "gomacro run".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}

		src := string(data)
		e := newEngine(cmd.OutOrStdout(), cmd.ErrOrStderr(), compileStrict || cfg.Run.Strict, "")
		nodes, err := e.Parse(src)
		if err != nil {
			output.FormatError(cmd.ErrOrStderr(), path, src, err)
			return errReported
		}

		encoded, err := ast.Encode(nodes)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}

		out := compileOut
		if out == "" {
			out = strings.TrimSuffix(path, filepath.Ext(path)) + compiledExt
		}
		if err := os.WriteFile(out, encoded, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s -> %s (%d statements, %d bytes)", path, out, len(nodes), len(encoded)))
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "output", "o", "", "Output file (default: FILE with a .gmc extension)")
	compileCmd.Flags().BoolVar(&compileStrict, "strict", false, "Reject unrecognized characters in the source")
	rootCmd.AddCommand(compileCmd)
}
