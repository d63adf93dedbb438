package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/gomacro/internal/lexer"
	"github.com/itsmostafa/gomacro/internal/lsp"
	"github.com/itsmostafa/gomacro/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the language server on stdio",
	Long: `Start a Language Server Protocol server on stdin and stdout. It reports
syntax errors as diagnostics and completes keywords and command names.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEngine(io.Discard, io.Discard, cfg.Run.Strict, "")
		var opts []lexer.Option
		if cfg.Run.Strict {
			opts = append(opts, lexer.Strict())
		}
		return lsp.New(e.Commands(), version.Version, opts...).RunStdio()
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
}
