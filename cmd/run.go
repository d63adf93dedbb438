package cmd

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/itsmostafa/gomacro/internal/history"
	"github.com/itsmostafa/gomacro/internal/output"
)

var runStrict bool
var runScreen string
var runNoHistory bool
var runSummary bool

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a script",
	Long: `Run a gomacro script. FILE is either source text or a program compiled
with "gomacro compile" (.gmc). Ctrl-C stops the script between statements.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		stderr := cmd.ErrOrStderr()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		e := newEngine(cmd.OutOrStdout(), stderr, runStrict || cfg.Run.Strict, runScreen)
		nodes, src, err := loadProgram(e, path)
		if err != nil {
			output.FormatError(stderr, path, src, err)
			return errReported
		}

		journal := openJournal()
		if journal != nil {
			defer journal.Close()
		}
		var entry history.Entry
		if journal != nil {
			if entry, err = journal.Begin(path); err != nil {
				log.Warningf("%v", err)
				journal = nil
			}
		}

		start := time.Now()
		runErr := e.Run(ctx, nodes)
		elapsed := time.Since(start)

		if journal != nil {
			if err := journal.Finish(entry.ID, runErr); err != nil {
				log.Warningf("%v", err)
			}
		}

		if runErr != nil {
			output.FormatError(stderr, path, src, runErr)
		}
		if runSummary {
			output.FormatRunSummary(stderr, path, elapsed, runErr)
		}
		if runErr != nil {
			return errReported
		}
		return nil
	},
}

var log = commonlog.GetLogger("gomacro.cli")

// openJournal returns the history store, or nil when history is disabled
// or unavailable.
func openJournal() *history.Store {
	if runNoHistory || !cfg.History.Enabled {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		log.Warningf("history disabled: %v", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		log.Warningf("history disabled: %v", err)
		return nil
	}
	return store
}

func init() {
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Reject unrecognized characters in the source")
	runCmd.Flags().StringVar(&runScreen, "screen", "", "Image file sampled by get_color and color")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in the history journal")
	runCmd.Flags().BoolVarP(&runSummary, "summary", "s", false, "Print a summary box after the run")

	rootCmd.AddCommand(runCmd)
}
