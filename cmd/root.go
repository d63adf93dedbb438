package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/itsmostafa/gomacro/internal/config"
	"github.com/itsmostafa/gomacro/internal/version"
)

// errReported marks a failure whose diagnostics were already printed.
var errReported = errors.New("failed")

var configPath string
var verbose int
var logFile string

// cfg is loaded before any subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "gomacro",
	Short: "Run gomacro automation scripts",
	Long: `gomacro runs small imperative scripts that drive automation commands:
variables, conditionals, counted loops and calls such as print, sleep,
get_color, color and js.

Settings are read from gomacro.toml or gomacro.yaml in the current directory
or any parent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		level := max(cfg.Log.Verbosity, verbose)
		path := cfg.Log.File
		if logFile != "" {
			path = logFile
		}
		if path != "" {
			commonlog.Configure(level, &path)
		} else {
			commonlog.Configure(level, nil)
		}
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("gomacro %s\n", version.String()))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a gomacro.toml or gomacro.yaml file")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.FindAndLoad(".")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
