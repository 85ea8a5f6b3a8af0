// Package cmd includes the lpdeployer commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

const appName = "lpdeployer"

var defaultHome = filepath.Join(os.Getenv("HOME"), ".lpdeployer")

// NewRootCmd returns the root command for the deployer.
//
// If log is nil, a new zap.Logger is set on the app state
// based on the command line flags regarding logging.
func NewRootCmd(log *zap.Logger) *cobra.Command {
	// Use a local app state instance scoped to the new root command,
	// so that tests don't concurrently access the state.
	a := &appState{
		Viper: viper.New(),
		Log:   log,
	}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Creates and drives Valence liquidity programs on Neutron",
		Long: strings.TrimSpace(`lpdeployer instantiates the accounts, libraries, authorization and processor
contracts of a liquidity program, publishes its deploy and withdraw authorizations
and hands the program over to the DAO committee.

Configuration is read from $HOME/.lpdeployer/config/config.yaml (see --home),
and every setting can be overridden with an LD_TOOL_* environment variable.`),
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// Inside persistent pre-run because this takes effect after flags are parsed.
		if log == nil {
			log, err := newRootLogger(a.Viper.GetString(flagLogFormat), a.Viper.GetBool(flagDebug))
			if err != nil {
				return err
			}

			a.Log = log
		}

		// Reads `homeDir/config/config.yaml` and LD_TOOL_* into `a.Config`.
		return a.loadConfig()
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, _ []string) {
		// Force syncing the logs before exit, if anything is buffered.
		_ = a.Log.Sync()
	}

	// Register --home flag
	rootCmd.PersistentFlags().StringVar(&a.HomePath, flagHome, defaultHome, "set home directory")
	if err := a.Viper.BindPFlag(flagHome, rootCmd.PersistentFlags().Lookup(flagHome)); err != nil {
		panic(err)
	}

	// Register --debug flag
	rootCmd.PersistentFlags().BoolVarP(&a.Debug, flagDebug, "d", false, "debug output")
	if err := a.Viper.BindPFlag(flagDebug, rootCmd.PersistentFlags().Lookup(flagDebug)); err != nil {
		panic(err)
	}

	rootCmd.PersistentFlags().String(flagLogFormat, "auto", "log output format (auto, logfmt, json, or console)")
	if err := a.Viper.BindPFlag(flagLogFormat, rootCmd.PersistentFlags().Lookup(flagLogFormat)); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		createProgramCmd(a),
		executeProgramCmd(a),
		tickProcessorCmd(a),
		queryCmd(a),
		configCmd(a),
		getVersionCmd(a),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.EnableCommandSorting = false

	rootCmd := NewRootCmd(nil)
	rootCmd.SilenceUsage = true

	// Cancel the context on the first SIGINT or SIGTERM. A step already submitted
	// still waits for its transaction; the run stops before the next one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newRootLogger(format string, debug bool) (*zap.Logger, error) {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format("2006-01-02T15:04:05.000000Z07:00"))
	}
	config.LevelKey = "lvl"

	var enc zapcore.Encoder
	switch format {
	case "json":
		enc = zapcore.NewJSONEncoder(config)
	case "auto", "":
		if term.IsTerminal(int(os.Stderr.Fd())) {
			// When a user runs lpdeployer in the foreground, use easier to read output.
			enc = zapcore.NewConsoleEncoder(config)
		} else {
			// Otherwise, use consistent logfmt format for simplistic machine processing.
			enc = zaplogfmt.NewEncoder(config)
		}
	case "console":
		enc = zapcore.NewConsoleEncoder(config)
	case "logfmt":
		enc = zaplogfmt.NewEncoder(config)
	default:
		return nil, fmt.Errorf("unrecognized log format %q", format)
	}

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	return zap.New(zapcore.NewCore(
		enc,
		os.Stderr,
		level,
	)), nil
}

// withUsage wraps a PositionalArgs to display usage only when the PositionalArgs
// variant is violated.
func withUsage(inner cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := inner(cmd, args); err != nil {
			cmd.Root().SilenceUsage = false
			cmd.SilenceUsage = false
			return err
		}

		return nil
	}
}
