// Package cmd is the certext command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/certcat/certext/backends"
	"github.com/certcat/certext/config"
	"github.com/certcat/certext/logging"
	"github.com/certcat/certext/names"
)

// env is what every subcommand needs, built once from flags and config.
type env struct {
	logger  *slog.Logger
	names   *names.Normalizer
	backend string
}

type envKey struct{}

var rootCmd = &cobra.Command{
	Use:   "certext",
	Short: "Inspect the extensions of certificates and certificate requests",
	Long: `certext extracts the extensions of X.509 certificates and certificate
signing requests into a map keyed by dotted OID, and normalizes the names
different libraries use for the same object.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Int("log-level", logging.DefaultLevel, "Syslog-style log level, -1 disables logging")
	rootCmd.PersistentFlags().Bool("log-text", false, "Log in text format instead of JSON")
}

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	conf := &config.Config{Log: logging.Config{Level: logging.DefaultLevel}}
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		conf, err = config.Load(path)
		if err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		conf.Log.Level, _ = flags.GetInt("log-level")
	}
	if flags.Changed("log-text") {
		conf.Log.TextFormat, _ = flags.GetBool("log-text")
	}

	e := &env{
		logger:  logging.New(conf.Log, cmd.ErrOrStderr()),
		names:   names.Default(),
		backend: conf.Backend,
	}
	if e.backend == "" {
		e.backend = backends.DefaultName
	}

	if conf.Names != "" {
		f, err := os.Open(conf.Names)
		if err != nil {
			return err
		}
		defer f.Close()
		e.names, err = names.Load(f)
		if err != nil {
			return fmt.Errorf("loading name tables %s: %w", conf.Names, err)
		}
		e.logger.Debug("loaded name tables", "path", conf.Names, "aliases", len(e.names.Aliases()))
	}

	cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
	return nil
}

func getEnv(cmd *cobra.Command) *env {
	return cmd.Context().Value(envKey{}).(*env)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
