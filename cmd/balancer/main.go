package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "balancer",
		Short:        "Simulate Balancer pool operations and encode their Vault calls",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Classify a JSON file of raw pools and print the typed pools",
		RunE:  runParse,
	}
	parseCmd.Flags().String("pools", "", "raw pools JSON file")
	parseCmd.Flags().Uint64("chain-id", 1, "chain the pools live on")
	parseCmd.Flags().Bool("graph", false, "print the token graph instead of the pool list")
	_ = parseCmd.MarkFlagRequired("pools")
	root.AddCommand(parseCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Query one operation from a YAML file and print its call",
		RunE:  runOperation,
	}
	runCmd.Flags().String("config", "op.yaml", "operation file path")
	root.AddCommand(runCmd)

	return root
}

// env is what every command needs: a logger writing to stderr and a
// private metrics registry.
type env struct {
	logger   *slog.Logger
	registry *prometheus.Registry
}

func newEnv(cmd *cobra.Command) (*env, error) {
	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, err
	}
	return &env{logger: logger, registry: prometheus.NewRegistry()}, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func flagString(flags *pflag.FlagSet, name string) string {
	v, _ := flags.GetString(name)
	return v
}
