package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configFile string
	endpoints  string
	envFile    string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "monitor",
		Short: "One-shot synthetic checks for a list of web pages",
		Long: `monitor checks every configured page once, logs the outcome of each
check and sends a single alert listing the pages that failed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; the environment may already be set.
			_ = godotenv.Load(opts.envFile)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCmdE(cmd, opts)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default is ./config/monitor.yaml or ./monitor.yaml)")
	pf.StringVarP(&opts.endpoints, "endpoints", "e", "", "endpoint list, JSON or YAML (overrides ENDPOINTS_FILE)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Check every page once and alert on failures (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCmdE(cmd, opts)
		},
	}
	for _, c := range []*cobra.Command{root, runCmd} {
		c.Flags().BoolVar(&opts.jsonOut, "json", false, "print the run summary as JSON on stdout")
	}

	root.AddCommand(runCmd, newPreflightCmd(opts), newVersionCmd())
	return root
}

func runCmdE(cmd *cobra.Command, opts *rootOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return runMonitor(ctx, opts, cmd.OutOrStdout())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
