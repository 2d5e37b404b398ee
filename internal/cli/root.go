// Package cli implements the operator command surface: trigger a manual
// session, list recent sessions with statistics, manage the blacklist and
// its cache, run the scheduled query library, and replay a dead-letter
// event.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fundingdiscovery/internal/bootstrap"
	"fundingdiscovery/internal/platform/config"
)

var rootCmd = &cobra.Command{
	Use:   "fdctl",
	Short: "Operational commands for the funding-discovery core.",
	Long: `fdctl is the operator CLI for the funding-discovery pipeline core:
trigger a manual discovery session, inspect recent sessions and their
statistics, invalidate the blacklist cache for a host, and replay a
dead-lettered workflow event back onto its originating topic.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from cmd/cli's main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(triggerCmd, sessionsCmd, blacklistCmd, replayCmd, scheduledCmd)
}

// withRuntime loads Config, builds a bootstrap.Runtime, runs fn, and
// guarantees the runtime is closed afterward. Every subcommand goes
// through this so connection setup/teardown stays in one place.
func withRuntime(fn func(ctx context.Context, rt *bootstrap.Runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSetup()

	rt, err := bootstrap.New(setupCtx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap runtime: %w", err)
	}
	defer rt.Close()

	opCtx, cancelOp := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelOp()

	return fn(opCtx, rt)
}
