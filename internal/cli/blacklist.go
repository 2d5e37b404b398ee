package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fundingdiscovery/internal/bootstrap"
	fd "fundingdiscovery/internal/domain"
)

var blacklistReason string

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage the domain blacklist and its cache.",
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add <host>",
	Short: "Stickily blacklist a host.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := fd.NormalizeHost(args[0])
		return withRuntime(func(ctx context.Context, rt *bootstrap.Runtime) error {
			if err := rt.Domains.Blacklist(ctx, host, blacklistReason, "cli-operator"); err != nil {
				return err
			}
			rt.Blacklist.Invalidate(ctx, host)
			fmt.Printf("blacklisted %s\n", host)
			return nil
		})
	},
}

var blacklistRemoveCmd = &cobra.Command{
	Use:   "remove <host>",
	Short: "Un-blacklist a host (administrator override).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := fd.NormalizeHost(args[0])
		return withRuntime(func(ctx context.Context, rt *bootstrap.Runtime) error {
			if err := rt.Domains.Unblacklist(ctx, host); err != nil {
				return err
			}
			rt.Blacklist.Invalidate(ctx, host)
			fmt.Printf("un-blacklisted %s\n", host)
			return nil
		})
	},
}

var blacklistInvalidateCmd = &cobra.Command{
	Use:   "invalidate <host>",
	Short: "Drop a host's blacklist cache entry; the next lookup re-reads the store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := fd.NormalizeHost(args[0])
		return withRuntime(func(ctx context.Context, rt *bootstrap.Runtime) error {
			rt.Blacklist.Invalidate(ctx, host)
			fmt.Printf("invalidated cache entry for %s\n", host)
			return nil
		})
	},
}

func init() {
	blacklistAddCmd.Flags().StringVar(&blacklistReason, "reason", "operator action", "why the host is being blacklisted")
	blacklistCmd.AddCommand(blacklistAddCmd, blacklistRemoveCmd, blacklistInvalidateCmd)
}
