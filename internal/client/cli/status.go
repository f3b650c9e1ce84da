package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/client/iocli"
	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/crypto"
)

func newStatusCommand(opts *Options, term iocli.IO) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show role, center and outbox state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd, opts, term, func(c *Cli) error {
				return c.runStatus(cmd.Context())
			})
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	role, err := c.setting(ctx, storage.SettingInstanceType)
	if err != nil {
		return err
	}
	centerID, err := c.setting(ctx, storage.SettingCenterID)
	if err != nil {
		return err
	}
	key, err := c.setting(ctx, storage.SettingPrivateKey)
	if err != nil {
		return err
	}

	pending, err := c.store.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending events: %w", err)
	}

	keyState := "missing"
	switch {
	case crypto.IsSealed(key):
		keyState = "present (sealed)"
	case key != "":
		keyState = "present"
	}

	c.io.Println("=== Instance Status ===")
	c.io.Printf("Central:  %s\n", c.cfg.CentralURL)
	c.io.Printf("Role:     %s\n", orUnset(role))
	c.io.Printf("Center:   %s\n", orUnset(centerID))
	c.io.Printf("Key:      %s\n", keyState)
	c.io.Printf("Pending:  %d event(s)\n", pending)

	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
