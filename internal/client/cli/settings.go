package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/client/iocli"
	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/validation"
)

func newConfigCommand(opts *Options, term iocli.IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage instance identity (role, center id)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "set-role <master|slave>",
		Short:     "Set the instance role; only a master uploads its outbox",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.RoleMaster), string(models.RoleSlave)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd, opts, term, func(c *Cli) error {
				return c.runSetRole(cmd.Context(), args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-center <center-id>",
		Short: "Set the center id this instance belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd, opts, term, func(c *Cli) error {
				return c.runSetCenter(cmd.Context(), args[0])
			})
		},
	})

	return cmd
}

func (c *Cli) runSetRole(ctx context.Context, value string) error {
	role := models.InstanceRole(value)
	if role != models.RoleMaster && role != models.RoleSlave {
		return fmt.Errorf("invalid role %q: must be %s or %s", value, models.RoleMaster, models.RoleSlave)
	}

	if err := c.store.SetSetting(ctx, storage.SettingInstanceType, string(role)); err != nil {
		return fmt.Errorf("failed to store role: %w", err)
	}

	c.io.Printf("Role set to %s\n", role)
	return nil
}

func (c *Cli) runSetCenter(ctx context.Context, centerID string) error {
	if err := validation.ValidateCenterID(centerID); err != nil {
		return err
	}

	if err := c.store.SetSetting(ctx, storage.SettingCenterID, centerID); err != nil {
		return fmt.Errorf("failed to store center id: %w", err)
	}

	c.io.Printf("Center set to %s\n", centerID)
	return nil
}
