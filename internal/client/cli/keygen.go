package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/client/iocli"
	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/validation"
)

type keygenOptions struct {
	bits  int
	seal  bool
	force bool
}

func newKeygenCommand(opts *Options, term iocli.IO) *cobra.Command {
	kopts := &keygenOptions{}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the center key pair",
		Long: `Generate an RSA key pair for this instance. The private key is stored in the
local database (optionally sealed with a passphrase), the public key is printed
in base64 for registration on the central server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd, opts, term, func(c *Cli) error {
				return c.runKeygen(cmd.Context(), kopts)
			})
		},
	}

	cmd.Flags().IntVar(&kopts.bits, "bits", crypto.DefaultKeyBits, "RSA key size")
	cmd.Flags().BoolVar(&kopts.seal, "seal", false, "encrypt the private key with a passphrase")
	cmd.Flags().BoolVar(&kopts.force, "force", false, "replace an existing key")

	return cmd
}

func (c *Cli) runKeygen(ctx context.Context, kopts *keygenOptions) error {
	existing, err := c.setting(ctx, storage.SettingPrivateKey)
	if err != nil {
		return err
	}
	if existing != "" && !kopts.force {
		return fmt.Errorf("private key already exists, use --force to replace it")
	}

	pair, err := crypto.GenerateKeyPair(kopts.bits)
	if err != nil {
		return err
	}

	stored := pair.PrivateKey
	if kopts.seal {
		passphrase, err := c.passphrase(true)
		if err != nil {
			return err
		}
		if err := validation.ValidatePassphrase(passphrase); err != nil {
			return err
		}
		if stored, err = crypto.SealPrivateKey(passphrase, pair.PrivateKey); err != nil {
			return err
		}
	}

	if err := c.store.SetSetting(ctx, storage.SettingPrivateKey, stored); err != nil {
		return fmt.Errorf("failed to store private key: %w", err)
	}

	c.logger.InfoContext(ctx, "Key pair generated", "bits", kopts.bits, "sealed", kopts.seal)

	c.io.Println("Public key (register it on the central server):")
	c.io.Println(pair.PublicKey)
	return nil
}
