package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/server/storage/sqlite"
	"github.com/iudanet/centersync/internal/validation"
)

type centerAddOptions struct {
	id            string
	publicKey     string
	publicKeyFile string
	center        models.Center
}

func newCenterCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "center",
		Short: "Administer the center directory",
	}

	cmd.AddCommand(newCenterAddCommand(opts))
	cmd.AddCommand(newCenterShowCommand(opts))
	cmd.AddCommand(newCenterListCommand(opts))

	return cmd
}

// openDirectory открывает справочник центров по конфигурации
func openDirectory(cmd *cobra.Command, opts *Options) (*sqlite.Storage, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	return sqlite.New(commandContext(cmd), cfg.DirectoryDB)
}

func newCenterAddCommand(opts *Options) *cobra.Command {
	aopts := &centerAddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a center and its public key",
		Example: `  centersync-server center add --name "Pune Clinic" --public-key-file pub.b64
  centersync-server center add --id center:pune --name "Pune Clinic" --public-key MIIBCg...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := aopts.build()
			if err != nil {
				return err
			}

			directory, err := openDirectory(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = directory.Close() }()

			if err := directory.CreateCenter(commandContext(cmd), center); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Center %s registered\n", center.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&aopts.id, "id", "", "center id (generated as center:<uuid> when empty)")
	f.StringVar(&aopts.publicKey, "public-key", "", "base64 DER public key")
	f.StringVar(&aopts.publicKeyFile, "public-key-file", "", "file with the base64 public key")
	f.StringVar(&aopts.center.Name, "name", "", "display name")
	f.StringVar(&aopts.center.Owner, "owner", "", "owner contact")
	f.StringVar(&aopts.center.Address.Line1, "address", "", "address line")
	f.StringVar(&aopts.center.Address.Landmark, "landmark", "", "landmark")
	f.StringVar(&aopts.center.Address.City, "city", "", "city")
	f.StringVar(&aopts.center.Address.State, "state", "", "state")
	f.StringVar(&aopts.center.Address.Country, "country", "", "country")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// build проверяет флаги и собирает центр
func (o *centerAddOptions) build() (*models.Center, error) {
	center := o.center

	center.ID = o.id
	if center.ID == "" {
		center.ID = "center:" + uuid.NewString()
	}
	if err := validation.ValidateCenterID(center.ID); err != nil {
		return nil, err
	}

	key := o.publicKey
	if o.publicKeyFile != "" {
		content, err := os.ReadFile(o.publicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key file: %w", err)
		}
		key = string(content)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("--public-key or --public-key-file is required")
	}
	if _, err := crypto.ParsePublicKey(key); err != nil {
		return nil, err
	}
	center.PublicKey = key

	return &center, nil
}

func newCenterShowCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <center-id>",
		Short: "Print a center as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory, err := openDirectory(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = directory.Close() }()

			center, err := directory.GetCenter(commandContext(cmd), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(center)
		},
	}
}

func newCenterListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered centers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			directory, err := openDirectory(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = directory.Close() }()

			centers, err := directory.ListCenters(commandContext(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range centers {
				_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", c.ID, c.Name, c.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}
