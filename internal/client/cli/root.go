package cli

import (
	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/client/iocli"
)

// Options глобальные флаги клиента
type Options struct {
	ConfigPath     string
	DBPath         string
	CentralURL     string
	PassphraseFile string
	Verbose        bool
}

// NewRootCommand создает корневую команду клиента
func NewRootCommand(term iocli.IO, version string) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "centersync",
		Short: "centersync - offline-first outbox sync for a center",
		Long: `Local instance of a center. Records mutations in an outbox and uploads
them to the central server as signed chunks.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (or CENTERSYNC_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to local database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.CentralURL, "central-url", "", "central server URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.PassphraseFile, "passphrase-file", "", "file with the private key passphrase")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newKeygenCommand(opts, term))
	cmd.AddCommand(newConfigCommand(opts, term))
	cmd.AddCommand(newStatusCommand(opts, term))
	cmd.AddCommand(newEnqueueCommand(opts, term))
	cmd.AddCommand(newOnceCommand(opts, term))
	cmd.AddCommand(newRunCommand(opts, term))

	return cmd
}

// withCli открывает окружение команды и закрывает его после fn
func withCli(cmd *cobra.Command, opts *Options, term iocli.IO, fn func(c *Cli) error) (err error) {
	c, err := open(cmd.Context(), opts, term, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(c)
}
