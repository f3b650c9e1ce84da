// Package cli команды центрального сервера
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/config"
)

// Options глобальные флаги сервера
type Options struct {
	ConfigPath  string
	DirectoryDB string
	Verbose     bool
}

// NewRootCommand создает корневую команду сервера
func NewRootCommand(version string) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "centersync-server",
		Short:         "centersync central server",
		Long:          "Central ingest server: verifies signed chunks and applies them to per-center storage.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (or CENTERSYNC_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.DirectoryDB, "directory-db", "", "center directory database (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newServeCommand(opts, version))
	cmd.AddCommand(newCenterCommand(opts))

	return cmd
}

// load загружает конфигурацию сервера и применяет глобальные флаги
func (o *Options) load() (*config.Server, error) {
	cfg, err := config.LoadServer(config.ResolvePath(o.ConfigPath))
	if err != nil {
		return nil, err
	}

	if o.DirectoryDB != "" {
		cfg.DirectoryDB = o.DirectoryDB
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}

func (o *Options) logger(cfg *config.Server, w io.Writer) (*slog.Logger, error) {
	logger, err := cfg.Log.NewLogger(w)
	if err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}
	return logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
