package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/client/api"
	"github.com/iudanet/centersync/internal/client/iocli"
	clientsync "github.com/iudanet/centersync/internal/client/sync"
	"github.com/iudanet/centersync/internal/workpool"
)

func newOnceCommand(opts *Options, term iocli.IO) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run one sync pass and drain the outbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd, opts, term, func(c *Cli) error {
				return c.runOnce(cmd.Context())
			})
		},
	}
}

func newRunCommand(opts *Options, term iocli.IO) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync loop until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd, opts, term, func(c *Cli) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return c.runLoop(ctx)
			})
		},
	}
}

// newSyncer собирает Syncer поверх локальной базы; пул закрывается вызывающим
func (c *Cli) newSyncer(ctx context.Context, observer clientsync.Observer) (*clientsync.Syncer, *workpool.Pool, error) {
	passphrase, err := c.keyPassphrase(ctx)
	if err != nil {
		return nil, nil, err
	}

	pool := workpool.New(c.cfg.CryptoWorkers, c.logger)
	client := api.NewClient(c.cfg.CentralURL, c.cfg.RequestTimeout)

	opts := clientsync.Options{
		Interval:       c.cfg.Interval,
		BatchSize:      c.cfg.BatchSize,
		RetryAttempts:  c.cfg.Retry.Attempts,
		RetryBaseDelay: c.cfg.Retry.BaseDelay,
		RetryMaxDelay:  c.cfg.Retry.MaxDelay,
		Compress:       c.cfg.CompressChunks,
	}

	syncer := clientsync.NewSyncer(
		c.store,
		c.store,
		clientsync.NewSettingsKeyProvider(c.store, passphrase),
		client,
		pool,
		observer,
		opts,
		c.logger,
	)

	return syncer, pool, nil
}

// progressObserver печатает ход выгрузки в терминал
func (c *Cli) progressObserver() clientsync.Observer {
	return clientsync.MultiObserver{
		clientsync.NewLogObserver(c.logger),
		clientsync.ObserverFunc(func(event clientsync.Event) {
			switch event.Type {
			case clientsync.EventProgress:
				c.io.Printf("Uploaded %d/%d\n", event.Uploaded, event.Total)
			case clientsync.EventUploadChunkFailed:
				c.io.Printf("Upload failed: %v\n", event.Err)
			}
		}),
	}
}

func (c *Cli) runOnce(ctx context.Context) error {
	syncer, pool, err := c.newSyncer(ctx, c.progressObserver())
	if err != nil {
		return err
	}
	defer pool.Close()

	result, err := syncer.RunOnce(ctx)
	if err != nil {
		return err
	}

	if !result.Role.IsMaster() {
		c.io.Printf("Instance role is %q, only a master uploads its outbox\n", orUnset(string(result.Role)))
		return nil
	}

	c.io.Println("=== Synchronization ===")
	c.io.Printf("Center:   %s\n", result.CenterID)
	c.io.Printf("Pending:  %d\n", result.Pending)
	c.io.Printf("Chunks:   %d\n", result.Chunks)
	c.io.Printf("Pushed:   %d\n", result.Pushed)
	return nil
}

func (c *Cli) runLoop(ctx context.Context) error {
	syncer, pool, err := c.newSyncer(ctx, clientsync.NewLogObserver(c.logger))
	if err != nil {
		return err
	}
	defer pool.Close()

	c.io.Println("Sync loop started. Press Ctrl-C to stop.")

	if err := syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	c.io.Println("Sync loop stopped")
	return nil
}
