package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iudanet/centersync/internal/client/iocli"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/validation"
)

type enqueueOptions struct {
	recordID string
	event    string
	kind     string
	payload  string
}

func newEnqueueCommand(opts *Options, term iocli.IO) *cobra.Command {
	eopts := &enqueueOptions{}

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Append a mutation to the local outbox",
		Example: `  centersync enqueue --event CREATE --kind student --payload '{"name":"Asha"}'
  centersync enqueue --event DELETE --record-id 5f0c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCli(cmd, opts, term, func(c *Cli) error {
				return c.runEnqueue(cmd.Context(), eopts)
			})
		},
	}

	cmd.Flags().StringVar(&eopts.recordID, "record-id", "", "record id (generated for CREATE when empty)")
	cmd.Flags().StringVar(&eopts.event, "event", string(models.EventCreate), "CREATE, UPDATE or DELETE")
	cmd.Flags().StringVar(&eopts.kind, "kind", "", "entity kind, e.g. student (optional for DELETE)")
	cmd.Flags().StringVar(&eopts.payload, "payload", "", "JSON payload")

	return cmd
}

func (c *Cli) runEnqueue(ctx context.Context, eopts *enqueueOptions) error {
	kind := models.EventKind(eopts.event)
	if !kind.Valid() {
		return fmt.Errorf("invalid event %q: must be CREATE, UPDATE or DELETE", eopts.event)
	}

	recordID := eopts.recordID
	if recordID == "" {
		if kind != models.EventCreate {
			return fmt.Errorf("--record-id is required for %s", kind)
		}
		recordID = uuid.NewString()
	}
	if err := validation.ValidateRecordID(recordID); err != nil {
		return err
	}

	var payload json.RawMessage
	if eopts.payload != "" {
		payload = json.RawMessage(eopts.payload)
	}

	event := &models.OutboxEvent{
		RecordID:  recordID,
		Event:     kind,
		Content:   models.Content{Kind: eopts.kind, Payload: payload},
		CreatedAt: time.Now().UTC(),
	}
	if err := event.Content.Validate(event.Event); err != nil {
		return err
	}

	id, err := c.store.Append(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	c.io.Printf("Queued %s %s (local id %d)\n", kind, recordID, id)
	return nil
}
