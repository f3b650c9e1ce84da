package sync

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/workpool"
	"github.com/iudanet/centersync/pkg/api"
)

// Signer сериализует пачку событий outbox и подписывает center_id ‖ body
type Signer struct {
	pool *workpool.Pool
}

// NewSigner создает Signer; RSA операции выполняются в pool
func NewSigner(pool *workpool.Pool) *Signer {
	return &Signer{pool: pool}
}

// Encode строит тело {"chunk":[...]} в порядке local_id.
// Результат детерминирован: одинаковые события дают одинаковые байты.
func (s *Signer) Encode(events []*models.OutboxEvent) ([]byte, error) {
	payload := api.UploadChunkPayload{
		Chunk: make([]api.SyncEvent, 0, len(events)),
	}

	for _, event := range events {
		payload.Chunk = append(payload.Chunk, api.SyncEvent{
			CreatedAt: event.CreatedAt.UTC(),
			RecordID:  event.RecordID,
			Event:     string(event.Event),
			Content: api.EventContent{
				Kind:    event.Content.Kind,
				Payload: event.Content.Payload,
			},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chunk: %w", err)
	}

	return body, nil
}

// Sign возвращает base64 подпись RSA-PKCS#1 v1.5/SHA-256 над centerID ‖ body
func (s *Signer) Sign(ctx context.Context, centerID string, key *rsa.PrivateKey, body []byte) (string, error) {
	var signature string
	err := s.pool.Do(ctx, func() error {
		var signErr error
		signature, signErr = crypto.SignChunk(key, centerID, body)
		return signErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign chunk: %w", err)
	}

	return signature, nil
}
