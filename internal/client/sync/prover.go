package sync

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"

	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/workpool"
	"github.com/iudanet/centersync/pkg/api"
)

// Prover доказывает центру владение ключом и узнает, разрешена ли синхронизация
type Prover struct {
	api    CentralAPI
	pool   *workpool.Pool
	logger *slog.Logger
}

// NewProver создает Prover; подпись claim выполняется в pool
func NewProver(client CentralAPI, pool *workpool.Pool, logger *slog.Logger) *Prover {
	return &Prover{
		api:    client,
		pool:   pool,
		logger: logger,
	}
}

// Check подписывает claim {center_id} (RS256) и отправляет его в центр.
// Возвращает nil только на status=available; ErrCenterNotFound и ErrSignatureInvalid
// для структурированных отказов, иначе транспортную ошибку или ErrUnexpectedResponse.
func (p *Prover) Check(ctx context.Context, centerID string, key *rsa.PrivateKey) error {
	var token string
	err := p.pool.Do(ctx, func() error {
		var signErr error
		token, signErr = crypto.SignAvailabilityClaim(key, centerID)
		return signErr
	})
	if err != nil {
		return fmt.Errorf("failed to sign availability claim: %w", err)
	}

	resp, err := p.api.CheckSyncAvailability(ctx, api.CheckSyncAvailabilityRequest{
		CenterID:  centerID,
		Signature: token,
	})
	if err != nil {
		return classifyStatusError(err)
	}

	if resp.Status != api.StatusAvailable {
		return fmt.Errorf("%w: status %q", ErrUnexpectedResponse, resp.Status)
	}

	p.logger.DebugContext(ctx, "Sync availability confirmed", "center_id", centerID)
	return nil
}
