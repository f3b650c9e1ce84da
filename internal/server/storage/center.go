package storage

import (
	"context"

	"github.com/iudanet/centersync/internal/models"
)

//go:generate moq -out center_mock.go . CenterStorage

// CenterStorage defines interface for the center directory.
// Публичный ключ центра - единственный якорь аутентификации синхронизации.
type CenterStorage interface {
	// GetCenter retrieves center by id
	// Returns ErrCenterNotFound if center doesn't exist
	GetCenter(ctx context.Context, id string) (*models.Center, error)

	// CreateCenter registers a new center
	// Returns ErrCenterAlreadyExists if id is taken
	CreateCenter(ctx context.Context, center *models.Center) error

	// ListCenters returns all centers ordered by id
	ListCenters(ctx context.Context) ([]*models.Center, error)
}
