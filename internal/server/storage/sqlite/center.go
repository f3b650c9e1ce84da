package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/server/storage"
	"github.com/iudanet/centersync/internal/validation"
)

const centerColumns = `id, name, public_key, owner,
	address_line1, address_landmark, address_city, address_state, address_country,
	created_at`

// CreateCenter registers a new center in the directory
func (s *Storage) CreateCenter(ctx context.Context, center *models.Center) error {
	query := `
		INSERT INTO centers (` + centerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if err := validation.ValidateCenterID(center.ID); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInvalidCenterID, err)
	}

	if center.CreatedAt.IsZero() {
		center.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		center.ID,
		center.Name,
		center.PublicKey,
		center.Owner,
		center.Address.Line1,
		center.Address.Landmark,
		center.Address.City,
		center.Address.State,
		center.Address.Country,
		center.CreatedAt,
	)
	if err != nil {
		// Проверяем на duplicate id
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrCenterAlreadyExists
		}
		return fmt.Errorf("failed to insert center: %w", err)
	}

	return nil
}

// GetCenter retrieves center by id
func (s *Storage) GetCenter(ctx context.Context, id string) (*models.Center, error) {
	query := `SELECT ` + centerColumns + ` FROM centers WHERE id = ?`

	center, err := scanCenter(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to get center: %w", err)
	}

	return center, nil
}

// ListCenters returns all centers ordered by id
func (s *Storage) ListCenters(ctx context.Context) ([]*models.Center, error) {
	query := `SELECT ` + centerColumns + ` FROM centers ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	defer rows.Close()

	var centers []*models.Center
	for rows.Next() {
		center, err := scanCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan center: %w", err)
		}
		centers = append(centers, center)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return centers, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCenter(row rowScanner) (*models.Center, error) {
	center := &models.Center{}
	err := row.Scan(
		&center.ID,
		&center.Name,
		&center.PublicKey,
		&center.Owner,
		&center.Address.Line1,
		&center.Address.Landmark,
		&center.Address.City,
		&center.Address.State,
		&center.Address.Country,
		&center.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return center, nil
}
