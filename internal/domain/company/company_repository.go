package company

import (
	"context"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/shared"
)

// Repository defines persistence operations for the Company aggregate
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, error)
	FindByMember(ctx context.Context, userID uuid.UUID) ([]Company, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, c *Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}
