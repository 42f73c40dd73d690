package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/shared"
)

// Repository defines persistence operations for the User aggregate
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)
	FindByCompanyID(ctx context.Context, companyID uuid.UUID) ([]User, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DetachCompany clears the company reference on every user pointing at
	// companyID, in a single transaction. Returns the number of users touched.
	DetachCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}
