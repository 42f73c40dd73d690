package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orgsync/backend/internal/domain/shared"
	"github.com/orgsync/backend/internal/domain/user"
	"github.com/orgsync/backend/internal/infrastructure/persistence/models"
)

// GormUserRepository implements user.Repository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by its ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]user.User, error) {
	var userModels []models.UserModel
	query := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Order(orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]user.User, len(userModels))
	for i, model := range userModels {
		users[i] = *model.ToDomain()
	}
	return users, nil
}

// FindByCompanyID finds all users pointing at the given company
func (r *GormUserRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID) ([]user.User, error) {
	var userModels []models.UserModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]user.User, len(userModels))
	for i, model := range userModels {
		users[i] = *model.ToDomain()
	}
	return users, nil
}

// Count counts all users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, u *user.User) error {
	model := models.UserModelFromDomain(u)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a user
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DetachCompany clears the company reference on every user pointing at the
// company in one statement, so a replayed event finds zero rows to touch.
func (r *GormUserRepository) DetachCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("company_id = ?", companyID).
		Updates(map[string]any{
			"company_id":   nil,
			"company_name": "",
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// orderClause builds the ORDER BY clause from a normalized filter, falling
// back to creation order for anything not in the allow list.
func orderClause(filter shared.Filter) string {
	column := "created_at"
	switch filter.OrderBy {
	case "first_name", "last_name", "created_at", "updated_at":
		column = filter.OrderBy
	}
	if filter.OrderDir == "asc" {
		return column + " asc"
	}
	return column + " desc"
}
