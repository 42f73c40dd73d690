package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orgsync/backend/internal/domain/company"
	"github.com/orgsync/backend/internal/domain/shared"
	"github.com/orgsync/backend/internal/infrastructure/persistence/models"
)

// GormCompanyRepository implements company.Repository using GORM. The member
// set lives in its own table and is rewritten wholesale on every save, which
// keeps the stored set identical to the aggregate's view.
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID, including its member set
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	members, err := r.membersOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(members), nil
}

// FindAll finds companies matching the filter
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]company.Company, error) {
	var companyModels []models.CompanyModel
	query := r.db.WithContext(ctx).Model(&models.CompanyModel{}).
		Order(companyOrderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&companyModels).Error; err != nil {
		return nil, err
	}

	companies := make([]company.Company, len(companyModels))
	for i := range companyModels {
		members, err := r.membersOf(ctx, companyModels[i].ID)
		if err != nil {
			return nil, err
		}
		companies[i] = *companyModels[i].ToDomain(members)
	}
	return companies, nil
}

// FindByMember finds every company whose member set contains the user
func (r *GormCompanyRepository) FindByMember(ctx context.Context, userID uuid.UUID) ([]company.Company, error) {
	var memberRows []models.CompanyMemberModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&memberRows).Error; err != nil {
		return nil, err
	}

	companies := make([]company.Company, 0, len(memberRows))
	for _, row := range memberRows {
		c, err := r.FindByID(ctx, row.CompanyID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, nil
}

// Count counts all companies
func (r *GormCompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CompanyModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a company and rewrites its member set
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	model := models.CompanyModelFromDomain(c)
	members := models.CompanyMembersFromDomain(c)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.CompanyMemberModel{}, "company_id = ?", c.ID).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

// Delete deletes a company and its member set
func (r *GormCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.CompanyMemberModel{}, "company_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CompanyModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormCompanyRepository) membersOf(ctx context.Context, companyID uuid.UUID) ([]models.CompanyMemberModel, error) {
	var members []models.CompanyMemberModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("user_id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func companyOrderClause(filter shared.Filter) string {
	column := "created_at"
	switch filter.OrderBy {
	case "name", "budget", "created_at", "updated_at":
		column = filter.OrderBy
	}
	if filter.OrderDir == "asc" {
		return column + " asc"
	}
	return column + " desc"
}
