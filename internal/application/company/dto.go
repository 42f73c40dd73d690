package company

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orgsync/backend/internal/domain/company"
)

// InlineUserRequest is a user embedded in a company payload. Either an ID
// referencing an existing user, or the personal fields of a user to create
// on the company's behalf. Mixing the two in one entry is rejected.
type InlineUserRequest struct {
	ID        *uuid.UUID `json:"id"`
	FirstName string     `json:"firstName" binding:"omitempty,max=50"`
	LastName  string     `json:"lastName" binding:"omitempty,max=50"`
	Phone     string     `json:"phone" binding:"omitempty,e164phone"`
}

// CreateCompanyRequest represents a request to create a new company
type CreateCompanyRequest struct {
	Name   string              `json:"name" binding:"required,max=50"`
	Budget decimal.Decimal     `json:"budget" binding:"required"`
	Users  []InlineUserRequest `json:"users" binding:"omitempty,dive"`
}

// UpdateCompanyRequest represents a request to update a company
type UpdateCompanyRequest struct {
	Name   string              `json:"name" binding:"required,max=50"`
	Budget decimal.Decimal     `json:"budget" binding:"required"`
	Users  []InlineUserRequest `json:"users" binding:"omitempty,dive"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Budget    decimal.Decimal `json:"budget"`
	UserIDs   []uuid.UUID     `json:"userIds"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Version   int             `json:"version"`
}

// MemberRecord is a member as served by the user service
type MemberRecord struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
}

// CompanyMembersResponse lists a company's members. Members carries the
// per-user details when the user service answered; MemberIDs is always
// present.
type CompanyMembersResponse struct {
	CompanyID uuid.UUID      `json:"companyId"`
	MemberIDs []uuid.UUID    `json:"memberIds"`
	Members   []MemberRecord `json:"members,omitempty"`
}

// CompanyListFilter represents filter options for the company list
type CompanyListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToCompanyResponse converts a Company aggregate to a CompanyResponse
func ToCompanyResponse(c *company.Company) CompanyResponse {
	userIDs := make([]uuid.UUID, len(c.MemberIDs))
	copy(userIDs, c.MemberIDs)
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Budget:    c.Budget,
		UserIDs:   userIDs,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}
