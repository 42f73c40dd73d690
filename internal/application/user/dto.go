package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/user"
)

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	FirstName string     `json:"firstName" binding:"required,max=50"`
	LastName  string     `json:"lastName" binding:"required,max=50"`
	Phone     string     `json:"phone" binding:"required,e164phone"`
	CompanyID *uuid.UUID `json:"companyId"`
}

// UpdateUserRequest represents a request to update a user. All own fields are
// replaced; this is a full overwrite, not a patch.
type UpdateUserRequest struct {
	FirstName string     `json:"firstName" binding:"required,max=50"`
	LastName  string     `json:"lastName" binding:"required,max=50"`
	Phone     string     `json:"phone" binding:"required,e164phone"`
	CompanyID *uuid.UUID `json:"companyId"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       string     `json:"phone"`
	CompanyID   *uuid.UUID `json:"companyId"`
	CompanyName string     `json:"companyName,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Version     int        `json:"version"`
}

// CompanyRecord is the slice of a company this service reads from the
// company service: just enough to fill the shadow display name.
type CompanyRecord struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserListFilter represents filter options for the user list
type UserListFilter struct {
	CompanyID *uuid.UUID `form:"companyId"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"orderBy"`
	OrderDir  string     `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToUserResponse converts a User aggregate to a UserResponse
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Version:     u.Version,
	}
}
