package gateway

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRecord is the gateway's view of a user as served by the user service
type UserRecord struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     string     `json:"phone"`
	CompanyID *uuid.UUID `json:"companyId"`
}

// CompanyRecord is the gateway's view of a company as served by the company
// service
type CompanyRecord struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

// CompanySummary is the company slice embedded in an aggregated user
type CompanySummary struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

// AggregatedUser joins a user with its company. Company is null when the
// user has no company or when the company side of the join was unavailable.
type AggregatedUser struct {
	ID        uuid.UUID       `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Phone     string          `json:"phone"`
	Company   *CompanySummary `json:"company"`
}
