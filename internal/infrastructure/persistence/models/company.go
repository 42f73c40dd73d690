package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orgsync/backend/internal/domain/company"
)

// CompanyModel is the persistence model for the Company aggregate
type CompanyModel struct {
	AggregateModel
	Name   string          `gorm:"size:50;not null"`
	Budget decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// TableName specifies the table name for CompanyModel
func (CompanyModel) TableName() string {
	return "companies"
}

// CompanyMemberModel is one row of a company's denormalized member set
type CompanyMemberModel struct {
	CompanyID uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;primary_key;index"`
}

// TableName specifies the table name for CompanyMemberModel
func (CompanyMemberModel) TableName() string {
	return "company_members"
}

// ToDomain converts CompanyModel plus its member rows to a domain Company
func (m *CompanyModel) ToDomain(members []CompanyMemberModel) *company.Company {
	memberIDs := make([]uuid.UUID, len(members))
	for i, member := range members {
		memberIDs[i] = member.UserID
	}
	c := &company.Company{
		Name:      m.Name,
		Budget:    m.Budget,
		MemberIDs: memberIDs,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// CompanyModelFromDomain converts a domain Company to CompanyModel
func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	m := &CompanyModel{
		Name:   c.Name,
		Budget: c.Budget,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// CompanyMembersFromDomain converts a domain Company's member set to rows
func CompanyMembersFromDomain(c *company.Company) []CompanyMemberModel {
	members := make([]CompanyMemberModel, len(c.MemberIDs))
	for i, userID := range c.MemberIDs {
		members[i] = CompanyMemberModel{CompanyID: c.ID, UserID: userID}
	}
	return members
}
