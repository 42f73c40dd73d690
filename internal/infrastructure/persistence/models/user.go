package models

import (
	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/user"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	FirstName   string     `gorm:"size:50;not null"`
	LastName    string     `gorm:"size:50;not null"`
	Phone       string     `gorm:"size:20;not null"`
	CompanyID   *uuid.UUID `gorm:"type:uuid;index"`
	CompanyName string     `gorm:"size:50"`
}

// TableName specifies the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to a domain User
func (m *UserModel) ToDomain() *user.User {
	u := &user.User{
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Phone:       m.Phone,
		CompanyID:   m.CompanyID,
		CompanyName: m.CompanyName,
	}
	m.PopulateAggregateRoot(&u.BaseAggregateRoot)
	return u
}

// UserModelFromDomain converts a domain User to UserModel
func UserModelFromDomain(u *user.User) *UserModel {
	m := &UserModel{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
