package user

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/shared"
)

const maxNameLength = 50

var (
	// Names start with an uppercase letter followed by lowercase letters
	// (Latin or Cyrillic).
	nameRegex = regexp.MustCompile(`^[A-ZА-Я][a-zа-я]*$`)
	// Phones are E.164-ish: a leading plus and 10-15 digits.
	phoneRegex = regexp.MustCompile(`^\+\d{10,15}$`)
)

// User is the aggregate root of the user service. The company fields are a
// non-authoritative shadow of the company service's data, maintained by the
// reconciler; they must never drive business rules locally.
type User struct {
	shared.BaseAggregateRoot
	FirstName   string
	LastName    string
	Phone       string
	CompanyID   *uuid.UUID
	CompanyName string
}

// NewUser creates a new user with a generated ID
func NewUser(firstName, lastName, phone string) (*User, error) {
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	if err := u.setFields(firstName, lastName, phone); err != nil {
		return nil, err
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// NewUserWithID materializes a user under a remotely assigned ID. Used when a
// CREATED event arrives for a user this service has never seen; regenerating
// the ID here would permanently desynchronize the two services.
func NewUserWithID(id uuid.UUID, firstName, lastName, phone string) *User {
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		FirstName:         firstName,
		LastName:          lastName,
		Phone:             phone,
	}
}

// Update replaces the user's own fields
func (u *User) Update(firstName, lastName, phone string) error {
	if err := u.setFields(firstName, lastName, phone); err != nil {
		return err
	}
	u.IncrementVersion()
	u.AddDomainEvent(NewUserUpdatedEvent(u))
	return nil
}

// AssignCompany points the user at a company. companyName is the shadow
// display name and may be empty when the company service was unreachable.
func (u *User) AssignCompany(companyID uuid.UUID, companyName string) {
	u.CompanyID = &companyID
	u.CompanyName = companyName
}

// ClearCompany detaches the user from its company. The user itself survives:
// an employer disappearing never deletes its employees.
func (u *User) ClearCompany() {
	u.CompanyID = nil
	u.CompanyName = ""
}

// ApplySync overwrites the user's mutable fields from a remote event. This is
// the reconciler's write path: a full overwrite, not a merge, and it emits no
// domain events so reconciliation never echoes back onto the channel.
func (u *User) ApplySync(firstName, lastName, phone string, companyID *uuid.UUID, companyName string) {
	u.FirstName = firstName
	u.LastName = lastName
	u.Phone = phone
	u.CompanyID = companyID
	u.CompanyName = companyName
	u.IncrementVersion()
}

// MarkDeleted records the deletion event before the aggregate is removed
func (u *User) MarkDeleted() {
	u.AddDomainEvent(NewUserDeletedEvent(u))
}

func (u *User) setFields(firstName, lastName, phone string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phone = strings.TrimSpace(phone)

	if err := validateName(firstName, "first name"); err != nil {
		return err
	}
	if err := validateName(lastName, "last name"); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}

	u.FirstName = firstName
	u.LastName = lastName
	u.Phone = phone
	return nil
}

func validateName(name, field string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "User "+field+" is required")
	}
	if len(name) > maxNameLength {
		return shared.NewDomainError("INVALID_INPUT", "User "+field+" cannot exceed 50 characters")
	}
	if !nameRegex.MatchString(name) {
		return shared.NewDomainError("INVALID_INPUT", "User "+field+" must start with an uppercase letter and contain only letters")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return shared.NewDomainError("INVALID_INPUT", "User phone is required")
	}
	if !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_INPUT", "User phone must look like +10000000000 with 10-15 digits")
	}
	return nil
}
