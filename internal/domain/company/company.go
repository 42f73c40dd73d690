package company

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orgsync/backend/internal/domain/shared"
)

const maxNameLength = 50

// Company is the aggregate root of the company service. MemberIDs is the
// denormalized member set: a non-authoritative cache of which users work here,
// kept consistent with the user service through the event channel rather than
// a shared foreign-key constraint.
type Company struct {
	shared.BaseAggregateRoot
	Name      string
	Budget    decimal.Decimal
	MemberIDs []uuid.UUID
}

// NewCompany creates a new company with required fields
func NewCompany(name string, budget decimal.Decimal) (*Company, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateBudget(budget); err != nil {
		return nil, err
	}

	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Budget:            budget,
		MemberIDs:         make([]uuid.UUID, 0),
	}, nil
}

// Update replaces the company's own fields and records a refresh event for
// every current member, since their shadow copies of the display name are
// now stale.
func (c *Company) Update(name string, budget decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}
	c.Name = name
	c.Budget = budget
	c.IncrementVersion()
	for _, memberID := range c.MemberIDs {
		c.AddDomainEvent(NewMemberRefreshedEvent(c, memberID))
	}
	return nil
}

// MarkDeleted records one detach event per member before the aggregate is
// removed
func (c *Company) MarkDeleted() {
	for _, memberID := range c.MemberIDs {
		c.AddDomainEvent(NewMemberDetachedEvent(c, memberID))
	}
}

// AttachMember adds an existing user to the member set through the API path
// and records the attachment. Recording is unconditional: re-attaching a
// user already in the set still refreshes that user's shadow fields.
func (c *Company) AttachMember(userID uuid.UUID) {
	c.AddMember(userID)
	c.AddDomainEvent(NewMemberAttachedEvent(c, userID))
}

// AttachNewMember mints a user inside the member set. The identity is
// assigned here and propagated outward; the user service materializes the
// user from the resulting event.
func (c *Company) AttachNewMember(firstName, lastName, phone string) uuid.UUID {
	userID := uuid.New()
	c.AddMember(userID)
	c.AddDomainEvent(NewMintedMemberEvent(c, userID, firstName, lastName, phone))
	return userID
}

// AddMember adds a user ID to the member set. Adding an ID that is already
// present is a no-op, which makes duplicate and replayed events harmless.
// Returns true when the set actually grew.
func (c *Company) AddMember(userID uuid.UUID) bool {
	if c.HasMember(userID) {
		return false
	}
	c.MemberIDs = append(c.MemberIDs, userID)
	return true
}

// RemoveMember removes a user ID from the member set. Removing an absent ID
// is a no-op. Returns true when the set actually shrank.
func (c *Company) RemoveMember(userID uuid.UUID) bool {
	for i, id := range c.MemberIDs {
		if id == userID {
			c.MemberIDs = append(c.MemberIDs[:i], c.MemberIDs[i+1:]...)
			return true
		}
	}
	return false
}

// HasMember reports whether the user ID is in the member set
func (c *Company) HasMember(userID uuid.UUID) bool {
	for _, id := range c.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Company name is required")
	}
	if len(name) > maxNameLength {
		return shared.NewDomainError("INVALID_INPUT", "Company name cannot exceed 50 characters")
	}
	return nil
}

func validateBudget(budget decimal.Decimal) error {
	if budget.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Company budget must be greater than zero")
	}
	return nil
}
