package company

import (
	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCompany = "Company"

// Event type constants. A company mutation matters to the outside world per
// member: the aggregate records one event for each affected member and the
// application service converts the drained batch into wire events after
// commit.
const (
	EventTypeMemberAttached  = "CompanyMemberAttached"
	EventTypeMemberRefreshed = "CompanyMemberRefreshed"
	EventTypeMemberDetached  = "CompanyMemberDetached"
)

// MemberAttachedEvent is recorded when a user enters the member set through
// the company API. Minted is set when the company created the user inline,
// in which case the event also carries the personal fields the new user
// starts with.
type MemberAttachedEvent struct {
	shared.BaseDomainEvent
	MemberID  uuid.UUID
	FirstName string
	LastName  string
	Phone     string
	Minted    bool
}

// NewMemberAttachedEvent creates an attachment event for an existing user
func NewMemberAttachedEvent(c *Company, memberID uuid.UUID) *MemberAttachedEvent {
	return &MemberAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberAttached, AggregateTypeCompany, c.ID),
		MemberID:        memberID,
	}
}

// NewMintedMemberEvent creates an attachment event for a user the company
// minted inline
func NewMintedMemberEvent(c *Company, memberID uuid.UUID, firstName, lastName, phone string) *MemberAttachedEvent {
	return &MemberAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberAttached, AggregateTypeCompany, c.ID),
		MemberID:        memberID,
		FirstName:       firstName,
		LastName:        lastName,
		Phone:           phone,
		Minted:          true,
	}
}

// MemberRefreshedEvent is recorded for each member when the company's own
// fields change, so the members' shadow copies catch up with the new
// display name.
type MemberRefreshedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID
}

// NewMemberRefreshedEvent creates a new MemberRefreshedEvent
func NewMemberRefreshedEvent(c *Company, memberID uuid.UUID) *MemberRefreshedEvent {
	return &MemberRefreshedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberRefreshed, AggregateTypeCompany, c.ID),
		MemberID:        memberID,
	}
}

// MemberDetachedEvent is recorded for each member when the company is
// deleted. Members are detached, never deleted along with the company.
type MemberDetachedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID
}

// NewMemberDetachedEvent creates a new MemberDetachedEvent
func NewMemberDetachedEvent(c *Company, memberID uuid.UUID) *MemberDetachedEvent {
	return &MemberDetachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberDetached, AggregateTypeCompany, c.ID),
		MemberID:        memberID,
	}
}
