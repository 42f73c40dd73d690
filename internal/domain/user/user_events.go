package user

import (
	"github.com/orgsync/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// Event type constants. The events are facts recorded on the aggregate and
// drained by the application service after commit; the wire payload is built
// from the committed state, so the events carry no snapshot of their own.
const (
	EventTypeUserCreated = "UserCreated"
	EventTypeUserUpdated = "UserUpdated"
	EventTypeUserDeleted = "UserDeleted"
)

// UserCreatedEvent is recorded when a new user is created locally
type UserCreatedEvent struct {
	shared.BaseDomainEvent
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID),
	}
}

// UserUpdatedEvent is recorded when a user is updated locally
type UserUpdatedEvent struct {
	shared.BaseDomainEvent
}

// NewUserUpdatedEvent creates a new UserUpdatedEvent
func NewUserUpdatedEvent(u *User) *UserUpdatedEvent {
	return &UserUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserUpdated, AggregateTypeUser, u.ID),
	}
}

// UserDeletedEvent is recorded when a user is deleted locally
type UserDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(u *User) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeleted, AggregateTypeUser, u.ID),
	}
}
