// Package propagation defines the cross-service consistency protocol: the
// ChangeEvent wire record exchanged between the user and company services,
// the channel names, and the producer/consumer contracts.
//
// The protocol is deliberately weak: at-least-once delivery, no ordering
// across producers, no distributed transactions. Consumers compensate with
// idempotent upsert/delete reconciliation rules instead.
package propagation

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/shared"
)

// Kind discriminates what happened to the subject entity. It is a closed
// tagged-variant type: values outside the known set parse to KindUnknown,
// which consumers must treat as a safe no-op so that new kinds fail closed.
type Kind string

const (
	KindCreated Kind = "CREATED"
	KindUpdated Kind = "UPDATED"
	KindDeleted Kind = "DELETED"
	KindUnknown Kind = ""
)

// ParseKind maps a wire string to a Kind, folding anything unrecognized
// into KindUnknown.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindCreated, KindUpdated, KindDeleted:
		return Kind(s)
	default:
		return KindUnknown
	}
}

// IsUpsert reports whether the kind carries CREATED/UPDATED semantics.
// The two are handled identically: the protocol is upsert-based, not a diff.
func (k Kind) IsUpsert() bool {
	return k == KindCreated || k == KindUpdated
}

// Protocol errors
var (
	ErrMissingSubject = shared.NewDomainError("MISSING_SUBJECT", "Change event has no subject ID")
	ErrUnknownKind    = shared.NewDomainError("UNKNOWN_KIND", "Change event has an unrecognized kind")
)

// ChangeEvent is the wire record describing a cross-reference-relevant
// mutation. The subject is always a user; the cross reference is always a
// company. The encoding is JSON, self-describing and unknown-field tolerant,
// so optional fields can be added without breaking old consumers.
//
// A ChangeEvent is constructed after a successful local commit, published
// once, consumed zero or more times, and discarded after application. It is
// never persisted as a log.
type ChangeEvent struct {
	SubjectID    uuid.UUID  `json:"subjectId"`
	FirstName    string     `json:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	CrossRefID   *uuid.UUID `json:"crossRefId,omitempty"`
	CrossRefName string     `json:"crossRefName,omitempty"`
	Kind         Kind       `json:"kind"`
}

// Validate checks the invariants every event must satisfy before it is
// published or applied. Events failing validation on the consumer side are
// dropped, never retried: a malformed message will never become well-formed.
func (e *ChangeEvent) Validate() error {
	if e.SubjectID == uuid.Nil {
		return ErrMissingSubject
	}
	if ParseKind(string(e.Kind)) == KindUnknown {
		return ErrUnknownKind
	}
	return nil
}

// Encode serializes the event to its canonical JSON form. A failure here
// signals a local bug, not a transport problem.
func (e *ChangeEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode deserializes a wire payload into a ChangeEvent. Unknown fields are
// ignored; an unrecognized kind string survives decoding and is caught by
// Validate so the caller can drop it explicitly.
func Decode(payload []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return ChangeEvent{}, err
	}
	return e, nil
}
