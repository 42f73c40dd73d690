package company

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/company"
	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/domain/shared"
)

// UserEventReconciler consumes the user-events channel and keeps company
// member sets consistent with the user service's authoritative company
// assignments.
//
// The reconciliation rule is set-based: after applying an event, the subject
// appears in the member set of exactly the company its event names, and in
// no other. Membership mutations here emit no domain events, so reconciled
// writes never echo back onto the channel.
type UserEventReconciler struct {
	companyRepo company.Repository
	logger      *zap.Logger
}

// NewUserEventReconciler creates a new UserEventReconciler
func NewUserEventReconciler(companyRepo company.Repository, logger *zap.Logger) *UserEventReconciler {
	return &UserEventReconciler{
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// HandleEvent applies one user-originated change event. A returned error
// means the local store failed and the message should be redelivered.
func (r *UserEventReconciler) HandleEvent(ctx context.Context, event propagation.ChangeEvent) error {
	switch {
	case event.Kind.IsUpsert():
		return r.reconcileMembership(ctx, event)
	case event.Kind == propagation.KindDeleted:
		return r.pruneMember(ctx, event.SubjectID)
	default:
		r.logger.Warn("user event with unexpected kind dropped",
			zap.String("kind", string(event.Kind)))
		return nil
	}
}

// reconcileMembership moves the subject into the member set of the company
// the event names and out of every other. An event without a company means
// the user is unassigned and is pruned everywhere.
func (r *UserEventReconciler) reconcileMembership(ctx context.Context, event propagation.ChangeEvent) error {
	if err := r.removeFromOthers(ctx, event.SubjectID, event.CrossRefID); err != nil {
		return err
	}
	if event.CrossRefID == nil {
		return nil
	}

	c, err := r.companyRepo.FindByID(ctx, *event.CrossRefID)
	if errors.Is(err, shared.ErrNotFound) {
		// The named company does not exist locally. There is nothing to
		// fabricate from a user event, so the message is dropped; the
		// company arriving later through its own API resets membership.
		r.logger.Warn("membership event for unknown company dropped",
			zap.String("company_id", event.CrossRefID.String()),
			zap.String("user_id", event.SubjectID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	if !c.AddMember(event.SubjectID) {
		return nil
	}
	if err := r.companyRepo.Save(ctx, c); err != nil {
		return err
	}

	r.logger.Debug("member added from user event",
		zap.String("company_id", c.ID.String()),
		zap.String("user_id", event.SubjectID.String()))
	return nil
}

// pruneMember removes a deleted user from every member set it appears in
func (r *UserEventReconciler) pruneMember(ctx context.Context, userID uuid.UUID) error {
	return r.removeFromOthers(ctx, userID, nil)
}

// removeFromOthers removes the user from every company except the one named
// by keep (which may be nil to remove from all).
func (r *UserEventReconciler) removeFromOthers(ctx context.Context, userID uuid.UUID, keep *uuid.UUID) error {
	companies, err := r.companyRepo.FindByMember(ctx, userID)
	if err != nil {
		return err
	}

	for i := range companies {
		c := &companies[i]
		if keep != nil && c.ID == *keep {
			continue
		}
		if !c.RemoveMember(userID) {
			continue
		}
		if err := r.companyRepo.Save(ctx, c); err != nil {
			return err
		}
		r.logger.Debug("member removed from user event",
			zap.String("company_id", c.ID.String()),
			zap.String("user_id", userID.String()))
	}
	return nil
}
