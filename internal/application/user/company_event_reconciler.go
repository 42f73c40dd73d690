package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/domain/shared"
	"github.com/orgsync/backend/internal/domain/user"
)

// CompanyEventReconciler consumes the company-events channel and folds
// company-originated changes into the local user store.
//
// All writes here go through the sync path (full overwrite, no domain events
// emitted), so reconciliation never echoes back onto the channel. Every rule
// is idempotent: replaying a message converges to the same state.
type CompanyEventReconciler struct {
	userRepo user.Repository
	logger   *zap.Logger
}

// NewCompanyEventReconciler creates a new CompanyEventReconciler
func NewCompanyEventReconciler(userRepo user.Repository, logger *zap.Logger) *CompanyEventReconciler {
	return &CompanyEventReconciler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// HandleEvent applies one company-originated change event. A returned error
// means the local store failed and the message should be redelivered.
func (r *CompanyEventReconciler) HandleEvent(ctx context.Context, event propagation.ChangeEvent) error {
	switch {
	case event.Kind.IsUpsert():
		return r.upsert(ctx, event)
	case event.Kind == propagation.KindDeleted:
		return r.detach(ctx, event)
	default:
		// Unknown kinds are acked upstream; reaching here is a dispatch bug.
		r.logger.Warn("company event with unexpected kind dropped",
			zap.String("kind", string(event.Kind)))
		return nil
	}
}

// upsert applies a CREATED/UPDATED event. The subject user is created if it
// does not exist and fully overwritten if it does. Events that carry no
// personal fields only move the company pointer.
func (r *CompanyEventReconciler) upsert(ctx context.Context, event propagation.ChangeEvent) error {
	u, err := r.userRepo.FindByID(ctx, event.SubjectID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if !hasPersonalFields(event) {
			// A membership-only event about a user this service has never
			// seen carries nothing worth materializing.
			r.logger.Warn("membership event for unknown user dropped",
				zap.String("user_id", event.SubjectID.String()))
			return nil
		}
		u = user.NewUserWithID(event.SubjectID, event.FirstName, event.LastName, event.Phone)
		if event.CrossRefID != nil {
			u.AssignCompany(*event.CrossRefID, event.CrossRefName)
		}
	case err != nil:
		return err
	case hasPersonalFields(event):
		u.ApplySync(event.FirstName, event.LastName, event.Phone, event.CrossRefID, event.CrossRefName)
	case event.CrossRefID != nil:
		u.AssignCompany(*event.CrossRefID, event.CrossRefName)
	default:
		return nil
	}

	if err := r.userRepo.Save(ctx, u); err != nil {
		return err
	}

	r.logger.Debug("user reconciled from company event",
		zap.String("user_id", event.SubjectID.String()),
		zap.String("kind", string(event.Kind)))
	return nil
}

// detach applies a DELETED event. A company going away detaches its users,
// it never deletes them. When the event names the company, every user still
// pointing at it is cleared in one sweep; duplicate deliveries then find
// nothing left to clear.
func (r *CompanyEventReconciler) detach(ctx context.Context, event propagation.ChangeEvent) error {
	if event.CrossRefID != nil {
		touched, err := r.userRepo.DetachCompany(ctx, *event.CrossRefID)
		if err != nil {
			return err
		}
		if touched > 0 {
			r.logger.Info("users detached from deleted company",
				zap.String("company_id", event.CrossRefID.String()),
				zap.Int64("users", touched))
		}
		return nil
	}

	u, err := r.userRepo.FindByID(ctx, event.SubjectID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	u.ClearCompany()
	return r.userRepo.Save(ctx, u)
}

func hasPersonalFields(event propagation.ChangeEvent) bool {
	return event.FirstName != "" || event.LastName != "" || event.Phone != ""
}
