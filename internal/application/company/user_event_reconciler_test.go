package company

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orgsync/backend/internal/domain/company"
	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/domain/shared"
)

// fakeCompanyRepo is an in-memory company.Repository for exercising the
// service and reconciler flows without a database.
type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*company.Company
	saveErr   error
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[uuid.UUID]*company.Company)}
}

func cloneCompany(c *company.Company) *company.Company {
	clone := *c
	clone.MemberIDs = make([]uuid.UUID, len(c.MemberIDs))
	copy(clone.MemberIDs, c.MemberIDs)
	return &clone
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneCompany(c), nil
}

func (r *fakeCompanyRepo) FindAll(_ context.Context, _ shared.Filter) ([]company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]company.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, *cloneCompany(c))
	}
	return out, nil
}

func (r *fakeCompanyRepo) FindByMember(_ context.Context, userID uuid.UUID) ([]company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []company.Company
	for _, c := range r.companies {
		if c.HasMember(userID) {
			out = append(out, *cloneCompany(c))
		}
	}
	return out, nil
}

func (r *fakeCompanyRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.companies)), nil
}

func (r *fakeCompanyRepo) Save(_ context.Context, c *company.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.companies[c.ID] = cloneCompany(c)
	return nil
}

func (r *fakeCompanyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

func (r *fakeCompanyRepo) get(id uuid.UUID) *company.Company {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil
	}
	return cloneCompany(c)
}

func (r *fakeCompanyRepo) put(c *company.Company) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID] = cloneCompany(c)
}

func mustCompany(t *testing.T, name string) *company.Company {
	t.Helper()
	c, err := company.NewCompany(name, decimal.NewFromInt(1000))
	require.NoError(t, err)
	return c
}

func TestUserEventReconcilerMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the subject to the named company", func(t *testing.T) {
		repo := newFakeCompanyRepo()
		r := NewUserEventReconciler(repo, zap.NewNop())
		acme := mustCompany(t, "Acme")
		repo.put(acme)
		userID := uuid.New()

		event := propagation.ChangeEvent{
			SubjectID:  userID,
			CrossRefID: &acme.ID,
			Kind:       propagation.KindCreated,
		}
		require.NoError(t, r.HandleEvent(ctx, event))
		assert.True(t, repo.get(acme.ID).HasMember(userID))

		// Redelivery is a no-op
		require.NoError(t, r.HandleEvent(ctx, event))
		assert.Len(t, repo.get(acme.ID).MemberIDs, 1)
	})

	t.Run("moves the subject between companies", func(t *testing.T) {
		repo := newFakeCompanyRepo()
		r := NewUserEventReconciler(repo, zap.NewNop())
		acme := mustCompany(t, "Acme")
		globex := mustCompany(t, "Globex")
		userID := uuid.New()
		acme.AddMember(userID)
		repo.put(acme)
		repo.put(globex)

		event := propagation.ChangeEvent{
			SubjectID:  userID,
			CrossRefID: &globex.ID,
			Kind:       propagation.KindUpdated,
		}
		require.NoError(t, r.HandleEvent(ctx, event))

		assert.False(t, repo.get(acme.ID).HasMember(userID))
		assert.True(t, repo.get(globex.ID).HasMember(userID))
	})

	t.Run("event without a company prunes the subject everywhere", func(t *testing.T) {
		repo := newFakeCompanyRepo()
		r := NewUserEventReconciler(repo, zap.NewNop())
		acme := mustCompany(t, "Acme")
		userID := uuid.New()
		acme.AddMember(userID)
		repo.put(acme)

		event := propagation.ChangeEvent{
			SubjectID: userID,
			Kind:      propagation.KindUpdated,
		}
		require.NoError(t, r.HandleEvent(ctx, event))
		assert.False(t, repo.get(acme.ID).HasMember(userID))
	})

	t.Run("event naming an unknown company is dropped", func(t *testing.T) {
		repo := newFakeCompanyRepo()
		r := NewUserEventReconciler(repo, zap.NewNop())
		unknown := uuid.New()

		event := propagation.ChangeEvent{
			SubjectID:  uuid.New(),
			CrossRefID: &unknown,
			Kind:       propagation.KindCreated,
		}
		assert.NoError(t, r.HandleEvent(ctx, event))
	})

	t.Run("store failure surfaces for redelivery", func(t *testing.T) {
		repo := newFakeCompanyRepo()
		r := NewUserEventReconciler(repo, zap.NewNop())
		acme := mustCompany(t, "Acme")
		repo.put(acme)
		repo.saveErr = errors.New("db down")

		event := propagation.ChangeEvent{
			SubjectID:  uuid.New(),
			CrossRefID: &acme.ID,
			Kind:       propagation.KindCreated,
		}
		assert.Error(t, r.HandleEvent(ctx, event))
	})
}

func TestUserEventReconcilerPrune(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCompanyRepo()
	r := NewUserEventReconciler(repo, zap.NewNop())
	acme := mustCompany(t, "Acme")
	userID := uuid.New()
	acme.AddMember(userID)
	acme.AddMember(uuid.New())
	repo.put(acme)

	event := propagation.ChangeEvent{
		SubjectID: userID,
		Kind:      propagation.KindDeleted,
	}
	require.NoError(t, r.HandleEvent(ctx, event))

	got := repo.get(acme.ID)
	assert.False(t, got.HasMember(userID))
	assert.Len(t, got.MemberIDs, 1)

	// Redelivery finds nothing to remove
	require.NoError(t, r.HandleEvent(ctx, event))
}
