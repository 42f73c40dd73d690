package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/domain/shared"
	"github.com/orgsync/backend/internal/domain/user"
)

// fakeUserRepo is an in-memory user.Repository for exercising the service and
// reconciler flows without a database.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*user.User
	saveErr error
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, _ shared.Filter) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) FindByCompanyID(_ context.Context, companyID uuid.UUID) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.User
	for _, u := range r.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) DetachCompany(_ context.Context, companyID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var touched int64
	for _, u := range r.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			u.ClearCompany()
			touched++
		}
	}
	return touched, nil
}

func (r *fakeUserRepo) get(id uuid.UUID) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepo) put(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *u
	r.users[u.ID] = &clone
}

func TestCompanyEventReconcilerUpsert(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("creates unknown user from a full event", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		subject := uuid.New()

		event := propagation.ChangeEvent{
			SubjectID:    subject,
			FirstName:    "Ann",
			LastName:     "Smith",
			Phone:        "+10000000000",
			CrossRefID:   &companyID,
			CrossRefName: "Acme",
			Kind:         propagation.KindCreated,
		}
		require.NoError(t, r.HandleEvent(ctx, event))

		u := repo.get(subject)
		require.NotNil(t, u)
		assert.Equal(t, subject, u.ID)
		assert.Equal(t, "Ann", u.FirstName)
		assert.Equal(t, "Smith", u.LastName)
		assert.Equal(t, "+10000000000", u.Phone)
		require.NotNil(t, u.CompanyID)
		assert.Equal(t, companyID, *u.CompanyID)
		assert.Equal(t, "Acme", u.CompanyName)
	})

	t.Run("replaying the same event converges to the same state", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		subject := uuid.New()
		event := propagation.ChangeEvent{
			SubjectID: subject,
			FirstName: "Ann",
			LastName:  "Smith",
			Phone:     "+10000000000",
			Kind:      propagation.KindCreated,
		}

		require.NoError(t, r.HandleEvent(ctx, event))
		first := *repo.get(subject)
		require.NoError(t, r.HandleEvent(ctx, event))
		second := *repo.get(subject)

		assert.Equal(t, first.FirstName, second.FirstName)
		assert.Equal(t, first.Phone, second.Phone)
	})

	t.Run("full event overwrites every field of an existing user", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		existing, _ := user.NewUser("Bob", "Jones", "+20000000000")
		repo.put(existing)

		event := propagation.ChangeEvent{
			SubjectID:    existing.ID,
			FirstName:    "Ann",
			LastName:     "Smith",
			Phone:        "+10000000000",
			CrossRefID:   &companyID,
			CrossRefName: "Acme",
			Kind:         propagation.KindUpdated,
		}
		require.NoError(t, r.HandleEvent(ctx, event))

		u := repo.get(existing.ID)
		assert.Equal(t, "Ann", u.FirstName)
		assert.Equal(t, "Smith", u.LastName)
		assert.Equal(t, "+10000000000", u.Phone)
		assert.Equal(t, "Acme", u.CompanyName)
	})

	t.Run("membership-only event moves the pointer and nothing else", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		existing, _ := user.NewUser("Bob", "Jones", "+20000000000")
		repo.put(existing)

		event := propagation.ChangeEvent{
			SubjectID:    existing.ID,
			CrossRefID:   &companyID,
			CrossRefName: "Acme",
			Kind:         propagation.KindUpdated,
		}
		require.NoError(t, r.HandleEvent(ctx, event))

		u := repo.get(existing.ID)
		assert.Equal(t, "Bob", u.FirstName)
		assert.Equal(t, "Jones", u.LastName)
		assert.Equal(t, "+20000000000", u.Phone)
		require.NotNil(t, u.CompanyID)
		assert.Equal(t, companyID, *u.CompanyID)
		assert.Equal(t, "Acme", u.CompanyName)
	})

	t.Run("membership-only event for unknown user is dropped", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		subject := uuid.New()

		event := propagation.ChangeEvent{
			SubjectID:  subject,
			CrossRefID: &companyID,
			Kind:       propagation.KindUpdated,
		}
		require.NoError(t, r.HandleEvent(ctx, event))
		assert.Nil(t, repo.get(subject))
	})

	t.Run("store failure surfaces for redelivery", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.saveErr = errors.New("db down")
		r := NewCompanyEventReconciler(repo, zap.NewNop())

		event := propagation.ChangeEvent{
			SubjectID: uuid.New(),
			FirstName: "Ann",
			LastName:  "Smith",
			Phone:     "+10000000000",
			Kind:      propagation.KindCreated,
		}
		assert.Error(t, r.HandleEvent(ctx, event))
	})
}

func TestCompanyEventReconcilerDetach(t *testing.T) {
	ctx := context.Background()

	t.Run("company deletion detaches every member, never deletes them", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		companyID := uuid.New()

		first, _ := user.NewUser("Ann", "Smith", "+10000000000")
		first.AssignCompany(companyID, "Acme")
		second, _ := user.NewUser("Bob", "Jones", "+20000000000")
		second.AssignCompany(companyID, "Acme")
		other, _ := user.NewUser("Carl", "Brown", "+30000000000")
		other.AssignCompany(uuid.New(), "Globex")
		repo.put(first)
		repo.put(second)
		repo.put(other)

		event := propagation.ChangeEvent{
			SubjectID:  first.ID,
			CrossRefID: &companyID,
			Kind:       propagation.KindDeleted,
		}
		require.NoError(t, r.HandleEvent(ctx, event))

		assert.Nil(t, repo.get(first.ID).CompanyID)
		assert.Nil(t, repo.get(second.ID).CompanyID)
		assert.NotNil(t, repo.get(other.ID).CompanyID)

		// Redelivery finds nothing left to clear
		require.NoError(t, r.HandleEvent(ctx, event))
	})

	t.Run("subject-only deletion clears just that user", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		companyID := uuid.New()

		u, _ := user.NewUser("Ann", "Smith", "+10000000000")
		u.AssignCompany(companyID, "Acme")
		repo.put(u)

		event := propagation.ChangeEvent{
			SubjectID: u.ID,
			Kind:      propagation.KindDeleted,
		}
		require.NoError(t, r.HandleEvent(ctx, event))
		assert.Nil(t, repo.get(u.ID).CompanyID)
	})

	t.Run("deletion for unknown user is a no-op", func(t *testing.T) {
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())

		event := propagation.ChangeEvent{
			SubjectID: uuid.New(),
			Kind:      propagation.KindDeleted,
		}
		assert.NoError(t, r.HandleEvent(ctx, event))
	})
}

// Two full updates for the same subject may arrive in either order. Whatever
// the order, the stored record must equal the whole last-applied payload,
// never a mix of fields from both.
func TestCompanyEventReconcilerConvergence(t *testing.T) {
	ctx := context.Background()
	subject := uuid.New()
	acmeID := uuid.New()
	globexID := uuid.New()

	older := propagation.ChangeEvent{
		SubjectID:    subject,
		FirstName:    "Ann",
		LastName:     "Smith",
		Phone:        "+10000000000",
		CrossRefID:   &acmeID,
		CrossRefName: "Acme",
		Kind:         propagation.KindUpdated,
	}
	newer := propagation.ChangeEvent{
		SubjectID:    subject,
		FirstName:    "Bella",
		LastName:     "Jones",
		Phone:        "+20000000000",
		CrossRefID:   &globexID,
		CrossRefName: "Globex",
		Kind:         propagation.KindUpdated,
	}

	apply := func(t *testing.T, events ...propagation.ChangeEvent) *user.User {
		t.Helper()
		repo := newFakeUserRepo()
		r := NewCompanyEventReconciler(repo, zap.NewNop())
		repo.put(user.NewUserWithID(subject, "Zoe", "Black", "+30000000000"))
		for _, event := range events {
			require.NoError(t, r.HandleEvent(ctx, event))
		}
		return repo.get(subject)
	}

	wholePayload := func(t *testing.T, u *user.User, want propagation.ChangeEvent) {
		t.Helper()
		require.NotNil(t, u)
		assert.Equal(t, want.FirstName, u.FirstName)
		assert.Equal(t, want.LastName, u.LastName)
		assert.Equal(t, want.Phone, u.Phone)
		require.NotNil(t, u.CompanyID)
		assert.Equal(t, *want.CrossRefID, *u.CompanyID)
		assert.Equal(t, want.CrossRefName, u.CompanyName)
	}

	t.Run("in-order delivery lands on the newer payload", func(t *testing.T) {
		wholePayload(t, apply(t, older, newer), newer)
	})

	t.Run("reversed delivery lands on the older payload whole", func(t *testing.T) {
		wholePayload(t, apply(t, newer, older), older)
	})
}
