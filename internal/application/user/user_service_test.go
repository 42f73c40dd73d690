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

// capturingPublisher records published events and can simulate a broken
// transport.
type capturingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	channel string
	event   propagation.ChangeEvent
}

func (p *capturingPublisher) Publish(_ context.Context, channel string, event propagation.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{channel: channel, event: event})
	return nil
}

func (p *capturingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and publishes CREATED", func(t *testing.T) {
		repo := newFakeUserRepo()
		pub := &capturingPublisher{}
		svc := NewUserService(repo, pub, zap.NewNop())
		companyID := uuid.New()

		resp, err := svc.Create(ctx, CreateUserRequest{
			FirstName: "Ann",
			LastName:  "Smith",
			Phone:     "+10000000000",
			CompanyID: &companyID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Ann", resp.FirstName)
		require.NotNil(t, resp.CompanyID)
		assert.Equal(t, companyID, *resp.CompanyID)
		// No directory attached, so the shadow name stays empty until a
		// company event fills it in
		assert.Empty(t, resp.CompanyName)

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, propagation.ChannelUserEvents, events[0].channel)
		assert.Equal(t, resp.ID, events[0].event.SubjectID)
		assert.Equal(t, propagation.KindCreated, events[0].event.Kind)
		assert.Equal(t, "Ann", events[0].event.FirstName)
		require.NotNil(t, events[0].event.CrossRefID)
		assert.Equal(t, companyID, *events[0].event.CrossRefID)
	})

	t.Run("invalid input publishes nothing", func(t *testing.T) {
		repo := newFakeUserRepo()
		pub := &capturingPublisher{}
		svc := NewUserService(repo, pub, zap.NewNop())

		_, err := svc.Create(ctx, CreateUserRequest{FirstName: "ann", LastName: "Smith", Phone: "+10000000000"})

		assert.Error(t, err)
		assert.Empty(t, pub.published())
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		repo := newFakeUserRepo()
		pub := &capturingPublisher{err: errors.New("broker down")}
		svc := NewUserService(repo, pub, zap.NewNop())

		resp, err := svc.Create(ctx, CreateUserRequest{FirstName: "Ann", LastName: "Smith", Phone: "+10000000000"})

		require.NoError(t, err)
		assert.NotNil(t, repo.get(resp.ID))
	})
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields and publishes UPDATED", func(t *testing.T) {
		repo := newFakeUserRepo()
		pub := &capturingPublisher{}
		svc := NewUserService(repo, pub, zap.NewNop())

		created, err := svc.Create(ctx, CreateUserRequest{FirstName: "Ann", LastName: "Smith", Phone: "+10000000000"})
		require.NoError(t, err)
		companyID := uuid.New()

		resp, err := svc.Update(ctx, created.ID, UpdateUserRequest{
			FirstName: "Bob",
			LastName:  "Jones",
			Phone:     "+20000000000",
			CompanyID: &companyID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Bob", resp.FirstName)
		require.NotNil(t, resp.CompanyID)

		events := pub.published()
		require.Len(t, events, 2)
		assert.Equal(t, propagation.KindUpdated, events[1].event.Kind)
		assert.Equal(t, "Bob", events[1].event.FirstName)
	})

	t.Run("omitting company detaches the user", func(t *testing.T) {
		repo := newFakeUserRepo()
		pub := &capturingPublisher{}
		svc := NewUserService(repo, pub, zap.NewNop())
		companyID := uuid.New()

		created, err := svc.Create(ctx, CreateUserRequest{
			FirstName: "Ann", LastName: "Smith", Phone: "+10000000000", CompanyID: &companyID,
		})
		require.NoError(t, err)

		resp, err := svc.Update(ctx, created.ID, UpdateUserRequest{
			FirstName: "Ann", LastName: "Smith", Phone: "+10000000000",
		})

		require.NoError(t, err)
		assert.Nil(t, resp.CompanyID)

		events := pub.published()
		require.Len(t, events, 2)
		assert.Nil(t, events[1].event.CrossRefID)
	})

	t.Run("unknown user returns not found", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), &capturingPublisher{}, zap.NewNop())

		_, err := svc.Update(ctx, uuid.New(), UpdateUserRequest{
			FirstName: "Ann", LastName: "Smith", Phone: "+10000000000",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserServiceDelete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	pub := &capturingPublisher{}
	svc := NewUserService(repo, pub, zap.NewNop())

	created, err := svc.Create(ctx, CreateUserRequest{FirstName: "Ann", LastName: "Smith", Phone: "+10000000000"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Nil(t, repo.get(created.ID))

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, propagation.KindDeleted, events[1].event.Kind)
	assert.Equal(t, created.ID, events[1].event.SubjectID)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), shared.ErrNotFound)
}

func TestUserServiceList(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	pub := &capturingPublisher{}
	svc := NewUserService(repo, pub, zap.NewNop())
	companyID := uuid.New()

	_, err := svc.Create(ctx, CreateUserRequest{FirstName: "Ann", LastName: "Smith", Phone: "+10000000000", CompanyID: &companyID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserRequest{FirstName: "Bob", LastName: "Jones", Phone: "+20000000000"})
	require.NoError(t, err)

	t.Run("lists all users", func(t *testing.T) {
		users, total, err := svc.List(ctx, UserListFilter{})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.EqualValues(t, 2, total)
	})

	t.Run("filters by company", func(t *testing.T) {
		users, total, err := svc.List(ctx, UserListFilter{CompanyID: &companyID})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Ann", users[0].FirstName)
	})

	t.Run("lists by company directly", func(t *testing.T) {
		users, err := svc.ListByCompany(ctx, companyID)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Ann", users[0].FirstName)
	})

	t.Run("unknown company yields an empty list", func(t *testing.T) {
		users, err := svc.ListByCompany(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

type fakeCompanyDirectory struct {
	names map[uuid.UUID]string
	err   error
}

func (d *fakeCompanyDirectory) GetCompany(_ context.Context, companyID uuid.UUID) (*CompanyRecord, error) {
	if d.err != nil {
		return nil, d.err
	}
	name, ok := d.names[companyID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &CompanyRecord{ID: companyID, Name: name}, nil
}

func TestUserServiceCompanyLookup(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("create resolves and stores the display name", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &capturingPublisher{}, zap.NewNop()).
			WithCompanyDirectory(&fakeCompanyDirectory{names: map[uuid.UUID]string{companyID: "Acme"}})

		resp, err := svc.Create(ctx, CreateUserRequest{
			FirstName: "Ann", LastName: "Smith", Phone: "+10000000000", CompanyID: &companyID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.CompanyName)
		assert.Equal(t, "Acme", repo.get(resp.ID).CompanyName)
	})

	t.Run("lookup failure degrades to an empty shadow", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &capturingPublisher{}, zap.NewNop()).
			WithCompanyDirectory(&fakeCompanyDirectory{err: errors.New("company service down")})

		resp, err := svc.Create(ctx, CreateUserRequest{
			FirstName: "Ann", LastName: "Smith", Phone: "+10000000000", CompanyID: &companyID,
		})

		require.NoError(t, err)
		require.NotNil(t, resp.CompanyID)
		assert.Empty(t, resp.CompanyName)
	})

	t.Run("update refreshes the display name", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &capturingPublisher{}, zap.NewNop()).
			WithCompanyDirectory(&fakeCompanyDirectory{names: map[uuid.UUID]string{companyID: "Acme"}})

		created, err := svc.Create(ctx, CreateUserRequest{
			FirstName: "Ann", LastName: "Smith", Phone: "+10000000000",
		})
		require.NoError(t, err)

		resp, err := svc.Update(ctx, created.ID, UpdateUserRequest{
			FirstName: "Ann", LastName: "Smith", Phone: "+10000000000", CompanyID: &companyID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.CompanyName)
	})

	t.Run("update keeps the known name when the lookup fails", func(t *testing.T) {
		repo := newFakeUserRepo()
		u, err := user.NewUser("Ann", "Smith", "+10000000000")
		require.NoError(t, err)
		u.AssignCompany(companyID, "Acme")
		u.ClearDomainEvents()
		repo.put(u)

		svc := NewUserService(repo, &capturingPublisher{}, zap.NewNop()).
			WithCompanyDirectory(&fakeCompanyDirectory{err: errors.New("company service down")})

		resp, err := svc.Update(ctx, u.ID, UpdateUserRequest{
			FirstName: "Bob", LastName: "Jones", Phone: "+20000000000", CompanyID: &companyID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.CompanyName)
	})

	t.Run("read backfills an empty shadow without persisting it", func(t *testing.T) {
		repo := newFakeUserRepo()
		u, err := user.NewUser("Ann", "Smith", "+10000000000")
		require.NoError(t, err)
		u.AssignCompany(companyID, "")
		u.ClearDomainEvents()
		repo.put(u)

		svc := NewUserService(repo, &capturingPublisher{}, zap.NewNop()).
			WithCompanyDirectory(&fakeCompanyDirectory{names: map[uuid.UUID]string{companyID: "Acme"}})

		resp, err := svc.GetByID(ctx, u.ID)

		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.CompanyName)
		assert.Empty(t, repo.get(u.ID).CompanyName)
	})
}
