package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/domain/shared"
	"github.com/orgsync/backend/internal/domain/user"
)

// CompanyDirectory resolves a company ID to that company's details. The
// company service's read API sits behind it.
type CompanyDirectory interface {
	GetCompany(ctx context.Context, companyID uuid.UUID) (*CompanyRecord, error)
}

// UserService handles user-related business operations and owns the outbound
// side of the user->company propagation direction.
type UserService struct {
	userRepo  user.Repository
	publisher propagation.Publisher
	companies CompanyDirectory
	logger    *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo user.Repository, publisher propagation.Publisher, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// WithCompanyDirectory attaches the company service lookup used to resolve
// the shadow display name on writes and reads.
func (s *UserService) WithCompanyDirectory(companies CompanyDirectory) *UserService {
	s.companies = companies
	return s
}

// Create creates a new user and notifies the company service
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	u, err := user.NewUser(req.FirstName, req.LastName, req.Phone)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != nil {
		u.AssignCompany(*req.CompanyID, s.resolveCompanyName(ctx, *req.CompanyID, ""))
	}

	recorded := u.GetDomainEvents()
	u.ClearDomainEvents()
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.notify(ctx, u, recorded)

	response := ToUserResponse(u)
	return &response, nil
}

// GetByID retrieves a user by ID. A stored user whose shadow company name is
// still empty gets it backfilled from the company service for the response
// only; the stored record stays untouched until an event or write fills it.
func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(u)
	if u.CompanyID != nil && u.CompanyName == "" {
		response.CompanyName = s.resolveCompanyName(ctx, *u.CompanyID, "")
	}
	return &response, nil
}

// List retrieves users with pagination. When CompanyID is set the list is
// restricted to that company's users.
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	if filter.CompanyID != nil {
		users, err := s.userRepo.FindByCompanyID(ctx, *filter.CompanyID)
		if err != nil {
			return nil, 0, err
		}
		return toResponses(users), int64(len(users)), nil
	}

	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	f.Normalize()

	users, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return toResponses(users), total, nil
}

// ListByCompany retrieves every user attached to the given company. This is
// the by-foreign-key lookup the company service and the gateway consume.
func (s *UserService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]UserResponse, error) {
	users, err := s.userRepo.FindByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

// Update replaces a user's fields and notifies the company service
func (s *UserService) Update(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := u.Update(req.FirstName, req.LastName, req.Phone); err != nil {
		return nil, err
	}
	if req.CompanyID != nil {
		// Keep the current shadow name as the fallback when the pointer does
		// not move, so a failed lookup cannot blank out a name we already had.
		fallback := ""
		if u.CompanyID != nil && *u.CompanyID == *req.CompanyID {
			fallback = u.CompanyName
		}
		u.AssignCompany(*req.CompanyID, s.resolveCompanyName(ctx, *req.CompanyID, fallback))
	} else {
		u.ClearCompany()
	}

	recorded := u.GetDomainEvents()
	u.ClearDomainEvents()
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.notify(ctx, u, recorded)

	response := ToUserResponse(u)
	return &response, nil
}

// Delete removes a user and notifies the company service so member sets get
// pruned.
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	u.MarkDeleted()
	recorded := u.GetDomainEvents()
	u.ClearDomainEvents()
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.notify(ctx, u, recorded)
	return nil
}

// resolveCompanyName asks the company service for the display name behind a
// company ID. The lookup degrades gracefully: without a directory, or when
// the call fails, the fallback is used and the failure is logged.
func (s *UserService) resolveCompanyName(ctx context.Context, companyID uuid.UUID, fallback string) string {
	if s.companies == nil {
		return fallback
	}
	record, err := s.companies.GetCompany(ctx, companyID)
	if err != nil {
		s.logger.Warn("failed to resolve company name, keeping fallback",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return fallback
	}
	return record.Name
}

// notify converts the events drained from the aggregate into change events
// and publishes them after the local commit. The wire payload is built from
// the committed state; only the kind comes from the recorded event. Publish
// failures are logged and swallowed: the commit stands, remote state goes
// stale until the next write heals it.
func (s *UserService) notify(ctx context.Context, u *user.User, recorded []shared.DomainEvent) {
	for _, domainEvent := range recorded {
		var kind propagation.Kind
		switch domainEvent.EventType() {
		case user.EventTypeUserCreated:
			kind = propagation.KindCreated
		case user.EventTypeUserUpdated:
			kind = propagation.KindUpdated
		case user.EventTypeUserDeleted:
			kind = propagation.KindDeleted
		default:
			continue
		}

		event := propagation.ChangeEvent{
			SubjectID:  u.ID,
			CrossRefID: u.CompanyID,
			Kind:       kind,
		}
		if kind != propagation.KindDeleted {
			event.FirstName = u.FirstName
			event.LastName = u.LastName
			event.Phone = u.Phone
		}
		if err := s.publisher.Publish(ctx, propagation.ChannelUserEvents, event); err != nil {
			s.logger.Warn("failed to publish user change event",
				zap.String("user_id", u.ID.String()),
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
	}
}

func toResponses(users []user.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}
