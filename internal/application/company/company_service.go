package company

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/domain/company"
	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/domain/shared"
)

var (
	inlineNameRegex  = regexp.MustCompile(`^[A-ZА-Я][a-zа-я]*$`)
	inlinePhoneRegex = regexp.MustCompile(`^\+\d{10,15}$`)
)

// MemberDirectory resolves a company's members to user details. The user
// service's read API sits behind it.
type MemberDirectory interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]MemberRecord, error)
}

// CompanyService handles company-related business operations and owns the
// outbound side of the company->user propagation direction.
//
// The company service never writes to the user store directly. Users created
// or touched through a company payload reach the user service as change
// events on the company-events channel.
type CompanyService struct {
	companyRepo company.Repository
	publisher   propagation.Publisher
	members     MemberDirectory
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo company.Repository, publisher propagation.Publisher, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// WithMemberDirectory attaches the user service lookup used by Members
func (s *CompanyService) WithMemberDirectory(members MemberDirectory) *CompanyService {
	s.members = members
	return s
}

// Members lists a company's members. The member IDs come from local state;
// the per-user details come from the user service and are dropped, not
// fatal, when that call fails.
func (s *CompanyService) Members(ctx context.Context, companyID uuid.UUID) (*CompanyMembersResponse, error) {
	c, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	response := &CompanyMembersResponse{
		CompanyID: c.ID,
		MemberIDs: append([]uuid.UUID(nil), c.MemberIDs...),
	}

	if s.members == nil {
		return response, nil
	}
	records, err := s.members.ListByCompany(ctx, companyID)
	if err != nil {
		s.logger.Warn("failed to resolve member details, answering with IDs only",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return response, nil
	}
	response.Members = records
	return response, nil
}

// Create creates a new company, attaches its inline users and notifies the
// user service about each of them.
func (s *CompanyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	c, err := company.NewCompany(req.Name, req.Budget)
	if err != nil {
		return nil, err
	}

	if err := s.attachInlineUsers(c, req.Users); err != nil {
		return nil, err
	}

	pending := s.drainChangeEvents(c)
	if err := s.companyRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.notifyAll(ctx, pending)

	response := ToCompanyResponse(c)
	return &response, nil
}

// GetByID retrieves a company by ID
func (s *CompanyService) GetByID(ctx context.Context, companyID uuid.UUID) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	response := ToCompanyResponse(c)
	return &response, nil
}

// List retrieves companies with pagination
func (s *CompanyService) List(ctx context.Context, filter CompanyListFilter) ([]CompanyResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	f.Normalize()

	companies, err := s.companyRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.companyRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = ToCompanyResponse(&companies[i])
	}
	return responses, total, nil
}

// Update replaces the company's fields, attaches any inline users, and
// republishes a membership event for every member so their shadow copy of
// the company name catches up.
func (s *CompanyService) Update(ctx context.Context, companyID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if err := c.Update(req.Name, req.Budget); err != nil {
		return nil, err
	}

	if err := s.attachInlineUsers(c, req.Users); err != nil {
		return nil, err
	}

	pending := s.drainChangeEvents(c)
	if err := s.companyRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.notifyAll(ctx, pending)

	response := ToCompanyResponse(c)
	return &response, nil
}

// Delete removes a company and publishes one DELETED event per member so the
// user service can detach them. Members are detached, never deleted: the
// company taking its users down with it would destroy data this service does
// not own.
func (s *CompanyService) Delete(ctx context.Context, companyID uuid.UUID) error {
	c, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return err
	}

	c.MarkDeleted()
	pending := s.drainChangeEvents(c)
	if err := s.companyRepo.Delete(ctx, companyID); err != nil {
		return err
	}

	s.notifyAll(ctx, pending)
	return nil
}

// attachInlineUsers folds the inline user entries of a payload into the
// member set. Entries carrying an ID reference existing users; entries
// carrying personal fields become brand new users whose identity the
// aggregate assigns.
func (s *CompanyService) attachInlineUsers(c *company.Company, users []InlineUserRequest) error {
	for _, entry := range users {
		if err := validateInlineUser(entry); err != nil {
			return err
		}
		if entry.ID != nil {
			c.AttachMember(*entry.ID)
			continue
		}
		c.AttachNewMember(entry.FirstName, entry.LastName, entry.Phone)
	}
	return nil
}

// drainChangeEvents converts the member events recorded on the aggregate
// into change events and clears them. Draining happens before Save so a
// stored aggregate never carries pending events back on the next load. An
// attachment beats a refresh for the same member, which keeps an inline
// entry from being published twice on update.
func (s *CompanyService) drainChangeEvents(c *company.Company) []propagation.ChangeEvent {
	recorded := c.GetDomainEvents()
	c.ClearDomainEvents()

	refID := c.ID
	attached := make(map[uuid.UUID]bool, len(recorded))
	pending := make([]propagation.ChangeEvent, 0, len(recorded))

	for _, domainEvent := range recorded {
		switch e := domainEvent.(type) {
		case *company.MemberAttachedEvent:
			event := propagation.ChangeEvent{
				SubjectID:    e.MemberID,
				CrossRefID:   &refID,
				CrossRefName: c.Name,
				Kind:         propagation.KindUpdated,
			}
			if e.Minted {
				event.Kind = propagation.KindCreated
				event.FirstName = e.FirstName
				event.LastName = e.LastName
				event.Phone = e.Phone
			}
			pending = append(pending, event)
			attached[e.MemberID] = true
		case *company.MemberDetachedEvent:
			pending = append(pending, propagation.ChangeEvent{
				SubjectID:  e.MemberID,
				CrossRefID: &refID,
				Kind:       propagation.KindDeleted,
			})
		}
	}
	for _, domainEvent := range recorded {
		e, ok := domainEvent.(*company.MemberRefreshedEvent)
		if !ok || attached[e.MemberID] {
			continue
		}
		pending = append(pending, propagation.ChangeEvent{
			SubjectID:    e.MemberID,
			CrossRefID:   &refID,
			CrossRefName: c.Name,
			Kind:         propagation.KindUpdated,
		})
	}
	return pending
}

// notifyAll publishes the pending events after the local commit, logging and
// swallowing transport failures.
func (s *CompanyService) notifyAll(ctx context.Context, events []propagation.ChangeEvent) {
	for _, event := range events {
		if err := s.publisher.Publish(ctx, propagation.ChannelCompanyEvents, event); err != nil {
			s.logger.Warn("failed to publish company change event",
				zap.String("user_id", event.SubjectID.String()),
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}
	}
}

// validateInlineUser enforces the inline entry shape: an ID-bearing entry
// must carry nothing else, a field-bearing entry must carry every field.
func validateInlineUser(entry InlineUserRequest) error {
	if entry.ID != nil {
		if entry.FirstName != "" || entry.LastName != "" || entry.Phone != "" {
			return shared.NewDomainError("INVALID_INPUT", "Inline user with an ID must not carry other fields")
		}
		return nil
	}
	if entry.FirstName == "" || entry.LastName == "" || entry.Phone == "" {
		return shared.NewDomainError("INVALID_INPUT", "Inline user without an ID must carry first name, last name and phone")
	}
	if !inlineNameRegex.MatchString(entry.FirstName) || !inlineNameRegex.MatchString(entry.LastName) {
		return shared.NewDomainError("INVALID_INPUT", "Inline user names must start with an uppercase letter and contain only letters")
	}
	if len(entry.FirstName) > 50 || len(entry.LastName) > 50 {
		return shared.NewDomainError("INVALID_INPUT", "Inline user names cannot exceed 50 characters")
	}
	if !inlinePhoneRegex.MatchString(entry.Phone) {
		return shared.NewDomainError("INVALID_INPUT", "Inline user phone must look like +10000000000 with 10-15 digits")
	}
	return nil
}
