package gateway

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// UserDirectory lists users from the user service
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]UserRecord, error)
}

// CompanyDirectory lists companies from the company service
type CompanyDirectory interface {
	ListCompanies(ctx context.Context) ([]CompanyRecord, error)
}

// AggregationService joins the two services' read models at request time.
// It holds no state of its own: every call fans out to both services in
// parallel and merges the answers.
type AggregationService struct {
	users     UserDirectory
	companies CompanyDirectory
	logger    *zap.Logger
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(users UserDirectory, companies CompanyDirectory, logger *zap.Logger) *AggregationService {
	return &AggregationService{
		users:     users,
		companies: companies,
		logger:    logger,
	}
}

// ListUsersWithCompanies returns every user joined with its company.
//
// The user side is required: if it fails, the call fails. The company side
// degrades: if it fails, users are returned with a null company rather than
// failing the whole read. Cross-service data is eventually consistent, so a
// user may reference a company the company service does not know yet; the
// join then yields a null company for that user.
func (s *AggregationService) ListUsersWithCompanies(ctx context.Context) ([]AggregatedUser, error) {
	var (
		wg           sync.WaitGroup
		users        []UserRecord
		companies    []CompanyRecord
		usersErr     error
		companiesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		users, usersErr = s.users.ListUsers(ctx)
	}()
	go func() {
		defer wg.Done()
		companies, companiesErr = s.companies.ListCompanies(ctx)
	}()
	wg.Wait()

	if usersErr != nil {
		return nil, usersErr
	}
	if companiesErr != nil {
		s.logger.Warn("company service unavailable, degrading join",
			zap.Error(companiesErr))
		companies = nil
	}

	byID := make(map[string]CompanyRecord, len(companies))
	for _, c := range companies {
		byID[c.ID.String()] = c
	}

	aggregated := make([]AggregatedUser, 0, len(users))
	for _, u := range users {
		entry := AggregatedUser{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
		}
		if u.CompanyID != nil {
			if c, ok := byID[u.CompanyID.String()]; ok {
				entry.Company = &CompanySummary{
					ID:     c.ID,
					Name:   c.Name,
					Budget: c.Budget,
				}
			}
		}
		aggregated = append(aggregated, entry)
	}
	return aggregated, nil
}
