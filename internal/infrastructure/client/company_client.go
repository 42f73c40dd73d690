package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orgsync/backend/internal/application/gateway"
	userapp "github.com/orgsync/backend/internal/application/user"
)

// CompanyClient reads the company service over HTTP
type CompanyClient struct {
	httpClient
}

// NewCompanyClient creates a new CompanyClient
func NewCompanyClient(baseURL string, timeout time.Duration) *CompanyClient {
	return &CompanyClient{httpClient: newHTTPClient(baseURL, timeout)}
}

// ListCompanies fetches all companies
func (c *CompanyClient) ListCompanies(ctx context.Context) ([]gateway.CompanyRecord, error) {
	var companies []gateway.CompanyRecord
	if err := c.getJSON(ctx, "/api/v1/companies?pageSize=100", &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// GetCompany fetches a single company by ID
func (c *CompanyClient) GetCompany(ctx context.Context, companyID uuid.UUID) (*userapp.CompanyRecord, error) {
	var company userapp.CompanyRecord
	if err := c.getJSON(ctx, "/api/v1/companies/"+companyID.String(), &company); err != nil {
		return nil, err
	}
	return &company, nil
}

var (
	_ gateway.CompanyDirectory = (*CompanyClient)(nil)
	_ userapp.CompanyDirectory = (*CompanyClient)(nil)
)
