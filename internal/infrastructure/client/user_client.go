package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	companyapp "github.com/orgsync/backend/internal/application/company"
	"github.com/orgsync/backend/internal/application/gateway"
)

// UserClient reads the user service over HTTP
type UserClient struct {
	httpClient
}

// NewUserClient creates a new UserClient
func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{httpClient: newHTTPClient(baseURL, timeout)}
}

// ListUsers fetches all users
func (c *UserClient) ListUsers(ctx context.Context) ([]gateway.UserRecord, error) {
	var users []gateway.UserRecord
	if err := c.getJSON(ctx, "/api/v1/users?pageSize=100", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByCompany fetches the users attached to a company
func (c *UserClient) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]companyapp.MemberRecord, error) {
	var members []companyapp.MemberRecord
	if err := c.getJSON(ctx, "/api/v1/users/by-company/"+companyID.String(), &members); err != nil {
		return nil, err
	}
	return members, nil
}

var (
	_ gateway.UserDirectory      = (*UserClient)(nil)
	_ companyapp.MemberDirectory = (*UserClient)(nil)
)
