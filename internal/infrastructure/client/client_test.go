package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserClientListUsers(t *testing.T) {
	t.Run("decodes the envelope data", func(t *testing.T) {
		userID := uuid.New()
		companyID := uuid.New()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/users", r.URL.Path)
			assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"success": true,
				"data": [
					{"id":"` + userID.String() + `","firstName":"Ann","lastName":"Smith","phone":"+10000000000","companyId":"` + companyID.String() + `"}
				]
			}`))
		}))
		defer srv.Close()

		c := NewUserClient(srv.URL, time.Second)
		users, err := c.ListUsers(context.Background())

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, userID, users[0].ID)
		assert.Equal(t, "Ann", users[0].FirstName)
		require.NotNil(t, users[0].CompanyID)
		assert.Equal(t, companyID, *users[0].CompanyID)
	})

	t.Run("error envelope surfaces code and message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"boom"}}`))
		}))
		defer srv.Close()

		c := NewUserClient(srv.URL, time.Second)
		_, err := c.ListUsers(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("success=false without 2xx body detail still errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success":false}`))
		}))
		defer srv.Close()

		c := NewUserClient(srv.URL, time.Second)
		_, err := c.ListUsers(context.Background())
		assert.Error(t, err)
	})

	t.Run("unreachable server errors", func(t *testing.T) {
		c := NewUserClient("http://127.0.0.1:1", 100*time.Millisecond)
		_, err := c.ListUsers(context.Background())
		assert.Error(t, err)
	})
}

func TestUserClientListByCompany(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/by-company/"+companyID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [
				{"id":"` + userID.String() + `","firstName":"Ann","lastName":"Smith","phone":"+10000000000"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, time.Second)
	members, err := c.ListByCompany(context.Background(), companyID)

	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, userID, members[0].ID)
	assert.Equal(t, "Ann", members[0].FirstName)
}

func TestCompanyClientListCompanies(t *testing.T) {
	companyID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/companies", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [
				{"id":"` + companyID.String() + `","name":"Acme","budget":"1000"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewCompanyClient(srv.URL, time.Second)
	companies, err := c.ListCompanies(context.Background())

	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, companyID, companies[0].ID)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, "1000", companies[0].Budget.String())
}

func TestCompanyClientGetCompany(t *testing.T) {
	t.Run("fetches a single company", func(t *testing.T) {
		companyID := uuid.New()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/companies/"+companyID.String(), r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"success": true,
				"data": {"id":"` + companyID.String() + `","name":"Acme","budget":"1000"}
			}`))
		}))
		defer srv.Close()

		c := NewCompanyClient(srv.URL, time.Second)
		company, err := c.GetCompany(context.Background(), companyID)

		require.NoError(t, err)
		assert.Equal(t, companyID, company.ID)
		assert.Equal(t, "Acme", company.Name)
	})

	t.Run("not found surfaces as an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Company not found"}}`))
		}))
		defer srv.Close()

		c := NewCompanyClient(srv.URL, time.Second)
		_, err := c.GetCompany(context.Background(), uuid.New())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOT_FOUND")
	})
}
