package handler

import (
	"github.com/gin-gonic/gin"

	gatewayapp "github.com/orgsync/backend/internal/application/gateway"
)

// AggregationHandler handles the gateway's cross-service read endpoints
type AggregationHandler struct {
	BaseHandler
	aggregationService *gatewayapp.AggregationService
}

// NewAggregationHandler creates a new AggregationHandler
func NewAggregationHandler(aggregationService *gatewayapp.AggregationService) *AggregationHandler {
	return &AggregationHandler{aggregationService: aggregationService}
}

// RegisterRoutes registers the aggregation routes
func (h *AggregationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users-with-companies", h.ListUsersWithCompanies)
}

// ListUsersWithCompanies handles GET /users-with-companies
func (h *AggregationHandler) ListUsersWithCompanies(c *gin.Context) {
	users, err := h.aggregationService.ListUsersWithCompanies(c.Request.Context())
	if err != nil {
		h.BadGateway(c, "User service unavailable")
		return
	}
	h.Success(c, users)
}
