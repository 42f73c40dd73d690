package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	companyapp "github.com/orgsync/backend/internal/application/company"
	"github.com/orgsync/backend/internal/interfaces/http/dto"
)

// CompanyHandler handles company-related API endpoints
type CompanyHandler struct {
	BaseHandler
	companyService *companyapp.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *companyapp.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// RegisterRoutes registers the company routes
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	companies := rg.Group("/companies")
	{
		companies.POST("", h.Create)
		companies.GET("", h.List)
		companies.GET("/:id", h.GetByID)
		companies.GET("/:id/members", h.Members)
		companies.PUT("/:id", h.Update)
		companies.DELETE("/:id", h.Delete)
	}
}

// Create handles POST /companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req companyapp.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /companies
func (h *CompanyHandler) List(c *gin.Context) {
	var filter companyapp.CompanyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	companies, total, err := h.companyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, companies, total, page, pageSize)
}

// GetByID handles GET /companies/:id
func (h *CompanyHandler) GetByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.companyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Members handles GET /companies/:id/members
func (h *CompanyHandler) Members(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.companyService.Members(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req companyapp.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.companyService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.companyService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *CompanyHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid company ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return uuid.Nil, false
	}
	return id, true
}
