package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	userapp "github.com/orgsync/backend/internal/application/user"
	"github.com/orgsync/backend/internal/interfaces/http/dto"
)

// UserHandler handles user-related API endpoints
type UserHandler struct {
	BaseHandler
	userService *userapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *userapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("", h.Create)
		users.GET("", h.List)
		users.GET("/by-company/:companyId", h.ListByCompany)
		users.GET("/:id", h.GetByID)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req userapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	var filter userapp.UserListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, users, total, page, pageSize)
}

// ListByCompany handles GET /users/by-company/:companyId
func (h *UserHandler) ListByCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	users, err := h.userService.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, users)
}

// GetByID handles GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req userapp.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *UserHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid user ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}
