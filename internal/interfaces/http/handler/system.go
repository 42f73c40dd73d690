package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping() error
}

// HealthCheckFunc adapts a plain function to HealthChecker
type HealthCheckFunc func() error

// Ping calls f
func (f HealthCheckFunc) Ping() error { return f() }

// SystemHandler serves liveness and readiness endpoints
type SystemHandler struct {
	BaseHandler
	serviceName string
	checkers    map[string]HealthChecker
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(serviceName string) *SystemHandler {
	return &SystemHandler{
		serviceName: serviceName,
		checkers:    make(map[string]HealthChecker),
	}
}

// WithChecker registers a named dependency check
func (h *SystemHandler) WithChecker(name string, checker HealthChecker) *SystemHandler {
	h.checkers[name] = checker
	return h
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.Ping(); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	c.JSON(status, gin.H{
		"service":      h.serviceName,
		"status":       http.StatusText(status),
		"dependencies": deps,
	})
}
