package jobs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/shared/server/middleware"
	"nextstep-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the jobs service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/employment-types", h.employmentTypes)
	rg.GET("/jobs/featured", h.featured)
	rg.POST("/jobs/filter", h.filter)
	rg.GET("/jobs/:id", h.get)
	rg.POST("/jobs", middleware.RequireUser(), h.create)
	rg.PUT("/jobs/:id", middleware.RequireUser(), h.update)
	rg.DELETE("/jobs/:id", middleware.RequireUser(), h.delete)
	rg.PUT("/jobs/:id/favorite", middleware.RequireUser(), h.toggleFavorite)
}

func viewerFromContext(c *gin.Context) Viewer {
	return Viewer{
		ID:       middleware.UserIDFromContext(c),
		Username: middleware.UsernameFromContext(c),
		Role:     middleware.UserRoleFromContext(c),
	}
}

func (h *Handler) employmentTypes(c *gin.Context) {
	types, err := h.Svc.EmploymentTypes(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list employment types", nil)
		return
	}
	if types == nil {
		types = []string{}
	}
	respond.JSON(c, http.StatusOK, types)
}

func (h *Handler) featured(c *gin.Context) {
	size := intQuery(c, "size", 6)
	employmentType := strings.TrimSpace(c.Query("filter"))

	list, err := h.Svc.Featured(c.Request.Context(), viewerFromContext(c), size, employmentType)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list featured jobs", nil)
		return
	}
	respond.JSON(c, http.StatusOK, list)
}

func (h *Handler) filter(c *gin.Context) {
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)

	var f SearchFilter
	if err := c.ShouldBindJSON(&f); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid filter body", nil)
		return
	}

	list, total, err := h.Svc.Search(c.Request.Context(), viewerFromContext(c), f, page, size)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to search jobs", nil)
		return
	}
	if list == nil {
		list = []Response{}
	}
	respond.JSON(c, http.StatusOK, respond.NewPage(list, page, size, total))
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.GetByID(c.Request.Context(), viewerFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "job id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) create(c *gin.Context) {
	var job JobPosting
	if err := c.ShouldBindJSON(&job); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid job body", nil)
		return
	}

	created, err := h.Svc.Create(c.Request.Context(), viewerFromContext(c), job)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "only employers can publish jobs", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) update(c *gin.Context) {
	var job JobPosting
	if err := c.ShouldBindJSON(&job); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid job body", nil)
		return
	}
	job.ID = c.Param("id")

	updated, err := h.Svc.Update(c.Request.Context(), viewerFromContext(c), job)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "not the posting owner", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, updated)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), viewerFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "not the posting owner", nil)
		case errors.Is(err, ErrAlreadyDeleted):
			respond.Error(c, http.StatusConflict, "already_deleted", "job is already deleted", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete job", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	favorite, err := h.Svc.ToggleFavorite(c.Request.Context(), viewerFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Login required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to toggle favorite", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"isFavorite": favorite})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
