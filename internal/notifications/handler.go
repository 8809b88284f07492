package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/shared/server/middleware"
	"nextstep-backend/internal/shared/server/respond"
)

// Handler serves a user's notification feed.
type Handler struct {
	Repo Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/notifications", middleware.RequireUser())
	auth.GET("", h.list)
	auth.GET("/unread-count", h.unreadCount)
	auth.PUT("/:id/read", h.markRead)
	auth.PUT("/read-all", h.markAllRead)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	list, err := h.Repo.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notifications", nil)
		return
	}
	if list == nil {
		list = []Notification{}
	}
	respond.JSON(c, http.StatusOK, list)
}

func (h *Handler) unreadCount(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	count, err := h.Repo.CountUnread(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count notifications", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) markRead(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	err := h.Repo.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to mark notification", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) markAllRead(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Repo.MarkAllRead(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to mark notifications", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
