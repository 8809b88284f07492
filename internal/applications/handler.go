package applications

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/jobs"
	"nextstep-backend/internal/shared/server/middleware"
	"nextstep-backend/internal/shared/server/respond"
)

// MaxResumeSize caps uploaded resume files at 5 MiB.
const MaxResumeSize = 5 << 20

// Handler exposes the application intake and workflow endpoints.
type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/job-applications", middleware.RequireUser())
	group.POST("/apply", h.apply)
	group.GET("/:id", h.get)
	group.PUT("/:id/status", h.changeStatus)
	group.GET("/:id/can-withdraw", h.canWithdraw)
	group.DELETE("/:id", h.withdraw)
	group.GET("/job/:jobId", h.listByJob)
	group.GET("/job/:jobId/info", h.info)
	group.GET("/job/:jobId/has-applied", h.hasApplied)
	group.GET("/job/:jobId/mine", h.mine)
}

func (h *Handler) apply(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "resume file is required", nil)
		return
	}
	if fileHeader.Size > MaxResumeSize {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "resume exceeds the size limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "resume file could not be read", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, MaxResumeSize+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "resume file could not be read", nil)
		return
	}
	if len(data) > MaxResumeSize {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "resume exceeds the size limit", nil)
		return
	}

	fullName := c.PostForm("fullName")
	if fullName == "" {
		fullName = middleware.UsernameFromContext(c)
	}
	email := c.PostForm("email")
	if email == "" {
		email = middleware.UserEmailFromContext(c)
	}

	in := SubmitInput{
		UserID:      middleware.UserIDFromContext(c),
		FullName:    fullName,
		Email:       email,
		CoverLetter: c.PostForm("coverLetter"),
		JobID:       c.PostForm("jobId"),
		FileName:    fileHeader.Filename,
		File:        data,
	}
	c.Set("jobId", in.JobID)

	app, err := h.Service.Submit(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("applicationId", app.ID)
	respond.JSON(c, http.StatusCreated, app)
}

func (h *Handler) get(c *gin.Context) {
	app, err := h.Service.GetByID(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) changeStatus(c *gin.Context) {
	status := c.Query("status")
	id := c.Param("id")
	c.Set("applicationId", id)

	app, err := h.Service.ChangeStatus(c.Request.Context(), middleware.UserIDFromContext(c), id, status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("statusTransition", app.Status)
	respond.OK(c, app)
}

func (h *Handler) canWithdraw(c *gin.Context) {
	ok, err := h.Service.CanWithdraw(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"canWithdraw": ok})
}

func (h *Handler) withdraw(c *gin.Context) {
	err := h.Service.Remove(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listByJob(c *gin.Context) {
	jobID := c.Param("jobId")
	c.Set("jobId", jobID)

	filter := ListFilter{
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
		SortDir: c.Query("sort"),
	}
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)

	list, total, err := h.Service.ListByJob(c.Request.Context(), middleware.UserIDFromContext(c), jobID, filter, page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if list == nil {
		list = []Application{}
	}
	respond.OK(c, respond.NewPage(list, page, size, total))
}

func (h *Handler) info(c *gin.Context) {
	info, err := h.Service.Info(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, info)
}

func (h *Handler) hasApplied(c *gin.Context) {
	applied, err := h.Service.HasApplied(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"hasApplied": applied})
}

func (h *Handler) mine(c *gin.Context) {
	app, err := h.Service.LatestForJob(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("jobId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case IsNotFound(err):
		respond.Error(c, http.StatusNotFound, "not_found", "application or job not found", nil)
	case errors.Is(err, ErrEmptyResume):
		respond.Error(c, http.StatusBadRequest, "empty_resume", "resume file is empty", nil)
	case errors.Is(err, ErrInvalidStatus):
		respond.Error(c, http.StatusBadRequest, "invalid_status", "status must be PENDING, ACCEPTED or REJECTED", nil)
	case errors.Is(err, ErrStatusFinal):
		respond.Error(c, http.StatusConflict, "status_final", "application status can no longer change", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, jobs.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, ErrJobClosed):
		respond.Error(c, http.StatusConflict, "job_closed", "job posting is closed", nil)
	case errors.Is(err, ErrForbidden), errors.Is(err, jobs.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed", nil)
	case errors.Is(err, ErrStorageFailed), errors.Is(err, ErrParseFailed), errors.Is(err, ErrScoreFailed):
		respond.Error(c, http.StatusBadGateway, "upstream_failed", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
