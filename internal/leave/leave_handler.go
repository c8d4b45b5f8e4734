package leave

import (
	"fmt"
	"net/http"
	"time"

	"go-leaveflow/internal/middleware"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/contextutil"
	"go-leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

// principalFrom builds the caller from the keys set by AuthMiddleware.
func principalFrom(c *gin.Context) Principal {
	return Principal{
		UserID:       c.GetString(middleware.ContextUserID),
		Roles:        middleware.CurrentRoles(c),
		WorkSiteID:   c.GetString(middleware.ContextWorkSiteID),
		DepartmentID: c.GetString(middleware.ContextDepartmentID),
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	// logger dari ContextLogger sudah membawa request_id dan user_id
	contextutil.GetLogger(c.Request.Context(), h.logger).Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	p := principalFrom(c)
	h.logger.Debug("http create leave", zap.String("actor_id", p.UserID))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	p := principalFrom(c)
	page, pageSize := response.ParsePagination(c)
	q := ListLeavesQuery{Page: page, PageSize: pageSize, Stage: c.Query("stage")}

	resp, total, err := h.service.GetAll(c.Request.Context(), p, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Summary(c *gin.Context) {
	resp, err := h.service.Summary(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Export(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leaves_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) History(c *gin.Context) {
	resp, err := h.service.History(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), principalFrom(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	// body boleh kosong, komentar opsional
	var req ApproveLeaveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, apperror.MapValidationError(err))
			return
		}
	}

	resp, err := h.service.Approve(c.Request.Context(), principalFrom(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req RejectLeaveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, apperror.MapValidationError(err))
			return
		}
	}

	resp, err := h.service.Reject(c.Request.Context(), principalFrom(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFrom(c), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
