package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/application/event"
	"github.com/groupbuy/backend/internal/interfaces/http/dto"
)

// OutboxHandler exposes admin operations over undeliverable events
type OutboxHandler struct {
	BaseHandler
	outboxService *event.OutboxService
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outboxService *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{outboxService: outboxService}
}

// GetDeadLetterEntries godoc
// @ID           getOutboxDeadLetterEntries
// @Summary      List dead letter entries
// @Description  Events whose delivery exhausted every retry
// @Tags         admin
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]event.OutboxEntryResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/outbox/dead [get]
func (h *OutboxHandler) GetDeadLetterEntries(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.outboxService.GetDeadLetterEntries(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetEntry godoc
// @ID           getOutboxEntry
// @Summary      Get outbox entry
// @Tags         admin
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[event.OutboxEntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/outbox/{id} [get]
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	entry, err := h.outboxService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryDeadEntry godoc
// @ID           retryOutboxDeadEntry
// @Summary      Retry dead entry
// @Description  Requeue one dead entry with a fresh retry budget
// @Tags         admin
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[event.OutboxEntryResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/outbox/{id}/retry [post]
func (h *OutboxHandler) RetryDeadEntry(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	entry, err := h.outboxService.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAllDeadEntries godoc
// @ID           retryAllOutboxDeadEntries
// @Summary      Retry all dead entries
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[event.RetryAllResult]
// @Security     BearerAuth
// @Router       /admin/outbox/dead/retry [post]
func (h *OutboxHandler) RetryAllDeadEntries(c *gin.Context) {
	count, err := h.outboxService.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, event.RetryAllResult{Count: count})
}

// GetStats godoc
// @ID           getOutboxStats
// @Summary      Outbox statistics
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[event.OutboxStats]
// @Security     BearerAuth
// @Router       /admin/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.outboxService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
