package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/application/notification"
	"github.com/groupbuy/backend/internal/infrastructure/logger"
	"github.com/groupbuy/backend/internal/infrastructure/realtime"
	"github.com/groupbuy/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// NotificationHandler serves the caller's inbox
type NotificationHandler struct {
	BaseHandler
	service *notification.NotificationService
	ws      WebsocketServer
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notification.NotificationService, ws WebsocketServer) *NotificationHandler {
	return &NotificationHandler{service: service, ws: ws}
}

type notificationsQuery struct {
	dto.PageQuery
	UnreadOnly bool `form:"unread_only"`
}

// List godoc
// @ID           listNotifications
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Param        unread_only query bool false "Only unread"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]notification.NotificationResponse]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q notificationsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.List(c.Request.Context(), userID, notification.ListInput{
		UnreadOnly: q.UnreadOnly,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// UnreadCount godoc
// @ID           countUnreadNotifications
// @Summary      Unread count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[notification.UnreadCountResponse]
// @Security     BearerAuth
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} APIResponse[notification.NotificationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// MarkAllRead godoc
// @ID           markAllNotificationsRead
// @Summary      Mark all as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[notification.MarkAllReadResponse]
// @Security     BearerAuth
// @Router       /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	result, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @ID           deleteNotification
// @Summary      Delete notification
// @Tags         notifications
// @Param        id path string true "Notification ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stream godoc
// @ID           streamNotifications
// @Summary      Notification websocket
// @Description  Upgrades to a websocket receiving "notification" frames for the caller
// @Tags         notifications
// @Param        token query string false "Access token when headers cannot be set"
// @Success      101
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/ws [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.ws.Serve(c.Writer, c.Request, []string{realtime.UserTopic(userID)}, nil); err != nil {
		logger.GetGinLogger(c).Debug("Notification websocket not established", zap.Error(err))
	}
}
