package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/application/chat"
	"github.com/groupbuy/backend/internal/infrastructure/logger"
	"github.com/groupbuy/backend/internal/infrastructure/realtime"
	"go.uber.org/zap"
)

// WebsocketServer upgrades a request and streams the given topics until the
// client goes away
type WebsocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, topics []string, onFrame realtime.FrameHandler) error
}

// ChatHandler serves group buy conversations over REST and websocket
type ChatHandler struct {
	BaseHandler
	chatService *chat.ChatService
	ws          WebsocketServer
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *chat.ChatService, ws WebsocketServer) *ChatHandler {
	return &ChatHandler{chatService: chatService, ws: ws}
}

type messagesQuery struct {
	Since *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit int        `form:"limit" binding:"omitempty,min=1,max=200"`
}

// SendMessageRequest is a chat message typed by a participant
type SendMessageRequest struct {
	Content     string `json:"content" binding:"required,max=2000" example:"Pickup at 6pm?"`
	MessageType string `json:"message_type" binding:"omitempty,oneof=text image" example:"text"`
}

// ListMessages godoc
// @ID           listGroupBuyMessages
// @Summary      Chat history
// @Description  Messages oldest first; since returns only newer ones
// @Tags         chat
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Param        since query string false "RFC3339 timestamp"
// @Param        limit query int false "Max messages" default(50) maximum(200)
// @Success      200 {object} APIResponse[[]chat.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /group-buys/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var q messagesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	messages, err := h.chatService.GetGroupBuyMessages(c.Request.Context(), id, q.Since, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, messages)
}

// SendMessage godoc
// @ID           sendGroupBuyMessage
// @Summary      Send chat message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Param        request body SendMessageRequest true "Message"
// @Success      201 {object} APIResponse[chat.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /group-buys/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req SendMessageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	msg, err := h.chatService.SendMessage(c.Request.Context(), userID, id, chat.SendMessageInput{
		Content:     req.Content,
		MessageType: req.MessageType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// Stream godoc
// @ID           streamGroupBuyChat
// @Summary      Chat websocket
// @Description  Upgrades to a websocket receiving "message" frames. Frames sent by the client are posted as messages.
// @Tags         chat
// @Param        id path string true "Group buy ID" format(uuid)
// @Param        token query string false "Access token when headers cannot be set"
// @Success      101
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /group-buys/{id}/chat/ws [get]
func (h *ChatHandler) Stream(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	// the conversation must exist before the upgrade
	if _, err := h.chatService.GetGroupBuyMessages(c.Request.Context(), id, nil, 1); err != nil {
		h.HandleError(c, err)
		return
	}

	onFrame := func(ctx context.Context, data []byte) error {
		var input chat.SendMessageInput
		if err := json.Unmarshal(data, &input); err != nil {
			return err
		}
		_, err := h.chatService.SendMessage(ctx, userID, id, input)
		return err
	}
	if err := h.ws.Serve(c.Writer, c.Request, []string{realtime.ChatTopic(id)}, onFrame); err != nil {
		logger.GetGinLogger(c).Debug("Chat websocket not established", zap.Error(err), zap.String("group_buy_id", id.String()))
	}
}

var _ WebsocketServer = (*realtime.Hub)(nil)
