package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/application/groupbuy"
	"github.com/groupbuy/backend/internal/interfaces/http/dto"
)

// GroupBuyHandler serves listings, participation and the caller's own orders
type GroupBuyHandler struct {
	BaseHandler
	service *groupbuy.GroupBuyService
}

// NewGroupBuyHandler creates a new GroupBuyHandler
func NewGroupBuyHandler(service *groupbuy.GroupBuyService) *GroupBuyHandler {
	return &GroupBuyHandler{service: service}
}

// List godoc
// @ID           listGroupBuys
// @Summary      List open group buys
// @Description  Open, unexpired listings newest first, optionally searched or filtered by category
// @Tags         group-buys
// @Produce      json
// @Param        q query string false "Search title and description"
// @Param        category query string false "Category code"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]groupbuy.GroupBuyResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /group-buys [get]
func (h *GroupBuyHandler) List(c *gin.Context) {
	var q ListGroupBuysQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.List(c.Request.Context(), groupbuy.ListInput{
		Query:    q.Q,
		Category: q.Category,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get godoc
// @ID           getGroupBuy
// @Summary      Get group buy
// @Tags         group-buys
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Success      200 {object} APIResponse[groupbuy.GroupBuyResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /group-buys/{id} [get]
func (h *GroupBuyHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	g, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, g)
}

// Create godoc
// @ID           createGroupBuy
// @Summary      Create group buy
// @Description  Open a new listing organized by the caller
// @Tags         group-buys
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupBuyRequest true "Listing"
// @Success      201 {object} APIResponse[groupbuy.GroupBuyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /group-buys [post]
func (h *GroupBuyHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req CreateGroupBuyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	g, err := h.service.Create(c.Request.Context(), userID, groupbuy.CreateGroupBuyInput{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		ImageURL:         req.ImageURL,
		Price:            req.Price,
		OriginalPrice:    req.OriginalPrice,
		MinParticipants:  req.MinParticipants,
		MaxParticipants:  req.MaxParticipants,
		Location:         req.Location,
		PickupLocationID: req.PickupLocationID,
		ExpiresAt:        req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, g)
}

// Update godoc
// @ID           updateGroupBuy
// @Summary      Update group buy
// @Description  Organizer-only edit of an open listing
// @Tags         group-buys
// @Accept       json
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Param        request body UpdateGroupBuyRequest true "Fields to change"
// @Success      200 {object} APIResponse[groupbuy.GroupBuyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /group-buys/{id} [put]
func (h *GroupBuyHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateGroupBuyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	g, err := h.service.Update(c.Request.Context(), userID, id, groupbuy.UpdateGroupBuyInput{
		Title:            req.Title,
		Description:      req.Description,
		ImageURL:         req.ImageURL,
		Price:            req.Price,
		OriginalPrice:    req.OriginalPrice,
		MinParticipants:  req.MinParticipants,
		MaxParticipants:  req.MaxParticipants,
		Location:         req.Location,
		PickupLocationID: req.PickupLocationID,
		ExpiresAt:        req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, g)
}

// Cancel godoc
// @ID           cancelGroupBuy
// @Summary      Cancel group buy
// @Description  Organizer-only cancellation; every active participant is refunded
// @Tags         group-buys
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Success      200 {object} APIResponse[groupbuy.GroupBuyResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /group-buys/{id} [delete]
func (h *GroupBuyHandler) Cancel(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	g, err := h.service.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, g)
}

// Join godoc
// @ID           joinGroupBuy
// @Summary      Join group buy
// @Description  Reserve units and pay for them from the wallet in one step
// @Tags         group-buys
// @Accept       json
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Param        request body JoinGroupBuyRequest false "Quantity"
// @Success      201 {object} APIResponse[groupbuy.JoinResult]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /group-buys/{id}/join [post]
func (h *GroupBuyHandler) Join(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	req := JoinGroupBuyRequest{Quantity: 1}
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	result, err := h.service.Join(c.Request.Context(), userID, id, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Leave godoc
// @ID           leaveGroupBuy
// @Summary      Leave group buy
// @Description  Cancel the caller's participation and refund it
// @Tags         group-buys
// @Param        id path string true "Group buy ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /group-buys/{id}/join [delete]
func (h *GroupBuyHandler) Leave(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Leave(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Joined godoc
// @ID           hasJoinedGroupBuy
// @Summary      Whether the caller has joined
// @Tags         group-buys
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Success      200 {object} APIResponse[JoinedData]
// @Security     BearerAuth
// @Router       /group-buys/{id}/joined [get]
func (h *GroupBuyHandler) Joined(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	joined, err := h.service.HasUserJoined(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, JoinedData{Joined: joined})
}

// Participants godoc
// @ID           listGroupBuyParticipants
// @Summary      List participants
// @Tags         group-buys
// @Produce      json
// @Param        id path string true "Group buy ID" format(uuid)
// @Success      200 {object} APIResponse[[]groupbuy.ParticipantResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /group-buys/{id}/participants [get]
func (h *GroupBuyHandler) Participants(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	participants, err := h.service.GetParticipants(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, participants)
}

// MyGroupBuys godoc
// @ID           listMyGroupBuys
// @Summary      Listings I organize
// @Tags         me
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]groupbuy.GroupBuyResponse]
// @Security     BearerAuth
// @Router       /me/group-buys [get]
func (h *GroupBuyHandler) MyGroupBuys(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.GetUserGroupBuys(c.Request.Context(), userID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// MyOrders godoc
// @ID           listMyOrders
// @Summary      Listings I joined
// @Tags         me
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]groupbuy.OrderResponse]
// @Security     BearerAuth
// @Router       /me/orders [get]
func (h *GroupBuyHandler) MyOrders(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.GetUserOrders(c.Request.Context(), userID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// RequestImageUpload godoc
// @ID           requestImageUpload
// @Summary      Presign an image upload
// @Description  Returns a short-lived URL to PUT the image to and the public URL to store on the listing
// @Tags         uploads
// @Accept       json
// @Produce      json
// @Param        request body ImageUploadRequest true "Image"
// @Success      200 {object} APIResponse[groupbuy.ImageUploadResult]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /uploads/images [post]
func (h *GroupBuyHandler) RequestImageUpload(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req ImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.RequestImageUpload(c.Request.Context(), userID, groupbuy.ImageUploadInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
