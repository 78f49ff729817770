package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/groupbuy/backend/internal/application/catalog"
)

// CatalogHandler serves categories and pickup locations
type CatalogHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
	pickupService   *catalogapp.PickupLocationService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(categoryService *catalogapp.CategoryService, pickupService *catalogapp.PickupLocationService) *CatalogHandler {
	return &CatalogHandler{
		categoryService: categoryService,
		pickupService:   pickupService,
	}
}

// ListCategories godoc
// @ID           listCategories
// @Summary      List categories
// @Description  All listing categories in display order
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.CategoryResponse]
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateCategory godoc
// @ID           createCategory
// @Summary      Create category
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateCategoryRequest true "Category"
// @Success      201 {object} APIResponse[catalogapp.CategoryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

type pickupLocationQuery struct {
	All bool `form:"all"`
}

// ListPickupLocations godoc
// @ID           listPickupLocations
// @Summary      List pickup locations
// @Description  Active pickup locations; all=true includes inactive ones
// @Tags         catalog
// @Produce      json
// @Param        all query bool false "Include inactive locations"
// @Success      200 {object} APIResponse[[]catalogapp.PickupLocationResponse]
// @Router       /pickup-locations [get]
func (h *CatalogHandler) ListPickupLocations(c *gin.Context) {
	var q pickupLocationQuery
	if !h.BindQuery(c, &q) {
		return
	}
	locations, err := h.pickupService.ListPickupLocations(c.Request.Context(), !q.All)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, locations)
}

// CreatePickupLocation godoc
// @ID           createPickupLocation
// @Summary      Create pickup location
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreatePickupLocationRequest true "Pickup location"
// @Success      201 {object} APIResponse[catalogapp.PickupLocationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /pickup-locations [post]
func (h *CatalogHandler) CreatePickupLocation(c *gin.Context) {
	var req catalogapp.CreatePickupLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	location, err := h.pickupService.CreatePickupLocation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, location)
}

// SetPickupLocationActive godoc
// @ID           setPickupLocationActive
// @Summary      Activate or deactivate a pickup location
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Pickup location ID" format(uuid)
// @Param        request body catalogapp.SetPickupLocationActiveRequest true "Active flag"
// @Success      200 {object} APIResponse[catalogapp.PickupLocationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /pickup-locations/{id} [patch]
func (h *CatalogHandler) SetPickupLocationActive(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.SetPickupLocationActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	location, err := h.pickupService.SetPickupLocationActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, location)
}
