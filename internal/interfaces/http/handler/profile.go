package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/application/identity"
)

// ProfileHandler serves public profiles and profile edits
type ProfileHandler struct {
	BaseHandler
	profileService *identity.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *identity.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Get godoc
// @Summary      Public profile
// @Tags         profiles
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.PublicProfile]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	profile, err := h.profileService.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateMe godoc
// @Summary      Update own profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Fields to change"
// @Success      200 {object} APIResponse[identity.UserProfile]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profiles/me [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}
	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, identity.UpdateProfileInput{
		Username:  req.Username,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Phone:     req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
