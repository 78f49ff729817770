package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/application/identity"
	"github.com/groupbuy/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp godoc
// @Summary      Register an account
// @Description  Create an account with an empty wallet and sign it in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignUpRequest true "Account details"
// @Success      201 {object} APIResponse[identity.Session]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !h.BindJSON(c, &req) {
		return
	}
	session, err := h.authService.SignUp(c.Request.Context(), identity.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// SignIn godoc
// @Summary      Sign in
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} APIResponse[identity.Session]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !h.BindJSON(c, &req) {
		return
	}
	session, err := h.authService.SignIn(c.Request.Context(), identity.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Rotate a refresh token into a new token pair. The old refresh token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[identity.Session]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}
	session, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// SignOut godoc
// @Summary      Sign out
// @Description  Revoke the current access token and, when given, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignOutRequest false "Refresh token to revoke"
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req SignOutRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}

	claims := middleware.GetJWTClaims(c)
	err := h.authService.SignOut(c.Request.Context(), identity.SignOutInput{
		UserID:       userID,
		TokenJTI:     claims.ID,
		TokenTTL:     claims.RemainingTTL(time.Now()),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current user
// @Description  The signed-in user's own profile including wallet balance
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.UserProfile]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	profile, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
