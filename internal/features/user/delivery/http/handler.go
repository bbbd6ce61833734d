package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"deskwarrior-backend/internal/common/middleware"
	"deskwarrior-backend/internal/features/user/models"
	"deskwarrior-backend/internal/features/user/service"
)

// PendingExpirer expires the user's pending card when reminders are paused.
type PendingExpirer interface {
	ExpireUserPending(ctx context.Context, userID int64) error
}

type UserHandler struct {
	service service.UserService
	expirer PendingExpirer
}

func NewUserHandler(service service.UserService, expirer PendingExpirer) *UserHandler {
	return &UserHandler{
		service: service,
		expirer: expirer,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.GET("/:id", h.getUser)
		users.POST("/interval", h.setInterval)
	}
}

// RegisterBotRoutes mounts the endpoints called by the bot relay rather than
// the mini app. They are guarded by the collaborator token, not init data.
func (h *UserHandler) RegisterBotRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("/:id/pause", h.pause)
		users.POST("/:id/resume", h.resume)
		users.POST("/:id/premium", h.grantPremium)
	}
}

// @Summary Get current user
// @Description Get or create the current user based on Telegram init data.
// @Tags users
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.UserResponse "User data"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid init data"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	telegramUser, ok := user.(initdata.User)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user data format"})
		return
	}

	resp, err := h.service.GetOrCreateUser(c.Request.Context(), telegramUser.ID, telegramUser.ID, telegramUser.Username, telegramUser.FirstName, telegramUser.LastName)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get user by ID
// @Description Get a user's profile, reminder settings and current streak.
// @Tags users
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse "User data"
// @Failure 400 {object} models.ErrorResponse "Invalid user ID"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) getUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	resp, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Set reminder interval
// @Description Configure the reminder cadence for the current user. Free users are pinned to the default interval; premium users pick from the allowed set.
// @Tags users
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.IntervalUpdate true "Interval in minutes"
// @Success 200 {object} models.UserResponse "Updated user"
// @Failure 400 {object} models.ErrorResponse "Interval not allowed for this user"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/interval [post]
func (h *UserHandler) setInterval(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	telegramUser, ok := user.(initdata.User)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user data format"})
		return
	}

	var req models.IntervalUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.ConfigureInterval(c.Request.Context(), telegramUser.ID, req.Minutes); err != nil {
		middleware.SendError(c, err)
		return
	}

	resp, err := h.service.GetUser(c.Request.Context(), telegramUser.ID)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Pause reminders
// @Description Stop issuing cards to the user until they resume. Any pending card is expired.
// @Tags users
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param id path int true "User ID"
// @Success 204 "Paused"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/{id}/pause [post]
func (h *UserHandler) pause(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.Pause(c.Request.Context(), id); err != nil {
		middleware.SendError(c, err)
		return
	}

	if err := h.expirer.ExpireUserPending(c.Request.Context(), id); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Resume reminders
// @Description Resume card issuance for a paused user.
// @Tags users
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param id path int true "User ID"
// @Success 204 "Resumed"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/{id}/resume [post]
func (h *UserHandler) resume(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.Resume(c.Request.Context(), id); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Grant premium
// @Description Mark a user as premium, unlocking configurable reminder intervals.
// @Tags users
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param id path int true "User ID"
// @Success 204 "Granted"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/{id}/premium [post]
func (h *UserHandler) grantPremium(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.GrantPremium(c.Request.Context(), id); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
