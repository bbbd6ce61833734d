package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"deskwarrior-backend/internal/common/middleware"
	"deskwarrior-backend/internal/features/session/models"
	"deskwarrior-backend/internal/features/session/service"
	"deskwarrior-backend/internal/platform/clock"
)

// AckRequest is the payload the bot relay sends when a user presses Done.
type AckRequest struct {
	UserID    int64  `json:"user_id" binding:"required" example:"123456789"`
	SessionID string `json:"session_id" binding:"required" example:"4f7c9d3e-1b2a-4c5d-8e9f-0a1b2c3d4e5f"`
	Timestamp int64  `json:"timestamp" example:"1725000000"`
}

// DeliveryResultRequest reports whether a card message reached the user.
type DeliveryResultRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	OK        *bool  `json:"ok" binding:"required"`
}

// CardRequester issues a card outside the scheduler's cadence, for the
// user-initiated "card now" command.
type CardRequester interface {
	IssueNow(ctx context.Context, userID int64) error
}

// RequestCardRequest asks for an immediate card on the user's behalf.
type RequestCardRequest struct {
	UserID int64 `json:"user_id" binding:"required" example:"123456789"`
}

type SessionHandler struct {
	completion *service.CompletionService
	sessions   service.SessionService
	requester  CardRequester
	clock      clock.Clock
}

func NewSessionHandler(completion *service.CompletionService, sessions service.SessionService, requester CardRequester, clk clock.Clock) *SessionHandler {
	return &SessionHandler{
		completion: completion,
		sessions:   sessions,
		requester:  requester,
		clock:      clk,
	}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	cards := router.Group("/cards")
	{
		cards.POST("/ack", h.acknowledge)
		cards.POST("/delivery-result", h.deliveryResult)
		cards.POST("/request", h.requestCard)
		cards.GET("/pending/:user_id", h.getPending)
	}
}

// @Summary Acknowledge a card
// @Description Mark the user's pending exercise card as done. The elapsed time since issuance decides whether the completion is scored in full, reduced, or rejected. Stale and duplicate acknowledgements are accepted and ignored.
// @Tags cards
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param request body AckRequest true "Acknowledgement"
// @Success 204 "Processed"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request body"
// @Failure 404 {object} middleware.ErrorResponse "Session not found"
// @Router /cards/ack [post]
func (h *SessionHandler) acknowledge(c *gin.Context) {
	var req AckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ackedAt := h.clock.Now()
	if req.Timestamp > 0 {
		ackedAt = time.Unix(req.Timestamp, 0).UTC()
	}

	if err := h.completion.AcknowledgeCard(c.Request.Context(), req.UserID, req.SessionID, ackedAt); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Report delivery result
// @Description Record the outcome of a card delivery attempt. A failed delivery rolls the session back so the user is retried on the next scheduler tick.
// @Tags cards
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param request body DeliveryResultRequest true "Delivery outcome"
// @Success 204 "Processed"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request body"
// @Router /cards/delivery-result [post]
func (h *SessionHandler) deliveryResult(c *gin.Context) {
	var req DeliveryResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.completion.HandleDeliveryResult(c.Request.Context(), req.SessionID, *req.OK); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Request a card now
// @Description Issue a card to the user immediately, skipping the reminder cadence. An unresolved pending card blocks the request, and paused users cannot request cards.
// @Tags cards
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param request body RequestCardRequest true "Card request"
// @Success 204 "Card issued and handed to delivery"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request body"
// @Failure 403 {object} middleware.ErrorResponse "User is paused"
// @Failure 409 {object} middleware.ErrorResponse "A card is already pending"
// @Failure 502 {object} middleware.ErrorResponse "Delivery failed"
// @Router /cards/request [post]
func (h *SessionHandler) requestCard(c *gin.Context) {
	var req RequestCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.requester.IssueNow(c.Request.Context(), req.UserID); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get pending card
// @Description Get the user's currently pending card session, if any.
// @Tags cards
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param user_id path int true "User ID"
// @Success 200 {object} models.CardSession "Pending session"
// @Failure 400 {object} middleware.ErrorResponse "Invalid user ID"
// @Failure 404 {object} middleware.ErrorResponse "No pending session"
// @Router /cards/pending/{user_id} [get]
func (h *SessionHandler) getPending(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	session, err := h.sessions.GetPending(c.Request.Context(), userID)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

func toSessionResponse(s *models.CardSession) gin.H {
	return gin.H{
		"id":                s.ID,
		"user_id":           s.UserID,
		"card_id":           s.CardID,
		"kind":              s.CardKind,
		"exercise":          s.Exercise,
		"points":            s.Points,
		"expected_duration": int(s.ExpectedDuration.Seconds()),
		"state":             s.State,
		"issued_at":         s.IssuedAt,
	}
}
