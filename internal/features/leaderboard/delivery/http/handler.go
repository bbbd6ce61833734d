package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"deskwarrior-backend/internal/common/middleware"
	"deskwarrior-backend/internal/features/leaderboard/service"
	"deskwarrior-backend/internal/platform/clock"
)

const defaultTopN = 10

type LeaderboardHandler struct {
	service service.LeaderboardService
	clock   clock.Clock
}

func NewLeaderboardHandler(svc service.LeaderboardService, clk clock.Clock) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: svc,
		clock:   clk,
	}
}

func (h *LeaderboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	lb := router.Group("/leaderboard")
	{
		lb.GET("/:chat_id", h.getLeaderboard)
		lb.GET("/:chat_id/summary", h.getSummary)
		lb.POST("/:chat_id/rebuild", h.rebuild)
	}
}

// @Summary Get chat leaderboard
// @Description Get the ranked standings for a chat, ordered by total points. Ties rank the earlier scorer first.
// @Tags leaderboard
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param chat_id path int true "Chat ID"
// @Param limit query int false "Number of rows to return" default(10)
// @Success 200 {array} models.RankedRow "Ranked rows"
// @Failure 400 {object} middleware.ErrorResponse "Invalid chat ID"
// @Router /leaderboard/{chat_id} [get]
func (h *LeaderboardHandler) getLeaderboard(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID"})
		return
	}

	topN := defaultTopN
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		topN = n
	}

	rows, err := h.service.GetLeaderboard(c.Request.Context(), chatID, topN)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// @Summary Get daily summary
// @Description Get per-user points scored in a chat on a given UTC day. Defaults to today.
// @Tags leaderboard
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param chat_id path int true "Chat ID"
// @Param day query string false "Day in YYYY-MM-DD format (UTC)"
// @Success 200 {array} models.DaySummary "Per-user totals"
// @Failure 400 {object} middleware.ErrorResponse "Invalid chat ID or day"
// @Router /leaderboard/{chat_id}/summary [get]
func (h *LeaderboardHandler) getSummary(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID"})
		return
	}

	day := h.clock.Now().UTC()
	if raw := c.Query("day"); raw != "" {
		day, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid day, expected YYYY-MM-DD"})
			return
		}
	}

	summary, err := h.service.GetSummary(c.Request.Context(), chatID, day)
	if err != nil {
		middleware.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary Rebuild chat standings
// @Description Replay the chat's score ledger and replace the derived leaderboard rows. Used to recover from partial writes.
// @Tags leaderboard
// @Accept json
// @Produce json
// @Security CollaboratorToken
// @Param chat_id path int true "Chat ID"
// @Success 204 "Rebuilt"
// @Failure 400 {object} middleware.ErrorResponse "Invalid chat ID"
// @Router /leaderboard/{chat_id}/rebuild [post]
func (h *LeaderboardHandler) rebuild(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID"})
		return
	}

	if err := h.service.Rebuild(c.Request.Context(), chatID); err != nil {
		middleware.SendError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
