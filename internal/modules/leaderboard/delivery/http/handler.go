package handler

import (
	"net/http"

	leaderboardDto "anoa.com/nawhoknow/internal/modules/leaderboard/dto"
	leaderboard "anoa.com/nawhoknow/internal/modules/leaderboard/service"
	"anoa.com/nawhoknow/pkg/response"
	pkgvalidator "anoa.com/nawhoknow/pkg/validator"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboard.LeaderboardService
}

func NewLeaderboardHandler(service leaderboard.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var filter leaderboardDto.LeaderboardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	userID, _ := response.GetUserID(c)

	board, err := h.service.GetLeaderboard(c.Request.Context(), filter, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}
