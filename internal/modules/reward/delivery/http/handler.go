package handler

import (
	"net/http"

	rewardDto "anoa.com/nawhoknow/internal/modules/reward/dto"
	reward "anoa.com/nawhoknow/internal/modules/reward/service"
	"anoa.com/nawhoknow/pkg/response"
	pkgvalidator "anoa.com/nawhoknow/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RewardHandler struct {
	service reward.RewardService
}

func NewRewardHandler(service reward.RewardService) *RewardHandler {
	return &RewardHandler{service: service}
}

func (h *RewardHandler) CreateReward(c *gin.Context) {
	var req rewardDto.CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	if err := h.service.CreateReward(c.Request.Context(), req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "reward created"})
}

func (h *RewardHandler) GetCatalog(c *gin.Context) {
	rewards, err := h.service.GetCatalog(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rewards})
}

func (h *RewardHandler) Redeem(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	redemption, err := h.service.Redeem(c.Request.Context(), userID, rewardID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemption)
}

func (h *RewardHandler) GetMyRedemptions(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	redemptions, err := h.service.GetMyRedemptions(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": redemptions})
}
