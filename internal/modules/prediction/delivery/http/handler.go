package handler

import (
	"net/http"

	"anoa.com/nawhoknow/internal/entity"
	predictionDto "anoa.com/nawhoknow/internal/modules/prediction/dto"
	prediction "anoa.com/nawhoknow/internal/modules/prediction/service"
	commonDto "anoa.com/nawhoknow/pkg/dto"
	"anoa.com/nawhoknow/pkg/response"
	pkgvalidator "anoa.com/nawhoknow/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PredictionHandler struct {
	service prediction.Service
}

func NewPredictionHandler(service prediction.Service) *PredictionHandler {
	return &PredictionHandler{service: service}
}

func (h *PredictionHandler) CreatePrediction(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req predictionDto.CreatePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	if err := h.service.CreatePrediction(c.Request.Context(), userID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "prediction submitted for review"})
}

func (h *PredictionHandler) GetFeed(c *gin.Context) {
	var filter commonDto.FeedFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	userID, _ := response.GetUserID(c) // anonymous viewers get uuid.Nil

	feed, err := h.service.GetFeed(c.Request.Context(), userID, false, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *PredictionHandler) GetAdminFeed(c *gin.Context) {
	var filter commonDto.FeedFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	feed, err := h.service.GetFeed(c.Request.Context(), userID, true, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *PredictionHandler) GetSpotlight(c *gin.Context) {
	userID, _ := response.GetUserID(c)

	spotlight, err := h.service.GetSpotlight(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, spotlight)
}

func (h *PredictionHandler) GetMyPredictions(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	predictions, err := h.service.GetMyPredictions(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": predictions})
}

func (h *PredictionHandler) GetPredictionByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	userID, _ := response.GetUserID(c)

	pred, err := h.service.GetPredictionByID(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, pred)
}

func (h *PredictionHandler) Moderate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req predictionDto.ModeratePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	if err := h.service.Moderate(c.Request.Context(), id, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "prediction " + req.Status})
}

func (h *PredictionHandler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req predictionDto.ResolvePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	if err := h.service.Resolve(c.Request.Context(), id, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "prediction resolved"})
}

func (h *PredictionHandler) DeletePrediction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	isAdmin := false
	if u, exists := c.Get("user"); exists {
		if user, ok := u.(*entity.User); ok {
			isAdmin = user.IsAdmin()
		}
	}

	if err := h.service.DeletePrediction(c.Request.Context(), userID, isAdmin, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "prediction deleted"})
}
