package handler

import (
	"net/http"
	"strconv"

	search "anoa.com/nawhoknow/internal/modules/search/service"
	"anoa.com/nawhoknow/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	meili search.MeiliSearchService
}

func NewSearchHandler(meili search.MeiliSearchService) *SearchHandler {
	return &SearchHandler{meili: meili}
}

// SearchPredictions serves the public full-text search. Only approved and
// resolved predictions are searchable here.
func (h *SearchHandler) SearchPredictions(c *gin.Context) {
	h.searchPredictions(c, false)
}

// SearchAllPredictions is the admin variant without a status filter.
func (h *SearchHandler) SearchAllPredictions(c *gin.Context) {
	h.searchPredictions(c, true)
}

func (h *SearchHandler) searchPredictions(c *gin.Context, admin bool) {
	query := c.Query("q")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	docs, err := h.meili.SearchPredictions(query, limit, admin)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}
