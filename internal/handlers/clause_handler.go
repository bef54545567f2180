package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/internal/models"
)

type ClauseHandler struct{}

func NewClauseHandler() *ClauseHandler {
	return &ClauseHandler{}
}

// @Summary List ISO clauses
// @Description Returns the ISO 50001 clause reference used to autofill clause names
// @Tags Clauses
// @Produce json
// @Success 200 {array} models.Clause
// @Router /clauses [get]
func (h *ClauseHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, models.Clauses())
}
