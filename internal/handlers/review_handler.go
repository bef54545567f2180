package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/internal/services"
)

// ReviewHandler serves persisted findings
type ReviewHandler struct {
	auditService *services.AuditService
}

func NewReviewHandler(auditService *services.AuditService) *ReviewHandler {
	return &ReviewHandler{auditService: auditService}
}

// @Summary List audited companies
// @Tags Review
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /review/companies [get]
func (h *ReviewHandler) Companies(c *gin.Context) {
	companies, err := h.auditService.ListCompanies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// @Summary List frames of a company
// @Description Frames in first-seen order with their result tallies
// @Tags Review
// @Produce json
// @Param company path string true "Company name"
// @Success 200 {array} services.FrameSummary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /review/companies/{company}/frames [get]
func (h *ReviewHandler) Frames(c *gin.Context) {
	frames, err := h.auditService.ListFrames(c.Request.Context(), c.Param("company"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, frames)
}

// @Summary Review a frame
// @Description Persisted findings of one frame grouped by panel, with participants
// @Tags Review
// @Produce json
// @Param company path string true "Company name"
// @Param frame_id path string true "Frame ID"
// @Success 200 {object} services.FrameReview
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /review/companies/{company}/frames/{frame_id} [get]
func (h *ReviewHandler) Frame(c *gin.Context) {
	review, err := h.auditService.FrameReview(c.Request.Context(), c.Param("company"), c.Param("frame_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
