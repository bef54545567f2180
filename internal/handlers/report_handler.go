package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/internal/services"
)

// Report delivery modes
const (
	DeliveryAttachment = "attachment"
	DeliveryLink       = "link"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportLink is the JSON delivery of a rendered report
type ReportLink struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	DataURL     string `json:"data_url"`
}

// @Summary Export audit report
// @Description Renders the persisted findings of a company, optionally one frame, as a downloadable file or a data URL
// @Tags Reports
// @Produce application/pdf
// @Produce json
// @Param company query string true "Company name"
// @Param frame_id query string false "Frame ID"
// @Param format query string false "pdf, docx, xlsx or html" default(pdf)
// @Param delivery query string false "attachment or link" default(attachment)
// @Success 200 {file} file "report"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	company := strings.TrimSpace(c.Query("company"))
	if company == "" {
		respondError(c, fmt.Errorf("%w: company", services.ErrMissingFields))
		return
	}
	format := c.DefaultQuery("format", services.FormatPDF)
	delivery := c.DefaultQuery("delivery", DeliveryAttachment)
	if delivery != DeliveryAttachment && delivery != DeliveryLink {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delivery must be attachment or link"})
		return
	}

	file, err := h.reportService.Export(c.Request.Context(), company, c.Query("frame_id"), format)
	if err != nil {
		respondError(c, err)
		return
	}

	if delivery == DeliveryLink {
		c.JSON(http.StatusOK, ReportLink{
			FileName:    file.FileName,
			ContentType: file.ContentType,
			DataURL:     file.DataURL(),
		})
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
