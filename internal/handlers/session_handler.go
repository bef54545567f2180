package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/internal/middleware"
	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/services"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/internal/storage"
)

// SessionHandler edits the caller's in-memory audit tree
type SessionHandler struct {
	auditService *services.AuditService
}

func NewSessionHandler(auditService *services.AuditService) *SessionHandler {
	return &SessionHandler{auditService: auditService}
}

func (h *SessionHandler) session(c *gin.Context) *session.Session {
	return h.auditService.Session(middleware.GetSessionID(c), middleware.GetIdentity(c))
}

// indexParam parses a positional path parameter, reporting notFound when it
// is not a number.
func indexParam(c *gin.Context, name string, notFound error) (int, error) {
	idx, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return -1, fmt.Errorf("%w: %s", notFound, c.Param(name))
	}
	return idx, nil
}

// @Summary Get audit session
// @Description Returns the caller's company details and frame tree with live tallies
// @Tags Session
// @Produce json
// @Success 200 {object} session.View
// @Security BearerAuth
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).Snapshot())
}

type CompanyRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Address     string `json:"address"`
}

// @Summary Set company
// @Description Sets the audited company. Renaming it sends every frame back to draft.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body CompanyRequest true "Company"
// @Success 200 {object} session.CompanyInfo
// @Security BearerAuth
// @Router /session/company [put]
func (h *SessionHandler) SetCompany(c *gin.Context) {
	var req CompanyRequest
	if err := bindEnvelope(c, &req, "company"); err != nil {
		respondError(c, fmt.Errorf("%w: company_name", services.ErrMissingFields))
		return
	}

	sess := h.session(c)
	if err := sess.SetCompany(c.Request.Context(), req.CompanyName, req.Address); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Company())
}

// @Summary Add participant
// @Description Adds an auditee participant. Entries missing a name or position are kept but not saved.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body models.Person true "Participant"
// @Success 201 {object} session.CompanyInfo
// @Security BearerAuth
// @Router /session/participants [post]
func (h *SessionHandler) AddParticipant(c *gin.Context) {
	var p models.Person
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, services.ErrMissingFields)
		return
	}
	sess := h.session(c)
	sess.AddParticipant(p)
	c.JSON(http.StatusCreated, sess.Company())
}

// @Summary Update participant
// @Tags Session
// @Accept json
// @Produce json
// @Param index path int true "Participant index"
// @Param request body models.Person true "Participant"
// @Success 200 {object} session.CompanyInfo
// @Security BearerAuth
// @Router /session/participants/{index} [put]
func (h *SessionHandler) UpdateParticipant(c *gin.Context) {
	h.updatePerson(c, (*session.Session).UpdateParticipant)
}

// @Summary Remove participant
// @Tags Session
// @Produce json
// @Param index path int true "Participant index"
// @Success 200 {object} session.CompanyInfo
// @Security BearerAuth
// @Router /session/participants/{index} [delete]
func (h *SessionHandler) RemoveParticipant(c *gin.Context) {
	h.removePerson(c, (*session.Session).RemoveParticipant)
}

// @Summary Add co-auditor
// @Tags Session
// @Accept json
// @Produce json
// @Param request body models.Person true "Auditor"
// @Success 201 {object} session.CompanyInfo
// @Security BearerAuth
// @Router /session/auditors [post]
func (h *SessionHandler) AddAuditor(c *gin.Context) {
	var p models.Person
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, services.ErrMissingFields)
		return
	}
	sess := h.session(c)
	sess.AddAuditor(p)
	c.JSON(http.StatusCreated, sess.Company())
}

// @Summary Update co-auditor
// @Description Index 0 is the logged-in auditor and cannot be changed
// @Tags Session
// @Accept json
// @Produce json
// @Param index path int true "Auditor index"
// @Param request body models.Person true "Auditor"
// @Success 200 {object} session.CompanyInfo
// @Security BearerAuth
// @Router /session/auditors/{index} [put]
func (h *SessionHandler) UpdateAuditor(c *gin.Context) {
	h.updatePerson(c, (*session.Session).UpdateAuditor)
}

// @Summary Remove co-auditor
// @Description Index 0 is the logged-in auditor and cannot be removed
// @Tags Session
// @Produce json
// @Param index path int true "Auditor index"
// @Success 200 {object} session.CompanyInfo
// @Security BearerAuth
// @Router /session/auditors/{index} [delete]
func (h *SessionHandler) RemoveAuditor(c *gin.Context) {
	h.removePerson(c, (*session.Session).RemoveAuditor)
}

func (h *SessionHandler) updatePerson(c *gin.Context, update func(*session.Session, int, models.Person) error) {
	idx, err := indexParam(c, "index", session.ErrPersonIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	var p models.Person
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, services.ErrMissingFields)
		return
	}
	sess := h.session(c)
	if err := update(sess, idx, p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Company())
}

func (h *SessionHandler) removePerson(c *gin.Context, remove func(*session.Session, int) error) {
	idx, err := indexParam(c, "index", session.ErrPersonIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	sess := h.session(c)
	if err := remove(sess, idx); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Company())
}

// @Summary Add frame
// @Description Creates the next frame with one empty panel and makes it current
// @Tags Session
// @Produce json
// @Success 201 {object} session.FrameView
// @Security BearerAuth
// @Router /session/frames [post]
func (h *SessionHandler) AddFrame(c *gin.Context) {
	c.JSON(http.StatusCreated, h.session(c).AddFrame())
}

// @Summary Select frame
// @Tags Session
// @Produce json
// @Param frame_id path string true "Frame ID"
// @Success 200 {object} session.FrameView
// @Security BearerAuth
// @Router /session/frames/{frame_id}/select [post]
func (h *SessionHandler) SelectFrame(c *gin.Context) {
	sess := h.session(c)
	frameID := c.Param("frame_id")
	if err := sess.SelectFrame(frameID); err != nil {
		respondError(c, err)
		return
	}
	view, err := sess.Frame(frameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Update frame
// @Description Updates department, person and audit time of a frame
// @Tags Session
// @Accept json
// @Produce json
// @Param frame_id path string true "Frame ID"
// @Param request body session.FrameDetails true "Frame details"
// @Success 200 {object} session.FrameView
// @Security BearerAuth
// @Router /session/frames/{frame_id} [put]
func (h *SessionHandler) UpdateFrame(c *gin.Context) {
	var details session.FrameDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		respondError(c, services.ErrMissingFields)
		return
	}
	view, err := h.session(c).UpdateFrame(c.Param("frame_id"), details)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Add panel
// @Tags Session
// @Produce json
// @Param frame_id path string true "Frame ID"
// @Success 201 {object} session.PanelView
// @Security BearerAuth
// @Router /session/frames/{frame_id}/panels [post]
func (h *SessionHandler) AddPanel(c *gin.Context) {
	sess := h.session(c)
	frameID := c.Param("frame_id")
	panelID, err := sess.AddPanel(frameID)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := sess.Panel(frameID, panelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// @Summary Get panel
// @Description Returns a panel's findings and its live NCA/NCB/PI/CM tally
// @Tags Session
// @Produce json
// @Param frame_id path string true "Frame ID"
// @Param panel_id path string true "Panel ID"
// @Success 200 {object} session.PanelView
// @Security BearerAuth
// @Router /session/frames/{frame_id}/panels/{panel_id} [get]
func (h *SessionHandler) GetPanel(c *gin.Context) {
	view, err := h.session(c).Panel(c.Param("frame_id"), c.Param("panel_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Add finding
// @Description Records a finding in a panel and appends it to the notes table. An optional evidence photo is uploaded first; when the upload fails the finding is kept without it and a warning is returned.
// @Tags Session
// @Accept multipart/form-data
// @Produce json
// @Param frame_id path string true "Frame ID"
// @Param panel_id path string true "Panel ID"
// @Param clause formData string true "Clause number"
// @Param clause_name formData string false "Clause name"
// @Param requirements formData string false "Requirements"
// @Param evidence formData string false "Evidence"
// @Param result formData string true "NCA, NCB, PI or CM"
// @Param image formData file false "Evidence photo"
// @Success 201 {object} services.AddItemResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /session/frames/{frame_id}/panels/{panel_id}/items [post]
func (h *SessionHandler) AddItem(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxFileSize()+1<<20)

	var in services.ItemInput
	if err := c.ShouldBind(&in); err != nil {
		respondError(c, fmt.Errorf("%w: clause, result", services.ErrMissingFields))
		return
	}

	var upload *services.Upload
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		if header.Size > storage.MaxFileSize() {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Ảnh vượt quá dung lượng cho phép"})
			return
		}
		upload = &services.Upload{Name: header.Filename, Reader: file}
	}

	res, err := h.auditService.AddItem(c.Request.Context(), h.session(c), c.Param("frame_id"), c.Param("panel_id"), in, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// @Summary Remove finding
// @Description Removes a finding from the session. The persisted notes row is kept.
// @Tags Session
// @Produce json
// @Param frame_id path string true "Frame ID"
// @Param panel_id path string true "Panel ID"
// @Param index path int true "Item index"
// @Success 200 {object} session.PanelView
// @Security BearerAuth
// @Router /session/frames/{frame_id}/panels/{panel_id}/items/{index} [delete]
func (h *SessionHandler) RemoveItem(c *gin.Context) {
	idx, err := indexParam(c, "index", session.ErrItemNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	sess := h.session(c)
	frameID, panelID := c.Param("frame_id"), c.Param("panel_id")
	if _, err := h.auditService.RemoveItem(sess, frameID, panelID, idx); err != nil {
		respondError(c, err)
		return
	}
	view, err := sess.Panel(frameID, panelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
