package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

var (
	// errNoParticipants keeps a frame in draft until someone complete is listed
	errNoParticipants = errors.New("no complete participants to save")
	// errParticipantsSaved means another session already wrote the frame's rows
	errParticipantsSaved = errors.New("participants already saved")
)

// AuditService records findings from a session and serves the review pages
type AuditService struct {
	notes        repository.NoteRepository
	participants repository.ParticipantRepository
	sessions     *session.Store
	images       *ImageService
	now          func() time.Time
}

func NewAuditService(notes repository.NoteRepository, participants repository.ParticipantRepository, sessions *session.Store, images *ImageService) *AuditService {
	return &AuditService{
		notes:        notes,
		participants: participants,
		sessions:     sessions,
		images:       images,
		now:          time.Now,
	}
}

// Session returns the caller's session, recreating it after a restart
func (s *AuditService) Session(id string, owner models.Identity) *session.Session {
	return s.sessions.GetOrCreate(id, owner)
}

// ItemInput is a finding as submitted by the entry form
type ItemInput struct {
	Clause       string `form:"clause" json:"clause" binding:"required"`
	ClauseName   string `form:"clause_name" json:"clause_name"`
	Requirements string `form:"requirements" json:"requirements"`
	Evidence     string `form:"evidence" json:"evidence"`
	Result       string `form:"result" json:"result" binding:"required"`
}

// Upload is an optional evidence photo
type Upload struct {
	Name   string
	Reader io.Reader
}

// AddItemResult describes the stored finding. Warning is set when the
// photo could not be uploaded and the item was kept without it.
type AddItemResult struct {
	Index   int          `json:"index"`
	Item    session.Item `json:"item"`
	Warning string       `json:"warning,omitempty"`
}

// AddItem validates a finding, uploads its photo, appends the note row,
// adds it to the panel and saves the frame's participants once.
func (s *AuditService) AddItem(ctx context.Context, sess *session.Session, frameID, panelID string, in ItemInput, upload *Upload) (*AddItemResult, error) {
	entry, err := sess.EntryContext(frameID, panelID)
	if err != nil {
		return nil, err
	}

	clause := strings.TrimSpace(in.Clause)
	if clause == "" {
		return nil, fmt.Errorf("%w: clause", ErrMissingFields)
	}
	result, err := models.ParseResult(in.Result)
	if err != nil {
		return nil, err
	}
	clauseName := strings.TrimSpace(in.ClauseName)
	if clauseName == "" {
		if title, ok := models.ClauseTitle(clause); ok {
			clauseName = title
		}
	}

	res := &AddItemResult{}
	var imageURL string
	if upload != nil && s.images != nil {
		imageURL, err = s.images.Upload(ctx, upload.Name, upload.Reader)
		if err != nil {
			logger.Warn("Evidence upload failed, keeping item without image", "frame_id", frameID, "panel_id", panelID, "error", err)
			res.Warning = err.Error()
		}
	}

	item := session.Item{
		Clause:       clause,
		ClauseName:   clauseName,
		Requirements: in.Requirements,
		Evidence:     in.Evidence,
		ImageURL:     imageURL,
		Result:       result,
		Timestamp:    s.now().Format(models.TimestampLayout),
	}

	note := models.AuditNote{
		Company:      entry.Company.CompanyName,
		Address:      entry.Company.Address,
		Department:   entry.Frame.Department,
		Person:       entry.Frame.Person,
		AuditTime:    entry.Frame.AuditTime,
		FrameID:      frameID,
		PanelID:      panelID,
		Clause:       item.Clause,
		ClauseName:   item.ClauseName,
		Requirements: item.Requirements,
		Evidence:     item.Evidence,
		ImageURL:     item.ImageURL,
		Result:       item.Result,
		Auditor:      sess.Owner.Email,
		Timestamp:    item.Timestamp,
	}
	if err := s.notes.Append(ctx, note); err != nil {
		return nil, fmt.Errorf("append note: %w", err)
	}

	idx, err := sess.AppendItem(frameID, panelID, item)
	if err != nil {
		return nil, err
	}
	res.Index, res.Item = idx, item

	company := entry.Company
	err = sess.RecordFrame(ctx, frameID, func(ctx context.Context) error {
		n, err := s.SaveParticipants(ctx, company.CompanyName, frameID, company)
		switch {
		case errors.Is(err, errParticipantsSaved):
			return nil
		case err == nil && n == 0:
			return errNoParticipants
		}
		return err
	})
	if err != nil && !errors.Is(err, errNoParticipants) {
		return nil, fmt.Errorf("save participants: %w", err)
	}
	return res, nil
}

// SaveParticipants writes the company's participants then its auditors for
// (company, frameID). Entries missing a name or position are skipped. It
// returns the rows written, or errParticipantsSaved when rows already exist
// for that pair.
func (s *AuditService) SaveParticipants(ctx context.Context, company, frameID string, info session.CompanyInfo) (int, error) {
	exists, err := s.participants.Exists(ctx, company, frameID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, errParticipantsSaved
	}

	var rows []models.Participant
	add := func(people []models.Person, role models.ParticipantRole) {
		for _, p := range people {
			if !p.Complete() {
				continue
			}
			rows = append(rows, models.Participant{
				Company:  company,
				FrameID:  frameID,
				FullName: strings.TrimSpace(p.FullName),
				Position: strings.TrimSpace(p.Position),
				Role:     role,
			})
		}
	}
	add(info.Participants, models.RoleCompany)
	add(info.Auditors, models.RoleAuditor)

	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.participants.AppendAll(ctx, rows); err != nil {
		return 0, err
	}
	logger.Info("Participants saved", "company", company, "frame_id", frameID, "count", len(rows))
	return len(rows), nil
}

// RemoveItem drops a finding from the session. The persisted note row is
// part of the audit trail and stays.
func (s *AuditService) RemoveItem(sess *session.Session, frameID, panelID string, index int) (session.Item, error) {
	item, err := sess.RemoveItem(frameID, panelID, index)
	if err != nil {
		return item, err
	}
	logger.Info("Item removed from session", "session", sess.ID, "frame_id", frameID, "panel_id", panelID, "index", index)
	return item, nil
}

// ListCompanies returns every audited company in first-seen order
func (s *AuditService) ListCompanies(ctx context.Context) ([]string, error) {
	return s.notes.Companies(ctx)
}

// FrameSummary describes one persisted frame of a company
type FrameSummary struct {
	FrameID    string       `json:"frame_id"`
	Department string       `json:"department"`
	Person     string       `json:"person"`
	AuditTime  string       `json:"audit_time"`
	Address    string       `json:"address"`
	Findings   int          `json:"findings"`
	Tally      models.Tally `json:"tally"`
}

// ListFrames returns a company's frames in first-seen order
func (s *AuditService) ListFrames(ctx context.Context, company string) ([]FrameSummary, error) {
	notes, err := s.notes.List(ctx, repository.NoteFilter{Company: company})
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ErrNoData
	}

	groups := groupByFrame(notes)
	out := make([]FrameSummary, 0, len(groups))
	for _, g := range groups {
		first := g.Notes[0]
		out = append(out, FrameSummary{
			FrameID:    g.FrameID,
			Department: first.Department,
			Person:     first.Person,
			AuditTime:  first.AuditTime,
			Address:    first.Address,
			Findings:   len(g.Notes),
			Tally:      g.Tally,
		})
	}
	return out, nil
}

// PanelReview is one panel of a persisted frame
type PanelReview struct {
	PanelID string             `json:"panel_id"`
	Tally   models.Tally       `json:"tally"`
	Notes   []models.AuditNote `json:"notes"`
}

// FrameReview is a persisted frame with its panels and participants
type FrameReview struct {
	FrameSummary
	Company      string               `json:"company"`
	Panels       []PanelReview        `json:"panels"`
	Participants []models.Participant `json:"participants"`
}

// FrameReview returns the persisted findings of one frame grouped by
// panel in first-seen order.
func (s *AuditService) FrameReview(ctx context.Context, company, frameID string) (*FrameReview, error) {
	filter := repository.NoteFilter{Company: company, FrameID: frameID}
	notes, err := s.notes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ErrNoData
	}
	participants, err := s.participants.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	first := notes[0]
	review := &FrameReview{
		FrameSummary: FrameSummary{
			FrameID:    frameID,
			Department: first.Department,
			Person:     first.Person,
			AuditTime:  first.AuditTime,
			Address:    first.Address,
			Findings:   len(notes),
			Tally:      models.TallyNotes(notes),
		},
		Company:      company,
		Participants: participants,
	}

	index := make(map[string]int)
	for _, n := range notes {
		i, ok := index[n.PanelID]
		if !ok {
			i = len(review.Panels)
			index[n.PanelID] = i
			review.Panels = append(review.Panels, PanelReview{PanelID: n.PanelID})
		}
		p := &review.Panels[i]
		p.Notes = append(p.Notes, n)
		p.Tally.Add(n.Result)
	}
	return review, nil
}

// frameGroup is the findings of one frame in table order
type frameGroup struct {
	FrameID string
	Notes   []models.AuditNote
	Tally   models.Tally
}

// groupByFrame groups notes by frame_id preserving first-seen order
func groupByFrame(notes []models.AuditNote) []frameGroup {
	index := make(map[string]int)
	var groups []frameGroup
	for _, n := range notes {
		i, ok := index[n.FrameID]
		if !ok {
			i = len(groups)
			index[n.FrameID] = i
			groups = append(groups, frameGroup{FrameID: n.FrameID})
		}
		groups[i].Notes = append(groups[i].Notes, n)
		groups[i].Tally.Add(n.Result)
	}
	return groups
}
