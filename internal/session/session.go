// Package session holds the in-memory audit tree owned by one login
// session: company details, frames, panels and their items.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/statemachine"
)

var (
	ErrFrameNotFound = errors.New("không tìm thấy frame")
	ErrPanelNotFound = errors.New("không tìm thấy panel")
	ErrItemNotFound  = errors.New("không tìm thấy mục đánh giá")
	ErrPersonIndex   = errors.New("không tìm thấy người tham gia")
	ErrOwnerAuditor  = errors.New("không thể xóa đánh giá viên hiện tại")
	ErrNoCompany     = errors.New("chưa nhập tên công ty")
)

// Item is a finding as entered in the session
type Item struct {
	Clause       string        `json:"clause"`
	ClauseName   string        `json:"clause_name"`
	Requirements string        `json:"requirements"`
	Evidence     string        `json:"evidence"`
	ImageURL     string        `json:"image_url"`
	Result       models.Result `json:"result"`
	Timestamp    string        `json:"timestamp"`
}

// CompanyInfo is the audited company and the people attending
type CompanyInfo struct {
	CompanyName  string          `json:"company_name"`
	Address      string          `json:"address"`
	Participants []models.Person `json:"participants"`
	Auditors     []models.Person `json:"auditors"`
}

// FrameDetails are the editable header fields of a frame
type FrameDetails struct {
	Department string `json:"department"`
	Person     string `json:"person"`
	AuditTime  string `json:"audit_time"`
}

type panel struct {
	id    string
	items []Item
}

type frame struct {
	id      string
	details FrameDetails
	panels  []*panel
	state   *statemachine.FrameFSM
}

func (f *frame) panel(id string) (*panel, error) {
	for _, p := range f.panels {
		if p.id == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrPanelNotFound, f.id, id)
}

func (f *frame) addPanel() *panel {
	p := &panel{id: strconv.Itoa(len(f.panels) + 1)}
	f.panels = append(f.panels, p)
	return p
}

// Session is one auditor's working state. All methods are safe for
// concurrent use.
type Session struct {
	ID    string
	Owner models.Identity

	mu       sync.Mutex
	company  CompanyInfo
	frames   []*frame
	current  string
	lastSeen time.Time
	now      func() time.Time
}

func newSession(id string, owner models.Identity, now func() time.Time) *Session {
	s := &Session{
		ID:    id,
		Owner: owner,
		company: CompanyInfo{
			Participants: []models.Person{},
			Auditors:     []models.Person{{FullName: owner.FullName, Position: owner.Position}},
		},
		now:      now,
		lastSeen: now(),
	}
	// A fresh session starts with frame 1 / panel 1 ready for entry.
	s.addFrameLocked()
	return s
}

func (s *Session) touchLocked() {
	s.lastSeen = s.now()
}

// LastSeen returns when the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) frameLocked(id string) (*frame, error) {
	for _, f := range s.frames {
		if f.id == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFrameNotFound, id)
}

func (s *Session) addFrameLocked() *frame {
	f := &frame{
		id:      strconv.Itoa(len(s.frames) + 1),
		details: FrameDetails{AuditTime: s.now().Format(models.AuditTimeLayout)},
		state:   statemachine.NewFrameFSM(statemachine.FrameStateDraft),
	}
	f.addPanel()
	s.frames = append(s.frames, f)
	s.current = f.id
	return f
}

// AddFrame creates the next frame and makes it current
func (s *Session) AddFrame() FrameView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.addFrameLocked().view()
}

// SelectFrame makes an existing frame current
func (s *Session) SelectFrame(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if _, err := s.frameLocked(id); err != nil {
		return err
	}
	s.current = id
	return nil
}

// CurrentFrame returns the id of the current frame
func (s *Session) CurrentFrame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// UpdateFrame replaces the frame's header fields
func (s *Session) UpdateFrame(id string, details FrameDetails) (FrameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	f, err := s.frameLocked(id)
	if err != nil {
		return FrameView{}, err
	}
	if details.AuditTime == "" {
		details.AuditTime = f.details.AuditTime
	}
	f.details = details
	return f.view(), nil
}

// AddPanel creates the next panel of a frame and returns its id
func (s *Session) AddPanel(frameID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	f, err := s.frameLocked(frameID)
	if err != nil {
		return "", err
	}
	return f.addPanel().id, nil
}

// AppendItem adds a finding to the end of a panel and returns its index
func (s *Session) AppendItem(frameID, panelID string, item Item) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	f, err := s.frameLocked(frameID)
	if err != nil {
		return -1, err
	}
	p, err := f.panel(panelID)
	if err != nil {
		return -1, err
	}
	p.items = append(p.items, item)
	return len(p.items) - 1, nil
}

// RemoveItem drops a finding from the session only
func (s *Session) RemoveItem(frameID, panelID string, index int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	f, err := s.frameLocked(frameID)
	if err != nil {
		return Item{}, err
	}
	p, err := f.panel(panelID)
	if err != nil {
		return Item{}, err
	}
	if index < 0 || index >= len(p.items) {
		return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, index)
	}
	removed := p.items[index]
	p.items = append(p.items[:index], p.items[index+1:]...)
	return removed, nil
}

// Items returns a copy of a panel's findings
func (s *Session) Items(frameID, panelID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.frameLocked(frameID)
	if err != nil {
		return nil, err
	}
	p, err := f.panel(panelID)
	if err != nil {
		return nil, err
	}
	return append([]Item(nil), p.items...), nil
}

// EntryContext is what a new finding needs from the session
type EntryContext struct {
	Company CompanyInfo
	Frame   FrameDetails
}

// EntryContext checks that frameID/panelID exist and snapshots the
// company and frame fields a persisted note carries.
func (s *Session) EntryContext(frameID, panelID string) (EntryContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.frameLocked(frameID)
	if err != nil {
		return EntryContext{}, err
	}
	if _, err := f.panel(panelID); err != nil {
		return EntryContext{}, err
	}
	if s.company.CompanyName == "" {
		return EntryContext{}, ErrNoCompany
	}
	return EntryContext{Company: s.company.clone(), Frame: f.details}, nil
}

// RecordFrame moves the frame to recording, running persist first if the
// frame is still a draft.
func (s *Session) RecordFrame(ctx context.Context, frameID string, persist statemachine.PersistFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.frameLocked(frameID)
	if err != nil {
		return err
	}
	return f.state.Record(ctx, persist)
}

// Company returns a copy of the company details
func (s *Session) Company() CompanyInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.company.clone()
}

// SetCompany updates the company name and address. Renaming the company
// sends every frame back to draft so participants are written under the
// new name.
func (s *Session) SetCompany(ctx context.Context, name, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	renamed := s.company.CompanyName != "" && s.company.CompanyName != name
	s.company.CompanyName = name
	s.company.Address = address
	if !renamed {
		return nil
	}
	for _, f := range s.frames {
		if err := f.state.Reset(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AddParticipant appends an auditee participant
func (s *Session) AddParticipant(p models.Person) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.company.Participants = append(s.company.Participants, p)
	return len(s.company.Participants) - 1
}

// UpdateParticipant replaces the participant at index
func (s *Session) UpdateParticipant(index int, p models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if index < 0 || index >= len(s.company.Participants) {
		return fmt.Errorf("%w: %d", ErrPersonIndex, index)
	}
	s.company.Participants[index] = p
	return nil
}

// RemoveParticipant deletes the participant at index
func (s *Session) RemoveParticipant(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if index < 0 || index >= len(s.company.Participants) {
		return fmt.Errorf("%w: %d", ErrPersonIndex, index)
	}
	s.company.Participants = append(s.company.Participants[:index], s.company.Participants[index+1:]...)
	return nil
}

// AddAuditor appends a co-auditor
func (s *Session) AddAuditor(p models.Person) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.company.Auditors = append(s.company.Auditors, p)
	return len(s.company.Auditors) - 1
}

// UpdateAuditor replaces a co-auditor. Index 0 is the logged-in auditor
// and cannot be edited.
func (s *Session) UpdateAuditor(index int, p models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if index == 0 {
		return ErrOwnerAuditor
	}
	if index < 0 || index >= len(s.company.Auditors) {
		return fmt.Errorf("%w: %d", ErrPersonIndex, index)
	}
	s.company.Auditors[index] = p
	return nil
}

// RemoveAuditor deletes a co-auditor. Index 0 cannot be removed.
func (s *Session) RemoveAuditor(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if index == 0 {
		return ErrOwnerAuditor
	}
	if index < 0 || index >= len(s.company.Auditors) {
		return fmt.Errorf("%w: %d", ErrPersonIndex, index)
	}
	s.company.Auditors = append(s.company.Auditors[:index], s.company.Auditors[index+1:]...)
	return nil
}

func (c CompanyInfo) clone() CompanyInfo {
	c.Participants = append([]models.Person{}, c.Participants...)
	c.Auditors = append([]models.Person{}, c.Auditors...)
	return c
}
