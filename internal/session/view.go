package session

import "github.com/auditnote/auditnote-api/internal/models"

// PanelView is a read-only copy of a panel with its live tally
type PanelView struct {
	ID    string       `json:"id"`
	Items []Item       `json:"items"`
	Tally models.Tally `json:"tally"`
}

// FrameView is a read-only copy of a frame
type FrameView struct {
	ID     string      `json:"id"`
	State  string      `json:"state"`
	Panels []PanelView `json:"panels"`
	FrameDetails
}

// View is a read-only copy of the whole session
type View struct {
	ID           string          `json:"id"`
	Owner        models.Identity `json:"owner"`
	Company      CompanyInfo     `json:"company"`
	CurrentFrame string          `json:"current_frame"`
	Frames       []FrameView     `json:"frames"`
}

// TallyItems counts the results of session items
func TallyItems(items []Item) models.Tally {
	var t models.Tally
	for _, it := range items {
		t.Add(it.Result)
	}
	return t
}

func (p *panel) view() PanelView {
	items := append([]Item{}, p.items...)
	return PanelView{ID: p.id, Items: items, Tally: TallyItems(items)}
}

func (f *frame) view() FrameView {
	v := FrameView{ID: f.id, State: f.state.Current(), FrameDetails: f.details}
	for _, p := range f.panels {
		v.Panels = append(v.Panels, p.view())
	}
	return v
}

// Frame returns a copy of one frame
func (s *Session) Frame(id string) (FrameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.frameLocked(id)
	if err != nil {
		return FrameView{}, err
	}
	return f.view(), nil
}

// Panel returns a copy of one panel
func (s *Session) Panel(frameID, panelID string) (PanelView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.frameLocked(frameID)
	if err != nil {
		return PanelView{}, err
	}
	p, err := f.panel(panelID)
	if err != nil {
		return PanelView{}, err
	}
	return p.view(), nil
}

// Snapshot returns a copy of the whole session
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	v := View{
		ID:           s.ID,
		Owner:        s.Owner,
		Company:      s.company.clone(),
		CurrentFrame: s.current,
	}
	for _, f := range s.frames {
		v.Frames = append(v.Frames, f.view())
	}
	return v
}
