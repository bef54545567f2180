package models

import (
	"errors"
	"fmt"
	"strings"
)

// Result is the verdict recorded for a single audit finding
type Result string

const (
	ResultNCA Result = "NCA"
	ResultNCB Result = "NCB"
	ResultPI  Result = "PI"
	ResultCM  Result = "CM"
)

// Results lists the result categories in report order
var Results = []Result{ResultNCA, ResultNCB, ResultPI, ResultCM}

var resultLabels = map[Result]string{
	ResultNCA: "Phát hiện không phù hợp loại A",
	ResultNCB: "Phát hiện không phù hợp loại B",
	ResultPI:  "Cơ hội cải tiến",
	ResultCM:  "Phù hợp",
}

// Valid reports whether r is one of the four fixed categories
func (r Result) Valid() bool {
	_, ok := resultLabels[r]
	return ok
}

// Label returns the user-facing description of the result
func (r Result) Label() string {
	return resultLabels[r]
}

// ParseResult normalizes user input into a Result
func ParseResult(s string) (Result, error) {
	r := Result(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
	return r, nil
}

var (
	ErrInvalidResult = errors.New("kết quả đánh giá không hợp lệ")
	ErrMissingField  = errors.New("thiếu trường bắt buộc")
	ErrMalformedRow  = errors.New("dòng dữ liệu không hợp lệ")
	ErrInvalidRole   = errors.New("vai trò không hợp lệ")
)

// Tally counts findings per result category
type Tally struct {
	NCA int `json:"NCA"`
	NCB int `json:"NCB"`
	PI  int `json:"PI"`
	CM  int `json:"CM"`
}

// Add counts one finding. Values outside the fixed categories are ignored.
func (t *Tally) Add(r Result) {
	switch r {
	case ResultNCA:
		t.NCA++
	case ResultNCB:
		t.NCB++
	case ResultPI:
		t.PI++
	case ResultCM:
		t.CM++
	}
}

// Count returns the number of findings recorded for r
func (t Tally) Count(r Result) int {
	switch r {
	case ResultNCA:
		return t.NCA
	case ResultNCB:
		return t.NCB
	case ResultPI:
		return t.PI
	case ResultCM:
		return t.CM
	}
	return 0
}

// Total returns the number of counted findings
func (t Tally) Total() int {
	return t.NCA + t.NCB + t.PI + t.CM
}

// TallyNotes counts the results of persisted notes
func TallyNotes(notes []AuditNote) Tally {
	var t Tally
	for _, n := range notes {
		t.Add(n.Result)
	}
	return t
}

// Time layouts shared by session state and persisted rows
const (
	TimestampLayout = "2006-01-02 15:04:05"
	AuditTimeLayout = "2006-01-02 15:04"
)

// Notes table column order
var NoteColumns = []string{
	"company", "address", "department", "person", "audit_time",
	"frame_id", "panel_id", "clause", "clause_name", "requirements",
	"evidence", "image_url", "result", "auditor", "timestamp",
}

// AuditNote is one persisted finding. Rows are append-only and carry no
// stable key; position in the table is their only identity.
type AuditNote struct {
	Company      string `json:"company"`
	Address      string `json:"address"`
	Department   string `json:"department"`
	Person       string `json:"person"`
	AuditTime    string `json:"audit_time"`
	FrameID      string `json:"frame_id"`
	PanelID      string `json:"panel_id"`
	Clause       string `json:"clause"`
	ClauseName   string `json:"clause_name"`
	Requirements string `json:"requirements"`
	Evidence     string `json:"evidence"`
	ImageURL     string `json:"image_url"`
	Result       Result `json:"result"`
	Auditor      string `json:"auditor"`
	Timestamp    string `json:"timestamp"`
}

// Validate checks the fields every persisted note must carry
func (n AuditNote) Validate() error {
	required := []struct{ name, value string }{
		{"company", n.Company},
		{"frame_id", n.FrameID},
		{"panel_id", n.PanelID},
		{"clause", n.Clause},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	if !n.Result.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResult, string(n.Result))
	}
	return nil
}

// Row serializes the note in NoteColumns order
func (n AuditNote) Row() []string {
	return []string{
		n.Company, n.Address, n.Department, n.Person, n.AuditTime,
		n.FrameID, n.PanelID, n.Clause, n.ClauseName, n.Requirements,
		n.Evidence, n.ImageURL, string(n.Result), n.Auditor, n.Timestamp,
	}
}

// AuditNoteFromRow parses a row keyed by lowercased header names
func AuditNoteFromRow(row map[string]string) (AuditNote, error) {
	n := AuditNote{
		Company:      row["company"],
		Address:      row["address"],
		Department:   row["department"],
		Person:       row["person"],
		AuditTime:    row["audit_time"],
		FrameID:      row["frame_id"],
		PanelID:      row["panel_id"],
		Clause:       row["clause"],
		ClauseName:   row["clause_name"],
		Requirements: row["requirements"],
		Evidence:     row["evidence"],
		ImageURL:     row["image_url"],
		Result:       Result(strings.TrimSpace(row["result"])),
		Auditor:      row["auditor"],
		Timestamp:    row["timestamp"],
	}
	if err := n.Validate(); err != nil {
		return n, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return n, nil
}
