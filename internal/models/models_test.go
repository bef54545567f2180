package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	r, err := ParseResult(" nca ")
	require.NoError(t, err)
	assert.Equal(t, ResultNCA, r)

	_, err = ParseResult("OK")
	assert.ErrorIs(t, err, ErrInvalidResult)

	assert.Equal(t, "Cơ hội cải tiến", ResultPI.Label())
}

func TestTally(t *testing.T) {
	var tally Tally
	for _, r := range []Result{ResultNCA, ResultPI, ResultPI, "bogus", ResultCM} {
		tally.Add(r)
	}
	assert.Equal(t, Tally{NCA: 1, PI: 2, CM: 1}, tally)
	assert.Equal(t, 4, tally.Total())
	assert.Equal(t, 2, tally.Count(ResultPI))
	assert.Equal(t, 0, tally.Count("bogus"))
}

func TestAuditNoteValidate(t *testing.T) {
	valid := AuditNote{Company: "Acme", FrameID: "1", PanelID: "1", Clause: "6.3", Result: ResultPI}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(n *AuditNote)
		want   error
	}{
		{"missing company", func(n *AuditNote) { n.Company = " " }, ErrMissingField},
		{"missing frame", func(n *AuditNote) { n.FrameID = "" }, ErrMissingField},
		{"missing panel", func(n *AuditNote) { n.PanelID = "" }, ErrMissingField},
		{"missing clause", func(n *AuditNote) { n.Clause = "" }, ErrMissingField},
		{"bad result", func(n *AuditNote) { n.Result = "X" }, ErrInvalidResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := valid
			tt.mutate(&n)
			assert.ErrorIs(t, n.Validate(), tt.want)
		})
	}
}

func TestAuditNoteRowOrder(t *testing.T) {
	n := AuditNote{Company: "Acme", FrameID: "1", PanelID: "2", Clause: "6.3", ClauseName: "Energy review", Result: ResultCM, Auditor: "a@x"}
	row := n.Row()
	require.Len(t, row, len(NoteColumns))

	keyed := make(map[string]string)
	for i, col := range NoteColumns {
		keyed[col] = row[i]
	}
	assert.Equal(t, "2", keyed["panel_id"])
	assert.Equal(t, "CM", keyed["result"])
	assert.Equal(t, "", keyed["image_url"])

	back, err := AuditNoteFromRow(keyed)
	require.NoError(t, err)
	assert.Equal(t, n, back)

	keyed["result"] = "maybe"
	_, err = AuditNoteFromRow(keyed)
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestParticipantValidate(t *testing.T) {
	p := Participant{Company: "Acme", FrameID: "1", FullName: "Lan", Position: "QA", Role: RoleCompany}
	require.NoError(t, p.Validate())

	p.Role = "visitor"
	assert.ErrorIs(t, p.Validate(), ErrInvalidRole)

	p.Role, p.Position = RoleAuditor, ""
	assert.ErrorIs(t, p.Validate(), ErrMissingField)

	assert.False(t, Person{FullName: "Lan"}.Complete())
	assert.True(t, Person{FullName: "Lan", Position: "QA"}.Complete())
}

func TestClauseTitle(t *testing.T) {
	title, ok := ClauseTitle("6.3")
	require.True(t, ok)
	assert.Equal(t, "Energy review", title)

	_, ok = ClauseTitle("11")
	assert.False(t, ok)

	all := Clauses()
	assert.Equal(t, "4", all[0].Number)
	assert.Equal(t, "10.2", all[len(all)-1].Number)
}
