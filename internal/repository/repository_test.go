package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/sheets"
)

func newRepos(t *testing.T) (*Repositories, *sheets.MemoryStore) {
	t.Helper()
	store := sheets.NewMemoryStore()
	require.NoError(t, sheets.EnsureSchemas(context.Background(), store))
	return NewRepositories(store), store
}

func TestAuditorRepository(t *testing.T) {
	ctx := context.Background()
	repos, store := newRepos(t)

	require.NoError(t, repos.Auditor.Create(ctx, &models.Auditor{
		FullName: "Nguyễn Văn A", Position: "Lead", Email: "A@Example.com", Password: "hash",
	}))
	require.NoError(t, repos.Auditor.Create(ctx, &models.Auditor{
		FullName: "Trần B", Position: "Member", Email: "b@example.com", Password: "hash-b",
	}))

	a, err := repos.Auditor.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Nguyễn Văn A", a.FullName)

	_, err = repos.Auditor.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repos.Auditor.UpdatePassword(ctx, "b@example.com", "new-hash"))
	require.NoError(t, repos.Auditor.UpdateLastLogin(ctx, "b@example.com", "2024-05-01 08:00:00"))

	b, err := repos.Auditor.FindByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", b.Password)
	assert.Equal(t, "2024-05-01 08:00:00", b.LastLogin)

	a, err = repos.Auditor.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", a.Password, "other rows untouched")

	n, err := repos.Auditor.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, store.RowCount(sheets.TableAuditors))

	err = repos.Auditor.Create(ctx, &models.Auditor{Email: "c@example.com"})
	assert.ErrorIs(t, err, models.ErrMissingField)
}

func TestNoteRepository(t *testing.T) {
	ctx := context.Background()
	repos, store := newRepos(t)

	note := models.AuditNote{Company: "Acme", FrameID: "1", PanelID: "1", Clause: "6.3", Result: models.ResultPI}
	require.NoError(t, repos.Note.Append(ctx, note))

	other := note
	other.Company, other.FrameID, other.Result = "Beta", "2", models.ResultNCA
	require.NoError(t, repos.Note.Append(ctx, other))

	bad := note
	bad.Result = "XX"
	assert.ErrorIs(t, repos.Note.Append(ctx, bad), models.ErrInvalidResult)
	assert.Equal(t, 2, store.RowCount(sheets.TableNotes))

	// A row written by hand with a broken result is skipped on read.
	require.NoError(t, store.AppendRow(ctx, sheets.TableNotes, []string{"Acme", "", "", "", "", "1", "1", "4.1", "", "", "", "", "??", "", ""}))

	acme, err := repos.Note.List(ctx, NoteFilter{Company: "Acme"})
	require.NoError(t, err)
	require.Len(t, acme, 1)
	assert.Equal(t, models.ResultPI, acme[0].Result)

	all, err := repos.Note.List(ctx, NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	companies, err := repos.Note.Companies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Beta"}, companies)
}

func TestParticipantRepository(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	exists, err := repos.Participant.Exists(ctx, "Acme", "1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repos.Participant.AppendAll(ctx, []models.Participant{
		{Company: "Acme", FrameID: "1", FullName: "Lan", Position: "QA", Role: models.RoleCompany},
		{Company: "Acme", FrameID: "1", FullName: "Minh", Position: "Lead", Role: models.RoleAuditor},
	}))

	exists, err = repos.Participant.Exists(ctx, "Acme", "1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repos.Participant.Exists(ctx, "Acme", "2")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repos.Participant.AppendAll(ctx, []models.Participant{
		{Company: "Acme", FrameID: "2", FullName: "Ok", Position: "QA", Role: models.RoleCompany},
		{Company: "Acme", FrameID: "2", FullName: "Bad", Position: "QA", Role: "guest"},
	})
	assert.ErrorIs(t, err, models.ErrInvalidRole)

	list, err := repos.Participant.List(ctx, NoteFilter{Company: "Acme"})
	require.NoError(t, err)
	assert.Len(t, list, 2, "a rejected batch writes nothing")
}
