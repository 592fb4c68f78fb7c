package duckdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository("") // in-memory
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestListNotesScopedToUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.SaveNote(ctx, domain.Note{
		ID: "n1", UserID: "u1", Title: "Deploy runbook", Body: "Canary first.",
		Tags: []string{"ops", "deploy"}, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.SaveNote(ctx, domain.Note{
		ID: "n2", UserID: "u2", Title: "Not yours", Body: "Private.",
		CreatedAt: now, UpdatedAt: now,
	}))

	notes, err := repo.ListNotes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n1", notes[0].ID)
	assert.Equal(t, "Deploy runbook", notes[0].Title)
	assert.Equal(t, []string{"ops", "deploy"}, notes[0].Tags)

	notes, err = repo.ListNotes(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestListNotesOrdersByUpdatedAtDesc(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveNote(ctx, domain.Note{
		ID: "old", UserID: "u1", Title: "Old", Body: "x", CreatedAt: base, UpdatedAt: base,
	}))
	require.NoError(t, repo.SaveNote(ctx, domain.Note{
		ID: "new", UserID: "u1", Title: "New", Body: "x", CreatedAt: base, UpdatedAt: base.Add(time.Hour),
	}))

	notes, err := repo.ListNotes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "new", notes[0].ID)
	assert.Equal(t, "old", notes[1].ID)
}

func TestSaveNoteReplacesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	note := domain.Note{ID: "n1", UserID: "u1", Title: "v1", Body: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.SaveNote(ctx, note))
	note.Title = "v2"
	require.NoError(t, repo.SaveNote(ctx, note))

	notes, err := repo.ListNotes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "v2", notes[0].Title)
}

func TestListCorpusDocumentsVisibility(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.SaveCorpus(ctx, "c-owned", "u1", "My KB"))
	require.NoError(t, repo.SaveCorpus(ctx, "c-subscribed", "u2", "Team KB"))
	require.NoError(t, repo.SaveCorpus(ctx, "c-other", "u3", "Unrelated KB"))
	require.NoError(t, repo.Subscribe(ctx, "c-subscribed", "u1"))

	docs := []struct {
		id, corpus, status string
	}{
		{"d-owned", "c-owned", "approved"},
		{"d-subscribed", "c-subscribed", "approved"},
		{"d-pending", "c-owned", "pending"},
		{"d-other", "c-other", "approved"},
	}
	for _, d := range docs {
		require.NoError(t, repo.SaveCorpusDocument(ctx, domain.CorpusDocument{
			ID: d.id, CorpusID: d.corpus, Title: d.id, Body: "body", PublishedAt: now,
		}, d.status))
	}

	visible, err := repo.ListCorpusDocuments(ctx, "u1")
	require.NoError(t, err)

	ids := make([]string, 0, len(visible))
	for _, d := range visible {
		ids = append(ids, d.ID)
	}
	// Owned and subscribed approved articles only: no pending, no foreign.
	assert.ElementsMatch(t, []string{"d-owned", "d-subscribed"}, ids)
}

func TestListCorpusDocumentsEmptyForUnknownUser(t *testing.T) {
	repo := newTestRepo(t)

	docs, err := repo.ListCorpusDocuments(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
