package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// Repository is the DuckDB-backed read side for notes and shared corpora.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the database at path and ensures the
// schema exists. An empty path opens an in-memory database.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	r := &Repository{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		body VARCHAR NOT NULL,
		tags VARCHAR DEFAULT '',
		created_at TIMESTAMP DEFAULT current_timestamp,
		updated_at TIMESTAMP DEFAULT current_timestamp
	);
	CREATE TABLE IF NOT EXISTS corpora (
		id VARCHAR PRIMARY KEY,
		owner_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL
	);
	CREATE TABLE IF NOT EXISTS corpus_documents (
		id VARCHAR PRIMARY KEY,
		corpus_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		body VARCHAR NOT NULL,
		author VARCHAR DEFAULT '',
		status VARCHAR DEFAULT 'pending',
		published_at TIMESTAMP DEFAULT current_timestamp
	);
	CREATE TABLE IF NOT EXISTS corpus_subscriptions (
		corpus_id VARCHAR NOT NULL,
		user_id VARCHAR NOT NULL,
		PRIMARY KEY (corpus_id, user_id)
	);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// ListNotes implements ports.NoteStore.
func (r *Repository) ListNotes(ctx context.Context, userID string) ([]domain.Note, error) {
	query := `SELECT id, user_id, title, body, tags, created_at, updated_at
		FROM notes WHERE user_id = ? ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var tags string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &tags, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		if tags != "" {
			n.Tags = strings.Split(tags, ",")
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ListCorpusDocuments implements ports.CorpusStore: approved articles in
// knowledge bases the user owns or is subscribed to.
func (r *Repository) ListCorpusDocuments(ctx context.Context, userID string) ([]domain.CorpusDocument, error) {
	query := `SELECT d.id, d.corpus_id, d.title, d.body, d.author, d.published_at
		FROM corpus_documents d
		JOIN corpora c ON c.id = d.corpus_id
		WHERE d.status = 'approved'
		  AND (c.owner_id = ? OR EXISTS (
			SELECT 1 FROM corpus_subscriptions s
			WHERE s.corpus_id = c.id AND s.user_id = ?))
		ORDER BY d.published_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.CorpusDocument
	for rows.Next() {
		var d domain.CorpusDocument
		if err := rows.Scan(&d.ID, &d.CorpusID, &d.Title, &d.Body, &d.Author, &d.PublishedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SaveNote inserts or replaces a note. Used by seeding and tests; the agent
// core itself only reads.
func (r *Repository) SaveNote(ctx context.Context, n domain.Note) error {
	query := `INSERT OR REPLACE INTO notes (id, user_id, title, body, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Body, strings.Join(n.Tags, ","), n.CreatedAt, n.UpdatedAt)
	return err
}

// SaveCorpusDocument inserts or replaces a corpus article with the given
// approval status.
func (r *Repository) SaveCorpusDocument(ctx context.Context, d domain.CorpusDocument, status string) error {
	query := `INSERT OR REPLACE INTO corpus_documents (id, corpus_id, title, body, author, status, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.CorpusID, d.Title, d.Body, d.Author, status, d.PublishedAt)
	return err
}

// SaveCorpus inserts or replaces a knowledge base.
func (r *Repository) SaveCorpus(ctx context.Context, id, ownerID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO corpora (id, owner_id, name) VALUES (?, ?, ?)`, id, ownerID, name)
	return err
}

// Subscribe records a user's subscription to a knowledge base.
func (r *Repository) Subscribe(ctx context.Context, corpusID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO corpus_subscriptions (corpus_id, user_id) VALUES (?, ?)`, corpusID, userID)
	return err
}
