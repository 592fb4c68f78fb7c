package domain

import "time"

// Note is one personal note owned by a user.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CorpusDocument is one approved article in a shared knowledge base.
type CorpusDocument struct {
	ID          string    `json:"id"`
	CorpusID    string    `json:"corpus_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// RankedDocument is one hit from the semantic-ranking capability.
type RankedDocument struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Body  string  `json:"body"`
	Score float64 `json:"score"`
}
