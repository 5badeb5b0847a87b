package sheets

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Decision values for a reviewed article.
const (
	DecisionApprove = "aprobar"
	DecisionReject  = "rechazar"
	DecisionModify  = "modificar"
)

// ValidDecision reports whether d is one of the accepted decisions.
func ValidDecision(d string) bool {
	return d == DecisionApprove || d == DecisionReject || d == DecisionModify
}

// Review is a recorded decision on a sheet row.
type Review struct {
	Row       int       `json:"row"`
	Decision  string    `json:"decision"`
	Comment   string    `json:"comment,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}

// ReviewStore persists editorial decisions in SQLite. The published
// sheet cannot be written back to, so the decisions live here and the
// queue is filtered against them.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore creates a review store, running migrations on first
// use.
func NewReviewStore(db *sql.DB) (*ReviewStore, error) {
	s := &ReviewStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate reviews: %w", err)
	}
	return s, nil
}

func (s *ReviewStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS editorial_reviews (
			row        INTEGER PRIMARY KEY,
			decision   TEXT NOT NULL,
			comment    TEXT NOT NULL DEFAULT '',
			decided_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Mark records a decision for a sheet row. A second decision on the
// same row replaces the first.
func (s *ReviewStore) Mark(row int, decision, comment string) error {
	if !ValidDecision(decision) {
		return fmt.Errorf("invalid decision %q", decision)
	}
	_, err := s.db.Exec(`
		INSERT INTO editorial_reviews (row, decision, comment, decided_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (row) DO UPDATE SET decision = excluded.decision,
			comment = excluded.comment, decided_at = excluded.decided_at
	`, row, decision, comment, time.Now().UTC())
	return err
}

// Reviewed returns the set of rows that already have a decision.
func (s *ReviewStore) Reviewed() (map[int]Review, error) {
	rows, err := s.db.Query(`SELECT row, decision, comment, decided_at FROM editorial_reviews`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make(map[int]Review)
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.Row, &r.Decision, &r.Comment, &r.DecidedAt); err != nil {
			return nil, err
		}
		reviews[r.Row] = r
	}
	return reviews, rows.Err()
}

// Queue combines the sheet client and the review store into the view
// the agent works with.
type Queue struct {
	client  *Client
	reviews *ReviewStore
}

// NewQueue creates an editorial queue over the given client and store.
func NewQueue(client *Client, reviews *ReviewStore) *Queue {
	return &Queue{client: client, reviews: reviews}
}

// Pending returns the sheet articles without a recorded decision.
func (q *Queue) Pending(ctx context.Context, maxRows int) ([]Article, error) {
	articles, err := q.client.Articles(ctx, maxRows)
	if err != nil {
		return nil, err
	}
	reviewed, err := q.reviews.Reviewed()
	if err != nil {
		return nil, err
	}

	var pending []Article
	for _, a := range articles {
		if _, done := reviewed[a.Row]; !done {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

// All returns every sheet article together with its decision, when
// one exists.
func (q *Queue) All(ctx context.Context, maxRows int) ([]Article, map[int]Review, error) {
	articles, err := q.client.Articles(ctx, maxRows)
	if err != nil {
		return nil, nil, err
	}
	reviewed, err := q.reviews.Reviewed()
	if err != nil {
		return nil, nil, err
	}
	return articles, reviewed, nil
}

// Mark records a decision for a sheet row.
func (q *Queue) Mark(row int, decision, comment string) error {
	return q.reviews.Mark(row, decision, comment)
}
