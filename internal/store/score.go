package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "modernc.org/sqlite/lib"
)

// Score is the result of one finished snake game.
type Score struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Score     int           `json:"score"`
	Status    string        `json:"status"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// ScoreRepository records and ranks game results.
type ScoreRepository struct {
	db *sql.DB
}

// Scores returns the score repository for this store.
func (s *Store) Scores() *ScoreRepository {
	return &ScoreRepository{db: s.db}
}

// Record inserts sc, assigning an ID and timestamp when they are unset.
func (r *ScoreRepository) Record(sc *Score) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO scores (id, email, score, status, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.Email, sc.Score, sc.Status, sc.Duration.Milliseconds(), sc.CreatedAt,
	)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return fmt.Errorf("score for %q: %w", sc.Email, ErrUnknownUser)
		}
		return err
	}
	return nil
}

// Top returns the n best scores, highest first. Ties go to the earlier game.
func (r *ScoreRepository) Top(n int) ([]Score, error) {
	if n <= 0 {
		n = 10
	}
	return r.query(
		`SELECT id, email, score, status, duration_ms, created_at
		 FROM scores ORDER BY score DESC, created_at ASC LIMIT ?`,
		n,
	)
}

// ForUser returns every score recorded for email, newest first.
func (r *ScoreRepository) ForUser(email string) ([]Score, error) {
	return r.query(
		`SELECT id, email, score, status, duration_ms, created_at
		 FROM scores WHERE email = ? ORDER BY created_at DESC, rowid DESC`,
		email,
	)
}

// Best returns the highest score recorded for email, or 0 if none.
func (r *ScoreRepository) Best(email string) (int, error) {
	var best sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(score) FROM scores WHERE email = ?`, email).Scan(&best); err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

func (r *ScoreRepository) query(query string, args ...any) ([]Score, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		var sc Score
		var ms int64
		if err := rows.Scan(&sc.ID, &sc.Email, &sc.Score, &sc.Status, &ms, &sc.CreatedAt); err != nil {
			return nil, err
		}
		sc.Duration = time.Duration(ms) * time.Millisecond
		scores = append(scores, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
