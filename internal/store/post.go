package store

import (
	"database/sql"
	"fmt"
	"time"

	sqlite3 "modernc.org/sqlite/lib"
)

// Post is a feed entry. ImagePath is empty when no image is attached.
type Post struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	ImagePath string    `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PostRepository provides access to the feed.
type PostRepository struct {
	db *sql.DB
}

// Posts returns the post repository for this store.
func (s *Store) Posts() *PostRepository {
	return &PostRepository{db: s.db}
}

// Create inserts a post. The author must have an account.
func (r *PostRepository) Create(author, content, imagePath string) (*Post, error) {
	p := &Post{
		Author:    author,
		Content:   content,
		ImagePath: imagePath,
		CreatedAt: time.Now().UTC(),
	}

	image := sql.NullString{String: imagePath, Valid: imagePath != ""}
	result, err := r.db.Exec(
		`INSERT INTO posts (author, content, image_path, created_at) VALUES (?, ?, ?, ?)`,
		p.Author, p.Content, image, p.CreatedAt,
	)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return nil, fmt.Errorf("post by %q: %w", author, ErrUnknownUser)
		}
		return nil, err
	}

	if p.ID, err = result.LastInsertId(); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns up to limit posts, newest first. A limit of 0 returns all.
func (r *PostRepository) List(limit int) ([]Post, error) {
	query := `SELECT id, author, content, image_path, created_at FROM posts ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(query, args...)
}

// ListByAuthor returns the posts written by author, newest first.
func (r *PostRepository) ListByAuthor(author string) ([]Post, error) {
	return r.query(
		`SELECT id, author, content, image_path, created_at FROM posts WHERE author = ? ORDER BY id DESC`,
		author,
	)
}

func (r *PostRepository) query(query string, args ...any) ([]Post, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		var content, image sql.NullString
		if err := rows.Scan(&p.ID, &p.Author, &content, &image, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Content = content.String
		p.ImagePath = image.String
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// AddPost publishes a post for author.
func (s *Store) AddPost(author, content, imagePath string) (*Post, error) {
	return s.Posts().Create(author, content, imagePath)
}

// ListPosts returns the whole feed, newest first.
func (s *Store) ListPosts() ([]Post, error) {
	return s.Posts().List(0)
}
