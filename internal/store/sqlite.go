// SQLite-backed document store.
//
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout,
//     foreign keys), creating the parent directory when needed.
//   - Bootstrapping the users/posts schema (idempotent DDL).
//   - User and post operations with hand-written SQL; tags are stored as a
//     JSON-encoded text column, timestamps as RFC3339 strings.
//
// The view counter bump is a single UPDATE, so concurrent readers of the
// same post never lose an increment.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite owns the database handle and hands out per-collection stores.
type SQLite struct {
	db *sql.DB
}

// Open opens (and creates if missing) the SQLite database at dsn.
func Open(dsn string) (*SQLite, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Bootstrap creates the schema if it does not exist yet.
func (s *SQLite) Bootstrap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id            TEXT PRIMARY KEY,
            full_name     TEXT NOT NULL,
            email         TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            avatar_url    TEXT NOT NULL DEFAULT '',
            created_at    TEXT NOT NULL,
            updated_at    TEXT NOT NULL
        );
        CREATE TABLE IF NOT EXISTS posts (
            id          TEXT PRIMARY KEY,
            title       TEXT NOT NULL,
            text        TEXT NOT NULL,
            tags        TEXT NOT NULL DEFAULT '[]',
            views_count INTEGER NOT NULL DEFAULT 0,
            user_id     TEXT NOT NULL REFERENCES users(id),
            image_url   TEXT NOT NULL DEFAULT '',
            created_at  TEXT NOT NULL,
            updated_at  TEXT NOT NULL
        );`)
	if err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}

// Users returns the user collection.
func (s *SQLite) Users() Users { return &sqliteUsers{db: s.db} }

// Posts returns the post collection.
func (s *SQLite) Posts() Posts { return &sqlitePosts{db: s.db} }

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

/* ------------------------------- users ---------------------------------- */

type sqliteUsers struct {
	db *sql.DB
}

// Save inserts a new user row. A duplicate email violates the unique index.
func (s *sqliteUsers) Save(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, full_name, email, password_hash, avatar_url, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.AvatarURL,
		u.CreatedAt.UTC().Format(time.RFC3339), u.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *sqliteUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, password_hash, avatar_url, created_at, updated_at
		 FROM users WHERE email=?`, email)
	return scanUser(row)
}

func (s *sqliteUsers) FindByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, password_hash, avatar_url, created_at, updated_at
		 FROM users WHERE id=?`, id)
	return scanUser(row)
}

// scanUser converts a *sql.Row into a User.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created, updated string
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.AvatarURL, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = mustParse(created)
	u.UpdatedAt = mustParse(updated)
	return &u, nil
}

/* ------------------------------- posts ---------------------------------- */

type sqlitePosts struct {
	db *sql.DB
}

const postColumns = `p.id, p.title, p.text, p.tags, p.views_count, p.image_url,
        p.created_at, p.updated_at,
        u.id, u.full_name, u.email, u.avatar_url, u.created_at, u.updated_at`

// Save inserts a new post row.
func (s *sqlitePosts) Save(ctx context.Context, p *Post) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, text, tags, views_count, user_id, image_url, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Title, p.Text, string(tags), p.ViewsCount, p.UserID, p.ImageURL,
		p.CreatedAt.UTC().Format(time.RFC3339), p.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

// Find returns all posts in insertion order with authors embedded.
func (s *sqlitePosts) Find(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+postColumns+`
        FROM posts p JOIN users u ON u.id = p.user_id
        ORDER BY p.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// FindOneAndIncViews bumps the view counter and returns the updated post.
func (s *sqlitePosts) FindOneAndIncViews(ctx context.Context, id string) (*Post, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET views_count = views_count + 1 WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT `+postColumns+`
        FROM posts p JOIN users u ON u.id = p.user_id
        WHERE p.id=?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanPost(rows)
}

// UpdateOne replaces the post's mutable fields, reassigning the author.
// A missing id affects zero rows and is not reported as an error.
func (s *sqlitePosts) UpdateOne(ctx context.Context, id string, upd PostUpdate) error {
	if upd.Tags == nil {
		upd.Tags = []string{}
	}
	tags, err := json.Marshal(upd.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE posts SET title=?, text=?, tags=?, image_url=?, user_id=?, updated_at=?
		 WHERE id=?`,
		upd.Title, upd.Text, string(tags), upd.ImageURL, upd.UserID,
		time.Now().UTC().Format(time.RFC3339), id)
	return err
}

// FindByIDAndDelete removes the post or reports ErrNotFound.
func (s *sqlitePosts) FindByIDAndDelete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanPost converts the joined post+author row into a Post.
func scanPost(rows *sql.Rows) (*Post, error) {
	var p Post
	var u User
	var tags, pCreated, pUpdated, uCreated, uUpdated string
	if err := rows.Scan(
		&p.ID, &p.Title, &p.Text, &tags, &p.ViewsCount, &p.ImageURL, &pCreated, &pUpdated,
		&u.ID, &u.FullName, &u.Email, &u.AvatarURL, &uCreated, &uUpdated,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for post %s: %w", p.ID, err)
	}
	// A JSON null column decodes to a nil slice; tags are always an array.
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = mustParse(pCreated)
	p.UpdatedAt = mustParse(pUpdated)
	u.CreatedAt = mustParse(uCreated)
	u.UpdatedAt = mustParse(uUpdated)
	p.User = &u
	p.UserID = u.ID
	return &p, nil
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
