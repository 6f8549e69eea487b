// Package postgres implements storage.Store backed by PostgreSQL.
//
// Attachments and link metadata are stored as JSONB columns; everything
// else maps to native columns. Listing uses keyset pagination on
// created_at so the feed never pays for deep offsets.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/storage"
)

// Store implements storage.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// New returns a Store backed by the given pgx connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewFromDSN creates a connection pool from a DSN string, ensures the
// schema exists, and returns a new Store.
func NewFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return New(pool), nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ---------------------------------------------------------------------------
// UserStore
// ---------------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, user postit.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO post_it__users (id, username, password, is_first_time, role, is_restricted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.Password, user.IsFirstTime, user.Role, user.IsRestricted, user.CreatedAt)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (postit.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, password, is_first_time, role, is_restricted, created_at
		 FROM post_it__users WHERE id = $1`, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (postit.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, password, is_first_time, role, is_restricted, created_at
		 FROM post_it__users WHERE username = $1`, username))
}

func (s *Store) scanUser(row pgx.Row) (postit.User, error) {
	var u postit.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.IsFirstTime, &u.Role, &u.IsRestricted, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return postit.User{}, storage.ErrNotFound
	}
	if err != nil {
		return postit.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, user postit.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE post_it__users
		 SET username = $2, password = $3, is_first_time = $4, role = $5, is_restricted = $6
		 WHERE id = $1`,
		user.ID, user.Username, user.Password, user.IsFirstTime, user.Role, user.IsRestricted)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM post_it__users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]postit.User, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM post_it__users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, username, password, is_first_time, role, is_restricted, created_at
		 FROM post_it__users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []postit.User
	for rows.Next() {
		var u postit.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.IsFirstTime, &u.Role, &u.IsRestricted, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// ---------------------------------------------------------------------------
// PostStore
// ---------------------------------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, post postit.Post) error {
	metadata, attachments, err := encodePostJSON(post)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO post_it__posts (id, content, metadata, attachments, status, created_at, updated_at, author_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.Content, metadata, attachments, post.Status, post.CreatedAt, post.UpdatedAt, post.AuthorID)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	return err
}

func (s *Store) GetPost(ctx context.Context, id string) (postit.Post, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, content, metadata, attachments, status, created_at, updated_at, author_id
		 FROM post_it__posts WHERE id = $1`, id)
	return scanPost(row)
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter) ([]postit.Post, error) {
	query := `SELECT id, content, metadata, attachments, status, created_at, updated_at, author_id
		 FROM post_it__posts WHERE 1=1`
	args := []any{}
	n := 0

	if filter.AuthorID != "" {
		n++
		query += fmt.Sprintf(" AND author_id = $%d", n)
		args = append(args, filter.AuthorID)
	}
	if filter.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, filter.Status)
	}
	if !filter.Cursor.IsZero() {
		n++
		query += fmt.Sprintf(" AND created_at < $%d", n)
		args = append(args, filter.Cursor)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []postit.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *Store) CountPostsByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM post_it__posts WHERE author_id = $1`, authorID).Scan(&count)
	return count, err
}

func (s *Store) UpdatePost(ctx context.Context, post postit.Post) error {
	metadata, attachments, err := encodePostJSON(post)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE post_it__posts
		 SET content = $2, metadata = $3, attachments = $4, status = $5, updated_at = $6
		 WHERE id = $1`,
		post.ID, post.Content, metadata, attachments, post.Status, post.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM post_it__posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) MassUpdateStatus(ctx context.Context, from, to postit.PostStatus) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE post_it__posts SET status = $2, updated_at = NOW() WHERE status = $1`,
		from, to)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeletePostsByStatus(ctx context.Context, status postit.PostStatus) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM post_it__posts WHERE status = $1`, status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// JSON column helpers
// ---------------------------------------------------------------------------

func encodePostJSON(post postit.Post) (metadata []byte, attachments []byte, err error) {
	if post.Metadata != nil {
		metadata, err = json.Marshal(post.Metadata)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding post metadata: %w", err)
		}
	}
	if post.Attachments == nil {
		post.Attachments = []postit.Attachment{}
	}
	attachments, err = json.Marshal(post.Attachments)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding post attachments: %w", err)
	}
	return metadata, attachments, nil
}

func scanPost(row pgx.Row) (postit.Post, error) {
	var p postit.Post
	var metadata, attachments []byte
	err := row.Scan(&p.ID, &p.Content, &metadata, &attachments, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.AuthorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return postit.Post{}, storage.ErrNotFound
	}
	if err != nil {
		return postit.Post{}, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return postit.Post{}, fmt.Errorf("decoding post metadata: %w", err)
		}
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &p.Attachments); err != nil {
			return postit.Post{}, fmt.Errorf("decoding post attachments: %w", err)
		}
	}
	return p, nil
}
