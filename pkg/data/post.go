package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mchmarny/cloutcheck/pkg/model"
)

const (
	deletePostsSQL = `DELETE FROM post WHERE handle = ?`
	insertPostSQL  = `INSERT INTO post (handle, position, id, kind, published_at, likes, comments_count, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	selectPostsSQL = `SELECT body FROM post WHERE handle = ? ORDER BY position`
)

// SavePosts replaces the post table of a creator.
func (s *Store) SavePosts(ctx context.Context, handle string, posts []model.Post) error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}
	if handle == "" {
		return errors.New("handle required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(deletePostsSQL), handle); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear posts of %s: %w", handle, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertPostSQL))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare post insert statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range posts {
		b, err := json.Marshal(p)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to encode post %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, handle, i, p.ID, string(p.Kind), publishedAt(p.PublishedAt),
			p.Likes, p.CommentsCount, string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}
	return nil
}

// GetPosts returns the post table of a creator in saved order.
func (s *Store) GetPosts(ctx context.Context, handle string) ([]model.Post, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(selectPostsSQL), handle)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts of %s: %w", handle, err)
	}
	defer rows.Close()

	list := make([]model.Post, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		var p model.Post
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("failed to decode post: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return list, nil
}

func publishedAt(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
