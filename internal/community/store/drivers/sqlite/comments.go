package sqlite

import (
	"context"
	"database/sql"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
)

type commentsRepo struct {
	q querier
}

func (r *commentsRepo) GetCommentByID(ctx context.Context, id string) (domain.Comment, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, post_id, author_id, parent_id, body, created_at, updated_at
		FROM comments WHERE id = ?`, id)

	var c domain.Comment
	var parentID sql.NullString
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &parentID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Comment{}, mapNotFound(err)
	}
	c.ParentID = mapNullString(parentID)
	return c, nil
}

func (r *commentsRepo) CreateComment(ctx context.Context, c domain.Comment) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, author_id, parent_id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.AuthorID, mapStringNull(c.ParentID), c.Body,
		c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return mapConstraint(err)
}

func (r *commentsRepo) DeleteReplies(ctx context.Context, commentID string) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM comments WHERE parent_id = ?`, commentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *commentsRepo) DeleteComment(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}

func (r *commentsRepo) CountReplies(ctx context.Context, commentID string) (int64, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE parent_id = ?`, commentID)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
