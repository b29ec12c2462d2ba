package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"debate-relay/internal/models"
)

// CommentRepository persists node comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, nodeID, userID, content string) (models.Comment, error)
}

// CommentRepo is a sqlx implementation of CommentRepository.
type CommentRepo struct {
	db *sqlx.DB
}

// NewCommentRepo constructs a CommentRepo.
func NewCommentRepo(db *sqlx.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// CreateComment stores a comment under a freshly generated comment id.
func (r *CommentRepo) CreateComment(ctx context.Context, nodeID, userID, content string) (models.Comment, error) {
	var cmt models.Comment
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO comments (node_id, comment_id, user_id, content) VALUES ($1, $2, $3, $4)
         RETURNING node_id, comment_id, user_id, content, created_at`,
		nodeID, uuid.NewString(), userID, content).
		Scan(&cmt.NodeID, &cmt.CommentID, &cmt.UserID, &cmt.Content, &cmt.CreatedAt)
	return cmt, err
}
