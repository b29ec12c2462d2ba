package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"debate-relay/internal/models"
)

// ConnectionRepository is the durable registry of live connections.
type ConnectionRepository interface {
	Register(ctx context.Context, conn models.Connection) error
	Unregister(ctx context.Context, connectionID string) error
	ConnectionsForUser(ctx context.Context, userID string) ([]string, error)
}

// ConnectionRepo is a sqlx implementation of ConnectionRepository.
type ConnectionRepo struct {
	db *sqlx.DB
}

// NewConnectionRepo constructs a ConnectionRepo.
func NewConnectionRepo(db *sqlx.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

// Register records a live connection. Re-registering the same id overwrites
// the user binding and timestamp, so the call is idempotent.
func (r *ConnectionRepo) Register(ctx context.Context, conn models.Connection) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO connections (connection_id, user_id, established_at) VALUES ($1, $2, $3)
         ON CONFLICT (connection_id) DO UPDATE SET user_id = EXCLUDED.user_id, established_at = EXCLUDED.established_at`,
		conn.ConnectionID, conn.UserID, conn.EstablishedAt)
	return err
}

// Unregister deletes a connection record. Deleting an absent id is a no-op.
func (r *ConnectionRepo) Unregister(ctx context.Context, connectionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE connection_id=$1`, connectionID)
	return err
}

// ConnectionsForUser returns the ids of the user's live connections, empty
// when the user has none.
func (r *ConnectionRepo) ConnectionsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT connection_id FROM connections WHERE user_id=$1`, userID)
	return ids, err
}
