package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"debate-relay/internal/models"
)

// FlowchartRepository persists flowchart documents.
type FlowchartRepository interface {
	SaveFlowchart(ctx context.Context, fc models.Flowchart) error
}

// FlowchartRepo is a sqlx implementation of FlowchartRepository.
type FlowchartRepo struct {
	db *sqlx.DB
}

// NewFlowchartRepo constructs a FlowchartRepo.
func NewFlowchartRepo(db *sqlx.DB) *FlowchartRepo {
	return &FlowchartRepo{db: db}
}

// SaveFlowchart overwrites the document keyed by flowchart id; last write wins.
func (r *FlowchartRepo) SaveFlowchart(ctx context.Context, fc models.Flowchart) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO flowcharts (flowchart_id, user_id, document, updated_at) VALUES ($1, $2, $3, $4)
         ON CONFLICT (flowchart_id) DO UPDATE SET user_id = EXCLUDED.user_id, document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		fc.FlowchartID, fc.UserID, []byte(fc.Document), fc.UpdatedAt)
	return err
}
