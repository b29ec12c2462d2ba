package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// MembershipRepository abstracts team membership persistence.
type MembershipRepository interface {
	MembersOf(ctx context.Context, teamID string) ([]string, error)
	Join(ctx context.Context, teamID, userID, role string) error
	Leave(ctx context.Context, teamID, userID string) error
}

// MembershipRepo is a sqlx implementation of MembershipRepository.
type MembershipRepo struct {
	db *sqlx.DB
}

// NewMembershipRepo constructs a MembershipRepo.
func NewMembershipRepo(db *sqlx.DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

// MembersOf returns the user ids belonging to the team. An unknown team is
// indistinguishable from an empty one.
func (r *MembershipRepo) MembersOf(ctx context.Context, teamID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM team_members WHERE team_id=$1`, teamID)
	return ids, err
}

// Join upserts a membership record; rejoining updates the role.
func (r *MembershipRepo) Join(ctx context.Context, teamID, userID, role string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)
         ON CONFLICT (team_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
		teamID, userID, role)
	return err
}

// Leave deletes the membership record if present.
func (r *MembershipRepo) Leave(ctx context.Context, teamID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE team_id=$1 AND user_id=$2`, teamID, userID)
	return err
}
