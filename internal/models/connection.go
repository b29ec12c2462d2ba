package models

import "time"

// Connection represents one live duplex session tracked by the registry.
// UserID is empty until the client presents an authenticated identity.
type Connection struct {
	ConnectionID  string    `db:"connection_id" json:"connectionId"`
	UserID        string    `db:"user_id" json:"userId,omitempty"`
	EstablishedAt time.Time `db:"established_at" json:"establishedAt"`
}

// TeamMembership pairs a user with a team. Membership outlives connectivity:
// it is only removed by an explicit leave action.
type TeamMembership struct {
	TeamID   string    `db:"team_id" json:"teamId"`
	UserID   string    `db:"user_id" json:"userId"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

// Membership roles.
const (
	RoleMember = "member"
	RoleLead   = "lead"
)
