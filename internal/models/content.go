package models

import (
	"encoding/json"
	"time"
)

// Flowchart holds the persisted state of one collaborative flowchart.
// Writes are keyed by FlowchartID; last write wins.
type Flowchart struct {
	FlowchartID string          `db:"flowchart_id" json:"flowchartId"`
	UserID      string          `db:"user_id" json:"userId"`
	Document    json.RawMessage `db:"document" json:"flowchart"`
	UpdatedAt   time.Time       `db:"updated_at" json:"timestamp"`
}

// Comment is a persisted comment on a flowchart node.
type Comment struct {
	NodeID    string    `db:"node_id" json:"nodeId"`
	CommentID string    `db:"comment_id" json:"commentId"`
	UserID    string    `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}
