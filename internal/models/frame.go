package models

import "encoding/json"

// Inbound frame types.
const (
	FrameFlowchartUpdate = "flowchart_update"
	FrameComment         = "comment"
	FrameTeamAction      = "team_action"
)

// Outbound frame types.
const (
	FrameNewComment = "new_comment"
	FrameTeamUpdate = "team_update"
	FrameAck        = "ack"
)

// Team action kinds carried by a team_action frame.
const (
	ActionJoinTeam  = "join_team"
	ActionLeaveTeam = "leave_team"
)

// Frame is the wire envelope exchanged over a relay connection.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// FlowchartUpdateData is the body of a flowchart_update frame.
type FlowchartUpdateData struct {
	FlowchartID string          `json:"flowchartId"`
	UserID      string          `json:"userId"`
	TeamID      string          `json:"teamId"`
	Flowchart   json.RawMessage `json:"flowchart"`
}

// CommentData is the body of an inbound comment frame.
type CommentData struct {
	NodeID  string `json:"nodeId"`
	UserID  string `json:"userId"`
	TeamID  string `json:"teamId"`
	Content string `json:"content"`
}

// TeamActionData is the body of a team_action frame and is echoed back to
// members as the team_update payload.
type TeamActionData struct {
	ActionType string `json:"actionType"`
	TeamID     string `json:"teamId"`
	UserID     string `json:"userId"`
	Role       string `json:"role,omitempty"`
}

// Ack is the per-frame acknowledgment returned to the originating client.
type Ack struct {
	Status string `json:"status"`
}
