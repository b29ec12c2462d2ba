package relay

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"debate-relay/internal/models"
	"debate-relay/internal/observability"
	"debate-relay/internal/repositories"
)

// Config carries relay policy knobs.
type Config struct {
	// NotifyLeaver keeps the leaving member's own connection in the fanout
	// set of a leave_team action it initiated.
	NotifyLeaver bool
}

// Session interprets inbound frames over one connection's lifecycle and
// orchestrates persistence and fanout. Persistence always completes before
// any fanout is attempted.
type Session struct {
	connections repositories.ConnectionRepository
	memberships repositories.MembershipRepository
	flowcharts  repositories.FlowchartRepository
	comments    repositories.CommentRepository
	router      *Router
	cfg         Config
}

// NewSession constructs a Session.
func NewSession(
	connections repositories.ConnectionRepository,
	memberships repositories.MembershipRepository,
	flowcharts repositories.FlowchartRepository,
	comments repositories.CommentRepository,
	router *Router,
	cfg Config,
) *Session {
	return &Session{
		connections: connections,
		memberships: memberships,
		flowcharts:  flowcharts,
		comments:    comments,
		router:      router,
		cfg:         cfg,
	}
}

// HandleConnect registers the connection in the durable registry.
func (s *Session) HandleConnect(ctx context.Context, conn models.Connection) error {
	if err := s.connections.Register(ctx, conn); err != nil {
		observability.IncPersistenceError("register_connection")
		return &PersistenceError{Op: "register connection", Err: err}
	}
	return nil
}

// HandleDisconnect removes the connection from the registry. A failed delete
// is logged, not propagated: the reaping path will pick up the stale row.
func (s *Session) HandleDisconnect(ctx context.Context, connectionID string) {
	if err := s.connections.Unregister(ctx, connectionID); err != nil {
		log.Printf("session: unregister %s: %v", connectionID, err)
	}
}

// HandleMessage dispatches one inbound frame. Unrecognized frame types, and
// frames missing the team id the fanout would need, are accepted as no-ops.
// A persistence failure aborts the transition before any fanout.
func (s *Session) HandleMessage(ctx context.Context, connectionID string, frame models.Frame) error {
	switch frame.Type {
	case models.FrameFlowchartUpdate:
		return s.handleFlowchartUpdate(ctx, connectionID, frame.Data)
	case models.FrameComment:
		return s.handleComment(ctx, connectionID, frame.Data)
	case models.FrameTeamAction:
		return s.handleTeamAction(ctx, connectionID, frame.Data)
	default:
		return nil
	}
}

func (s *Session) handleFlowchartUpdate(ctx context.Context, connectionID string, data json.RawMessage) error {
	var upd models.FlowchartUpdateData
	if err := json.Unmarshal(data, &upd); err != nil || upd.TeamID == "" || upd.FlowchartID == "" {
		return nil
	}

	fc := models.Flowchart{
		FlowchartID: upd.FlowchartID,
		UserID:      upd.UserID,
		Document:    upd.Flowchart,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.flowcharts.SaveFlowchart(ctx, fc); err != nil {
		observability.IncPersistenceError("save_flowchart")
		return &PersistenceError{Op: "save flowchart", Err: err}
	}

	payload, err := json.Marshal(models.Frame{Type: models.FrameFlowchartUpdate, Data: upd.Flowchart})
	if err != nil {
		return nil
	}
	s.router.Fanout(ctx, upd.TeamID, connectionID, payload, false)
	return nil
}

func (s *Session) handleComment(ctx context.Context, connectionID string, data json.RawMessage) error {
	var in models.CommentData
	if err := json.Unmarshal(data, &in); err != nil || in.TeamID == "" || in.NodeID == "" {
		return nil
	}

	cmt, err := s.comments.CreateComment(ctx, in.NodeID, in.UserID, in.Content)
	if err != nil {
		observability.IncPersistenceError("create_comment")
		return &PersistenceError{Op: "create comment", Err: err}
	}

	body, err := json.Marshal(cmt)
	if err != nil {
		return nil
	}
	payload, err := json.Marshal(models.Frame{Type: models.FrameNewComment, Data: body})
	if err != nil {
		return nil
	}
	s.router.Fanout(ctx, in.TeamID, connectionID, payload, false)
	return nil
}

func (s *Session) handleTeamAction(ctx context.Context, connectionID string, data json.RawMessage) error {
	var action models.TeamActionData
	if err := json.Unmarshal(data, &action); err != nil || action.TeamID == "" || action.UserID == "" {
		return nil
	}

	includeOriginator := true
	switch action.ActionType {
	case models.ActionJoinTeam:
		role := action.Role
		if role == "" {
			role = models.RoleMember
		}
		if err := s.memberships.Join(ctx, action.TeamID, action.UserID, role); err != nil {
			observability.IncPersistenceError("join_team")
			return &PersistenceError{Op: "join team", Err: err}
		}
	case models.ActionLeaveTeam:
		if err := s.memberships.Leave(ctx, action.TeamID, action.UserID); err != nil {
			observability.IncPersistenceError("leave_team")
			return &PersistenceError{Op: "leave team", Err: err}
		}
		includeOriginator = s.cfg.NotifyLeaver
	default:
		return nil
	}

	body, err := json.Marshal(action)
	if err != nil {
		return nil
	}
	payload, err := json.Marshal(models.Frame{Type: models.FrameTeamUpdate, Data: body})
	if err != nil {
		return nil
	}
	// The member set is resolved after the mutation, so all members observe
	// the change, the actor included.
	s.router.Fanout(ctx, action.TeamID, connectionID, payload, includeOriginator)
	return nil
}
