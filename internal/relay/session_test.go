package relay_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"debate-relay/internal/mocks"
	"debate-relay/internal/models"
	"debate-relay/internal/relay"
)

type sessionFixture struct {
	connections *mocks.ConnectionRepositoryMock
	memberships *mocks.MembershipRepositoryMock
	flowcharts  *mocks.FlowchartRepositoryMock
	comments    *mocks.CommentRepositoryMock
	sender      *mocks.SenderMock
	session     *relay.Session
}

func newSessionFixture(cfg relay.Config) *sessionFixture {
	f := &sessionFixture{
		connections: new(mocks.ConnectionRepositoryMock),
		memberships: new(mocks.MembershipRepositoryMock),
		flowcharts:  new(mocks.FlowchartRepositoryMock),
		comments:    new(mocks.CommentRepositoryMock),
		sender:      new(mocks.SenderMock),
	}
	router := relay.NewRouter(f.memberships, f.connections, f.sender)
	f.session = relay.NewSession(f.connections, f.memberships, f.flowcharts, f.comments, router, cfg)
	return f
}

func frameOfType(frameType string) interface{} {
	return mock.MatchedBy(func(payload []byte) bool {
		var frame models.Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			return false
		}
		return frame.Type == frameType
	})
}

func TestHandleConnectRegisters(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	conn := models.Connection{ConnectionID: "c1", UserID: "A", EstablishedAt: time.Now()}
	f.connections.On("Register", mock.Anything, conn).Return(nil).Once()

	require.NoError(t, f.session.HandleConnect(context.Background(), conn))
	f.connections.AssertExpectations(t)
}

func TestHandleConnectPersistenceFailure(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	f.connections.On("Register", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	err := f.session.HandleConnect(context.Background(), models.Connection{ConnectionID: "c1"})
	require.Error(t, err)

	var perr *relay.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, assert.AnError)
}

func TestHandleDisconnectSwallowsErrors(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	f.connections.On("Unregister", mock.Anything, "c1").Return(assert.AnError).Once()

	f.session.HandleDisconnect(context.Background(), "c1")
	f.connections.AssertExpectations(t)
}

func TestFlowchartUpdatePersistsThenFansOut(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	f.flowcharts.On("SaveFlowchart", mock.Anything, mock.MatchedBy(func(fc models.Flowchart) bool {
		return fc.FlowchartID == "F1" && fc.UserID == "A" && string(fc.Document) == `{"nodes":[]}`
	})).Return(nil).Once()

	f.memberships.On("MembersOf", mock.Anything, "T1").Return([]string{"A", "B"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "A").Return([]string{"cA1", "cA2"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "B").Return([]string{"cB1"}, nil).Once()
	f.sender.On("Send", "cA2", frameOfType(models.FrameFlowchartUpdate)).Return(nil).Once()
	f.sender.On("Send", "cB1", frameOfType(models.FrameFlowchartUpdate)).Return(nil).Once()

	frame := models.Frame{
		Type: models.FrameFlowchartUpdate,
		Data: json.RawMessage(`{"flowchartId":"F1","userId":"A","teamId":"T1","flowchart":{"nodes":[]}}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "cA1", frame))

	f.flowcharts.AssertExpectations(t)
	f.sender.AssertExpectations(t)
	f.sender.AssertNotCalled(t, "Send", "cA1", mock.Anything)
}

func TestFlowchartUpdatePersistenceFailureAbortsFanout(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	f.flowcharts.On("SaveFlowchart", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	frame := models.Frame{
		Type: models.FrameFlowchartUpdate,
		Data: json.RawMessage(`{"flowchartId":"F1","userId":"A","teamId":"T1","flowchart":{}}`),
	}
	err := f.session.HandleMessage(context.Background(), "cA1", frame)

	var perr *relay.PersistenceError
	require.ErrorAs(t, err, &perr)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.memberships.AssertNotCalled(t, "MembersOf", mock.Anything, mock.Anything)
}

func TestCommentFansOutToPeersOnly(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	stored := models.Comment{
		NodeID:    "N",
		CommentID: "generated-id",
		UserID:    "A",
		Content:   "looks good",
		CreatedAt: time.Now(),
	}
	f.comments.On("CreateComment", mock.Anything, "N", "A", "looks good").Return(stored, nil).Once()

	f.memberships.On("MembersOf", mock.Anything, "T1").Return([]string{"A", "B"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "A").Return([]string{"cA1", "cA2"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "B").Return([]string{"cB1"}, nil).Once()

	wantComment := mock.MatchedBy(func(payload []byte) bool {
		var frame models.Frame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.Type != models.FrameNewComment {
			return false
		}
		var cmt models.Comment
		if err := json.Unmarshal(frame.Data, &cmt); err != nil {
			return false
		}
		return cmt.NodeID == "N" && cmt.UserID == "A" && cmt.Content == "looks good" && cmt.CommentID == "generated-id"
	})
	f.sender.On("Send", "cA2", wantComment).Return(nil).Once()
	f.sender.On("Send", "cB1", wantComment).Return(nil).Once()

	frame := models.Frame{
		Type: models.FrameComment,
		Data: json.RawMessage(`{"nodeId":"N","userId":"A","teamId":"T1","content":"looks good"}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "cA1", frame))

	f.comments.AssertExpectations(t)
	f.sender.AssertExpectations(t)
	f.sender.AssertNotCalled(t, "Send", "cA1", mock.Anything)
}

func TestJoinTeamFanoutIncludesActor(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	f.memberships.On("Join", mock.Anything, "T1", "U", "member").Return(nil).Once()
	// Post-mutation set already contains the joiner.
	f.memberships.On("MembersOf", mock.Anything, "T1").Return([]string{"U", "B"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "U").Return([]string{"cU1"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "B").Return([]string{"cB1"}, nil).Once()

	f.sender.On("Send", "cU1", frameOfType(models.FrameTeamUpdate)).Return(nil).Once()
	f.sender.On("Send", "cB1", frameOfType(models.FrameTeamUpdate)).Return(nil).Once()

	frame := models.Frame{
		Type: models.FrameTeamAction,
		Data: json.RawMessage(`{"actionType":"join_team","teamId":"T1","userId":"U","role":"member"}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "cU1", frame))

	f.memberships.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestJoinTeamDefaultsRole(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	f.memberships.On("Join", mock.Anything, "T1", "U", models.RoleMember).Return(nil).Once()
	f.memberships.On("MembersOf", mock.Anything, "T1").Return([]string{"U"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "U").Return([]string{"cU1"}, nil).Once()
	f.sender.On("Send", "cU1", mock.Anything).Return(nil).Once()

	frame := models.Frame{
		Type: models.FrameTeamAction,
		Data: json.RawMessage(`{"actionType":"join_team","teamId":"T1","userId":"U"}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "cU1", frame))
	f.memberships.AssertExpectations(t)
}

func TestLeaveTeamNotifiesLeaverWhenConfigured(t *testing.T) {
	f := newSessionFixture(relay.Config{NotifyLeaver: true})

	f.memberships.On("Leave", mock.Anything, "T1", "B").Return(nil).Once()
	// B is gone from the post-mutation member set.
	f.memberships.On("MembersOf", mock.Anything, "T1").Return([]string{"A"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "A").Return([]string{"cA1"}, nil).Once()

	f.sender.On("Send", "cA1", frameOfType(models.FrameTeamUpdate)).Return(nil).Once()
	f.sender.On("Send", "cB1", frameOfType(models.FrameTeamUpdate)).Return(nil).Once()

	frame := models.Frame{
		Type: models.FrameTeamAction,
		Data: json.RawMessage(`{"actionType":"leave_team","teamId":"T1","userId":"B"}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "cB1", frame))
	f.sender.AssertExpectations(t)
}

func TestLeaveTeamSkipsLeaverWhenDisabled(t *testing.T) {
	f := newSessionFixture(relay.Config{NotifyLeaver: false})

	f.memberships.On("Leave", mock.Anything, "T1", "B").Return(nil).Once()
	f.memberships.On("MembersOf", mock.Anything, "T1").Return([]string{"A"}, nil).Once()
	f.connections.On("ConnectionsForUser", mock.Anything, "A").Return([]string{"cA1"}, nil).Once()

	f.sender.On("Send", "cA1", frameOfType(models.FrameTeamUpdate)).Return(nil).Once()

	frame := models.Frame{
		Type: models.FrameTeamAction,
		Data: json.RawMessage(`{"actionType":"leave_team","teamId":"T1","userId":"B"}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "cB1", frame))

	f.sender.AssertExpectations(t)
	f.sender.AssertNotCalled(t, "Send", "cB1", mock.Anything)
}

func TestUnknownFrameTypeIsNoOp(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	frame := models.Frame{Type: "unknown_type", Data: json.RawMessage(`{"teamId":"T1"}`)}
	require.NoError(t, f.session.HandleMessage(context.Background(), "c1", frame))

	f.flowcharts.AssertNotCalled(t, "SaveFlowchart", mock.Anything, mock.Anything)
	f.comments.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMissingTeamIDIsNoOp(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	frame := models.Frame{
		Type: models.FrameFlowchartUpdate,
		Data: json.RawMessage(`{"flowchartId":"F1","userId":"A","flowchart":{}}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "c1", frame))

	f.flowcharts.AssertNotCalled(t, "SaveFlowchart", mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestUnknownTeamActionIsNoOp(t *testing.T) {
	f := newSessionFixture(relay.Config{})

	frame := models.Frame{
		Type: models.FrameTeamAction,
		Data: json.RawMessage(`{"actionType":"promote","teamId":"T1","userId":"U"}`),
	}
	require.NoError(t, f.session.HandleMessage(context.Background(), "c1", frame))

	f.memberships.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.memberships.AssertNotCalled(t, "Leave", mock.Anything, mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
