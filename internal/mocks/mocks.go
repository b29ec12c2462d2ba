package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"debate-relay/internal/models"
	"debate-relay/internal/relay"
	"debate-relay/internal/repositories"
)

type ConnectionRepositoryMock struct {
	mock.Mock
}

func (m *ConnectionRepositoryMock) Register(ctx context.Context, conn models.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) Unregister(ctx context.Context, connectionID string) error {
	args := m.Called(ctx, connectionID)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) ConnectionsForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

type MembershipRepositoryMock struct {
	mock.Mock
}

func (m *MembershipRepositoryMock) MembersOf(ctx context.Context, teamID string) ([]string, error) {
	args := m.Called(ctx, teamID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *MembershipRepositoryMock) Join(ctx context.Context, teamID, userID, role string) error {
	args := m.Called(ctx, teamID, userID, role)
	return args.Error(0)
}

func (m *MembershipRepositoryMock) Leave(ctx context.Context, teamID, userID string) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

type FlowchartRepositoryMock struct {
	mock.Mock
}

func (m *FlowchartRepositoryMock) SaveFlowchart(ctx context.Context, fc models.Flowchart) error {
	args := m.Called(ctx, fc)
	return args.Error(0)
}

type CommentRepositoryMock struct {
	mock.Mock
}

func (m *CommentRepositoryMock) CreateComment(ctx context.Context, nodeID, userID, content string) (models.Comment, error) {
	args := m.Called(ctx, nodeID, userID, content)
	var cmt models.Comment
	if val := args.Get(0); val != nil {
		cmt = val.(models.Comment)
	}
	return cmt, args.Error(1)
}

type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(connectionID string, payload []byte) error {
	args := m.Called(connectionID, payload)
	return args.Error(0)
}

type GeneratorMock struct {
	mock.Mock
}

func (m *GeneratorMock) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, prompt, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

var _ repositories.ConnectionRepository = (*ConnectionRepositoryMock)(nil)
var _ repositories.MembershipRepository = (*MembershipRepositoryMock)(nil)
var _ repositories.FlowchartRepository = (*FlowchartRepositoryMock)(nil)
var _ repositories.CommentRepository = (*CommentRepositoryMock)(nil)
var _ relay.Sender = (*SenderMock)(nil)
