package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/realtime"
)

type mockMessageRepo struct {
	conversations []models.ConversationDetail
	participants  map[string][]string
	messages      []models.Message
}

func (m *mockMessageRepo) CreateConversation(ctx context.Context, conversation *models.Conversation, participantIDs []string) error {
	conversation.ID = "conv-1"
	if m.participants == nil {
		m.participants = make(map[string][]string)
	}
	m.participants[conversation.ID] = participantIDs
	return nil
}

func (m *mockMessageRepo) ListConversations(ctx context.Context, userID string) ([]models.ConversationDetail, error) {
	return m.conversations, nil
}

func (m *mockMessageRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	for _, id := range m.participants[conversationID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMessageRepo) ParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	return m.participants[conversationID], nil
}

func (m *mockMessageRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = "msg-1"
	m.messages = append(m.messages, *message)
	return nil
}

func (m *mockMessageRepo) ListMessages(ctx context.Context, filter models.MessageFilter) ([]models.Message, error) {
	return m.messages, nil
}

type mockPublisher struct {
	events []realtime.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event realtime.Event) {
	m.events = append(m.events, event)
}

func TestStartConversationIncludesCreator(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessagingService(repo, nil, nil, nil)

	conversation, err := svc.Start(context.Background(), "teacher-1", StartConversationRequest{
		Subject:        "Field trip",
		ParticipantIDs: []string{"student-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conversation.ID)
	assert.ElementsMatch(t, []string{"teacher-1", "student-1"}, repo.participants["conv-1"])
}

func TestSendMessagePublishesToParticipants(t *testing.T) {
	repo := &mockMessageRepo{participants: map[string][]string{"conv-1": {"teacher-1", "student-1"}}}
	publisher := &mockPublisher{}
	svc := NewMessagingService(repo, publisher, nil, nil)

	sender := &models.JWTClaims{UserID: "teacher-1", FullName: "Jane Teacher"}
	message, err := svc.Send(context.Background(), "conv-1", sender, SendMessageRequest{Body: "Class moved to B204"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", message.ID)
	assert.Equal(t, "Jane Teacher", message.SenderName)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, realtime.EventMessageCreated, event.Type)
	assert.ElementsMatch(t, []string{"teacher-1", "student-1"}, event.Recipients)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	repo := &mockMessageRepo{participants: map[string][]string{"conv-1": {"student-1"}}}
	svc := NewMessagingService(repo, nil, nil, nil)

	sender := &models.JWTClaims{UserID: "outsider"}
	_, err := svc.Send(context.Background(), "conv-1", sender, SendMessageRequest{Body: "hi"})
	assert.Error(t, err)
	assert.Empty(t, repo.messages)
}

func TestListMessagesChecksMembership(t *testing.T) {
	repo := &mockMessageRepo{participants: map[string][]string{"conv-1": {"student-1"}}}
	svc := NewMessagingService(repo, nil, nil, nil)

	_, err := svc.ListMessages(context.Background(), "outsider", models.MessageFilter{ConversationID: "conv-1"})
	assert.Error(t, err)

	_, err = svc.ListMessages(context.Background(), "student-1", models.MessageFilter{ConversationID: "conv-1"})
	assert.NoError(t, err)
}
