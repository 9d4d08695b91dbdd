package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/realtime"
	appErrors "github.com/campushub/portal-api/pkg/errors"
)

type messageRepository interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation, participantIDs []string) error
	ListConversations(ctx context.Context, userID string) ([]models.ConversationDetail, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	ParticipantIDs(ctx context.Context, conversationID string) ([]string, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, filter models.MessageFilter) ([]models.Message, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event realtime.Event)
}

// StartConversationRequest opens a new thread with one or more participants.
type StartConversationRequest struct {
	Subject        string   `json:"subject" validate:"required"`
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1"`
}

// SendMessageRequest appends a message to a conversation.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// MessagingService coordinates conversations and message delivery. Persisted
// messages are additionally pushed through the realtime hub so open clients
// see them without polling.
type MessagingService struct {
	repo      messageRepository
	events    eventPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessagingService constructs the messaging service.
func NewMessagingService(repo messageRepository, events eventPublisher, validate *validator.Validate, logger *zap.Logger) *MessagingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagingService{repo: repo, events: events, validator: validate, logger: logger}
}

// ListConversations returns the caller's conversations, newest activity first.
func (s *MessagingService) ListConversations(ctx context.Context, userID string) ([]models.ConversationDetail, error) {
	conversations, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conversations")
	}
	return conversations, nil
}

// Start opens a conversation between the caller and the given participants.
func (s *MessagingService) Start(ctx context.Context, creatorID string, req StartConversationRequest) (*models.Conversation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conversation payload")
	}

	participants := append([]string{creatorID}, req.ParticipantIDs...)
	conversation := &models.Conversation{Subject: req.Subject, CreatedBy: creatorID}
	if err := s.repo.CreateConversation(ctx, conversation, participants); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create conversation")
	}
	return conversation, nil
}

// ListMessages returns a page of messages after checking membership.
func (s *MessagingService) ListMessages(ctx context.Context, userID string, filter models.MessageFilter) ([]models.Message, error) {
	member, err := s.repo.IsParticipant(ctx, filter.ConversationID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this conversation")
	}

	messages, err := s.repo.ListMessages(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Send persists a message and publishes it to the other participants.
func (s *MessagingService) Send(ctx context.Context, conversationID string, sender *models.JWTClaims, req SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	member, err := s.repo.IsParticipant(ctx, conversationID, sender.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this conversation")
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       sender.UserID,
		SenderName:     sender.FullName,
		Body:           req.Body,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}

	if s.events != nil {
		recipients, err := s.repo.ParticipantIDs(ctx, conversationID)
		if err != nil {
			s.logger.Warn("failed to resolve message recipients", zap.Error(err))
		} else {
			s.events.Publish(ctx, realtime.Event{
				Type:       realtime.EventMessageCreated,
				Payload:    message,
				Recipients: recipients,
			})
		}
	}

	return message, nil
}
