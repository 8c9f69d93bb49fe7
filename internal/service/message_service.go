package service

import (
	"context"
	"log"

	"github.com/4seer/Twake/internal/pubsub"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/types"
)

// ============================================
// Message Service
// ============================================

type MessageService interface {
	CreateChannel(ctx context.Context, workspaceID, name string, ec types.ExecutionContext) (*repository.Channel, error)
	GetChannel(ctx context.Context, id string) (*repository.Channel, error)
	ListChannels(ctx context.Context, workspaceID string) ([]*repository.Channel, error)
	DeleteChannel(ctx context.Context, id string) error

	PostMessage(ctx context.Context, channelID string, threadID *string, body string, ec types.ExecutionContext) (*repository.Message, error)
	ListMessages(ctx context.Context, channelID string, page types.Pagination) ([]*repository.Message, string, error)
	ListThread(ctx context.Context, threadID string) ([]*repository.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	bus         pubsub.Publisher
}

func NewMessageService(messageRepo repository.MessageRepository, bus pubsub.Publisher) MessageService {
	return &messageService{messageRepo: messageRepo, bus: bus}
}

func (s *messageService) CreateChannel(ctx context.Context, workspaceID, name string, ec types.ExecutionContext) (*repository.Channel, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	channel := &repository.Channel{
		CompanyID:   ec.CompanyID,
		WorkspaceID: workspaceID,
		Name:        name,
	}
	if ec.User.ID != "" {
		ownerID := ec.User.ID
		channel.OwnerID = &ownerID
	}
	if err := s.messageRepo.CreateChannel(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *messageService) GetChannel(ctx context.Context, id string) (*repository.Channel, error) {
	channel, err := s.messageRepo.FindChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrNotFound
	}
	return channel, nil
}

func (s *messageService) ListChannels(ctx context.Context, workspaceID string) ([]*repository.Channel, error) {
	return s.messageRepo.ListChannels(ctx, workspaceID)
}

func (s *messageService) DeleteChannel(ctx context.Context, id string) error {
	return s.messageRepo.RemoveChannel(ctx, id)
}

func (s *messageService) PostMessage(ctx context.Context, channelID string, threadID *string, body string, ec types.ExecutionContext) (*repository.Message, error) {
	if body == "" {
		return nil, ErrInvalidInput
	}

	channel, err := s.messageRepo.FindChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrNotFound
	}

	message := &repository.Message{
		ChannelID: channelID,
		ThreadID:  threadID,
		UserID:    ec.User.ID,
		Body:      body,
	}
	if err := s.messageRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, pubsub.TopicMessageCreated, pubsub.MessageCreatedEvent{
		CompanyID:   channel.CompanyID,
		WorkspaceID: channel.WorkspaceID,
		ChannelID:   channelID,
		MessageID:   message.ID,
		UserID:      ec.User.ID,
	}); err != nil {
		log.Printf("[Message] Failed to publish %s: %v", pubsub.TopicMessageCreated, err)
	}

	return message, nil
}

func (s *messageService) ListMessages(ctx context.Context, channelID string, page types.Pagination) ([]*repository.Message, string, error) {
	return s.messageRepo.ListMessages(ctx, channelID, page)
}

func (s *messageService) ListThread(ctx context.Context, threadID string) ([]*repository.Message, error) {
	return s.messageRepo.ListThread(ctx, threadID)
}
