package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-room-service/internal/config"
	"github.com/spec-kit/support-room-service/internal/events"
)

// NotificationService handles emitting notifications for room events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventMemberJoined, n.handleMemberJoined)
	n.dispatcher.Subscribe(events.EventMemberLeft, n.handleMemberLeft)
	n.dispatcher.Subscribe(events.EventRoomFilled, n.handleRoomStatus)
	n.dispatcher.Subscribe(events.EventRoomClosed, n.handleRoomStatus)
}

func (n *NotificationService) handleMemberJoined(ctx context.Context, event events.Event) error {
	n.logger.Info("MemberJoined",
		zap.String("group_id", event.GroupID),
		zap.String("room_id", event.RoomID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMemberLeft(ctx context.Context, event events.Event) error {
	n.logger.Info("MemberLeft",
		zap.String("group_id", event.GroupID),
		zap.String("room_id", event.RoomID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRoomStatus(ctx context.Context, event events.Event) error {
	n.logger.Info("RoomStatusChanged",
		zap.String("group_id", event.GroupID),
		zap.String("room_id", event.RoomID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("room_id", event.RoomID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("room_id", event.RoomID),
		zap.String("event_type", string(event.Type)))
}
