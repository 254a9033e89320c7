package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/events"
)

// NotificationService handles emitting notifications for post lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	client     *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPostCreated, n.handlePostCreated)
	n.dispatcher.Subscribe(events.EventPostPublished, n.handlePostPublished)
	n.dispatcher.Subscribe(events.EventPostDeleted, n.handlePostDeleted)
}

func (n *NotificationService) handlePostCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("PostCreated", zap.Int64("post_id", event.PostID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePostPublished(ctx context.Context, event events.Event) error {
	n.logger.Info("PostPublished", zap.Int64("post_id", event.PostID), zap.Any("payload", event.Payload))
	n.sendWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) handlePostDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("PostDeleted", zap.Int64("post_id", event.PostID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotification(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("webhook payload encoding failed", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("webhook request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
	n.logger.Debug("webhook delivered",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int("status", resp.StatusCode),
		zap.String("event_type", string(event.Type)))
}
