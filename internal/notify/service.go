package notify

import (
	"context"
	"log/slog"

	"github.com/example/campus-match/internal/models"
	"github.com/example/campus-match/internal/observability"
	"github.com/example/campus-match/internal/storage"
)

// Service fans a notification event out to its recipients. With a Kafka
// producer configured the event is handed to the notifier process, which
// persists the records; otherwise they are written directly. Websocket and
// webhook delivery are always best-effort.
type Service struct {
	Store    storage.NotificationStore
	Producer *Producer
	WS       *WSRegistry
	Webhook  *WebhookSender
	Logger   *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Notify dispatches the event. Failures are logged, never propagated: a
// broken notification channel must not fail the triggering request.
func (s *Service) Notify(ctx context.Context, ev Event) {
	if s.Producer != nil {
		if err := s.Producer.Publish(ctx, ev); err == nil {
			s.push(ctx, ev)
			return
		} else {
			s.logger().Warn("notification publish failed, persisting directly", "error", err)
		}
	}

	for _, n := range ev.Notifications() {
		rec := n
		if err := s.Store.CreateNotification(ctx, &rec); err != nil {
			s.logger().Error("persisting notification failed", "user_id", rec.UserID, "error", err)
			continue
		}
		observability.NotificationsCreated.Inc()
	}
	s.push(ctx, ev)
}

func (s *Service) push(ctx context.Context, ev Event) {
	for _, n := range ev.Notifications() {
		s.pushOne(ctx, n)
	}
}

func (s *Service) pushOne(ctx context.Context, n models.Notification) {
	if s.WS != nil {
		if err := s.WS.Push(n.UserID, n); err == nil {
			return
		}
	}
	if s.Webhook != nil {
		if err := s.Webhook.Send(ctx, n); err != nil {
			s.logger().Warn("webhook delivery failed", "user_id", n.UserID, "error", err)
		}
	}
}
