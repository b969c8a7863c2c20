package services

import (
	"context"
	"log/slog"
	"net/mail"

	"eventbook/monitoring"
	"eventbook/utils"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"
	pubnub "github.com/pubnub/go/v7"
)

// Notifier is the booking engine's outbound side-effect boundary. Delivery
// failures are logged and counted but never surface to the caller: a lost
// email must not roll back a booking.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string)
	PublishActivity(activity map[string]any)
}

const activityChannel = "booking-activity"

type NotifyService struct {
	app     core.App
	pubnub  *pubnub.PubNub
	breaker *utils.CircuitBreaker
}

func NewNotifyService(app core.App, pn *pubnub.PubNub) *NotifyService {
	return &NotifyService{
		app:     app,
		pubnub:  pn,
		breaker: utils.NewCircuitBreaker("mailer"),
	}
}

func (s *NotifyService) Send(ctx context.Context, to, subject, body string) {
	_, err := s.breaker.Execute(ctx, func() (any, error) {
		message := &mailer.Message{
			From: mail.Address{
				Address: s.app.Settings().Meta.SenderAddress,
				Name:    s.app.Settings().Meta.SenderName,
			},
			To:      []mail.Address{{Address: to}},
			Subject: subject,
			Text:    body,
		}
		return nil, s.app.NewMailClient().Send(message)
	})
	if err != nil {
		monitoring.TrackMailFailure()
		slog.Error("notification send failed", "to", to, "subject", subject, "error", err)
	}
}

// PublishActivity pushes a booking lifecycle event onto the realtime admin
// dashboard channel. Best effort, same as Send.
func (s *NotifyService) PublishActivity(activity map[string]any) {
	if s.pubnub == nil {
		return
	}

	_, _, err := s.pubnub.Publish().
		Channel(activityChannel).
		Message(activity).
		Execute()
	if err != nil {
		slog.Warn("activity publish failed", "error", err)
	}
}
