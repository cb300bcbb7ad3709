package notifications

import (
	"context"
	"fmt"
	"time"

	"vaxbook/internal/events"
	"vaxbook/pkg/kafka"
	"vaxbook/pkg/logger"
)

// Notice is a message addressed to one user.
type Notice struct {
	EventID     string
	UserID      string
	PhoneNumber string
	Text        string
}

type Sender interface {
	Send(ctx context.Context, notice Notice) error
}

// LogSender writes notices to the log instead of an SMS gateway.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, notice Notice) error {
	s.log.Info("Notification sent",
		"event_id", notice.EventID,
		"user_id", notice.UserID,
		"phone_number", notice.PhoneNumber,
		"text", notice.Text,
	)
	return nil
}

type Notifier struct {
	sender   Sender
	location *time.Location
	log      *logger.Logger
}

// NewNotifier renders slot times in location.
func NewNotifier(sender Sender, location *time.Location, log *logger.Logger) *Notifier {
	if location == nil {
		location = time.UTC
	}
	return &Notifier{
		sender:   sender,
		location: location,
		log:      log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable or invalid events are permanent
// failures; a failed send is retried.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var evt events.Event
	if err := msg.DecodeValue(&evt); err != nil {
		return kafka.NewPermanentError("deserialization failed", err)
	}
	if err := evt.Validate(); err != nil {
		return kafka.NewPermanentError("invalid message", err)
	}

	notice := Notice{
		EventID:     msg.GetEventID(),
		UserID:      evt.UserID,
		PhoneNumber: evt.PhoneNumber,
		Text:        n.render(evt),
	}
	if err := n.sender.Send(ctx, notice); err != nil {
		return kafka.NewTransientError("failed to send notification", err)
	}

	n.log.Debug("Booking event handled", "type", evt.Type, "user_id", evt.UserID, "correlation_id", msg.GetCorrelationID())
	return nil
}

func (n *Notifier) render(evt events.Event) string {
	name := evt.UserName
	if name == "" {
		name = "there"
	}

	switch evt.Type {
	case events.TypeUserRegistered:
		return fmt.Sprintf("Hi %s, your registration is complete. You can now book a first dose slot.", name)
	case events.TypeSlotRebooked:
		return fmt.Sprintf("Hi %s, your %s dose appointment has moved to %s.", name, evt.DoseType, n.window(evt))
	default:
		return fmt.Sprintf("Hi %s, your %s dose appointment on %s is confirmed.", name, evt.DoseType, n.window(evt))
	}
}

func (n *Notifier) window(evt events.Event) string {
	if evt.SlotStart == nil {
		return "your selected slot"
	}
	start := evt.SlotStart.In(n.location)
	if evt.SlotEnd == nil {
		return start.Format("2 Jan 2006 15:04")
	}
	return start.Format("2 Jan 2006 15:04") + "-" + evt.SlotEnd.In(n.location).Format("15:04")
}
