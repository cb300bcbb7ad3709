package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"vaxbook/pkg/kafka"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/middleware"
	"vaxbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	messages []kafka.Message
	err      error
}

func (p *recordingProducer) Publish(ctx context.Context, msg kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

var occurredAt = time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

func testUser() *model.User {
	return &model.User{
		ID:                "65f1a2b3c4d5e6f708192a3b",
		Name:              "Asha Rao",
		PhoneNumber:       "+919876543210",
		VaccinationStatus: model.StatusFirstDoseCompleted,
	}
}

func testSlot() *model.Slot {
	return &model.Slot{
		ID:        "65f1a2b3c4d5e6f708192a40",
		DoseType:  model.DoseFirst,
		StartTime: occurredAt.Add(time.Hour),
		EndTime:   occurredAt.Add(2 * time.Hour),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &recordingProducer{}
	pub := NewKafkaPublisher(producer, "vaxbook")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	require.NoError(t, pub.Publish(ctx, SlotRegistered(testUser(), testSlot(), occurredAt)))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "65f1a2b3c4d5e6f708192a3b", msg.Key)
	assert.Equal(t, TypeSlotRegistered, msg.GetEventType())
	assert.Equal(t, "req-42", msg.GetCorrelationID())
	assert.Equal(t, SchemaVersion, msg.Headers[kafka.HeaderSchemaVersion])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "65f1a2b3c4d5e6f708192a40", decoded.SlotID)
	assert.Equal(t, model.DoseFirst, decoded.DoseType)
	assert.NoError(t, decoded.Validate())
}

func TestKafkaPublisher_ProducerError(t *testing.T) {
	pub := NewKafkaPublisher(&recordingProducer{err: errors.New("broker down")}, "vaxbook")

	err := pub.Publish(context.Background(), UserRegistered(testUser(), occurredAt))

	assert.ErrorContains(t, err, "user.registered")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NewNoopPublisher(logger.Discard()).Publish(context.Background(), Event{Type: TypeUserRegistered}))
}

func TestEventValidate(t *testing.T) {
	rebooked := SlotRebooked(testUser(), "65f1a2b3c4d5e6f708192a41", testSlot(), occurredAt)
	assert.NoError(t, rebooked.Validate())

	rebooked.PreviousSlotID = ""
	assert.ErrorContains(t, rebooked.Validate(), "previous_slot_id")

	assert.ErrorContains(t, Event{Type: "slot.cancelled", UserID: "u"}.Validate(), "unknown event type")
	assert.ErrorContains(t, Event{Type: TypeUserRegistered}.Validate(), "user_id")
}
