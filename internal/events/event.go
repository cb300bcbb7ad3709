package events

import (
	"errors"
	"fmt"
	"time"

	"vaxbook/pkg/model"
)

const (
	TypeUserRegistered = "user.registered"
	TypeSlotRegistered = "slot.registered"
	TypeSlotRebooked   = "slot.rebooked"

	SchemaVersion = "1"
)

// Event is the JSON payload published for every booking state change.
type Event struct {
	Type              string                  `json:"type"`
	UserID            string                  `json:"user_id"`
	UserName          string                  `json:"user_name,omitempty"`
	PhoneNumber       string                  `json:"phone_number,omitempty"`
	SlotID            string                  `json:"slot_id,omitempty"`
	PreviousSlotID    string                  `json:"previous_slot_id,omitempty"`
	DoseType          model.DoseType          `json:"dose_type,omitempty"`
	SlotStart         *time.Time              `json:"slot_start,omitempty"`
	SlotEnd           *time.Time              `json:"slot_end,omitempty"`
	VaccinationStatus model.VaccinationStatus `json:"vaccination_status"`
	OccurredAt        time.Time               `json:"occurred_at"`
}

func UserRegistered(user *model.User, at time.Time) Event {
	return Event{
		Type:              TypeUserRegistered,
		UserID:            user.ID,
		UserName:          user.Name,
		PhoneNumber:       user.PhoneNumber,
		VaccinationStatus: user.VaccinationStatus,
		OccurredAt:        at.UTC(),
	}
}

func SlotRegistered(user *model.User, slot *model.Slot, at time.Time) Event {
	evt := UserRegistered(user, at)
	evt.Type = TypeSlotRegistered
	withSlot(&evt, slot)
	return evt
}

func SlotRebooked(user *model.User, previousSlotID string, slot *model.Slot, at time.Time) Event {
	evt := SlotRegistered(user, slot, at)
	evt.Type = TypeSlotRebooked
	evt.PreviousSlotID = previousSlotID
	return evt
}

func withSlot(evt *Event, slot *model.Slot) {
	start, end := slot.StartTime.UTC(), slot.EndTime.UTC()
	evt.SlotID = slot.ID
	evt.DoseType = slot.DoseType
	evt.SlotStart = &start
	evt.SlotEnd = &end
}

// Validate checks the fields a consumer relies on.
func (e Event) Validate() error {
	var errs []error
	switch e.Type {
	case TypeUserRegistered:
	case TypeSlotRegistered, TypeSlotRebooked:
		if e.SlotID == "" {
			errs = append(errs, errors.New("slot_id is required"))
		}
		if e.Type == TypeSlotRebooked && e.PreviousSlotID == "" {
			errs = append(errs, errors.New("previous_slot_id is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown event type %q", e.Type))
	}
	if e.UserID == "" {
		errs = append(errs, errors.New("user_id is required"))
	}
	return errors.Join(errs...)
}
