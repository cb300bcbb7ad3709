package model

import (
	"slices"
	"time"
)

type Slot struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	Date            time.Time `json:"date" bson:"date"`
	StartTime       time.Time `json:"start_time" bson:"start_time"`
	EndTime         time.Time `json:"end_time" bson:"end_time"`
	DoseType        DoseType  `json:"dose_type" bson:"dose_type"`
	Capacity        int       `json:"capacity" bson:"capacity"`
	RegisteredUsers []string  `json:"registered_users" bson:"registered_users"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

func (s *Slot) HasUser(userID string) bool {
	return slices.Contains(s.RegisteredUsers, userID)
}

func (s *Slot) IsFull() bool {
	return len(s.RegisteredUsers) >= s.Capacity
}

func (s *Slot) Remaining() int {
	return max(0, s.Capacity-len(s.RegisteredUsers))
}

type SlotCreate struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	DoseType  DoseType  `json:"dose_type" validate:"required,oneof=first second"`
	Capacity  *int      `json:"capacity,omitempty" validate:"omitempty,min=1,max=1000"`
}

type SlotRegistration struct {
	UserID string `json:"userId" validate:"required,mongodb"`
	SlotID string `json:"slotId" validate:"required,mongodb"`
}

type SlotRebook struct {
	UserID    string `json:"userId" validate:"required,mongodb"`
	NewSlotID string `json:"newSlotId" validate:"required,mongodb"`
}

// AvailableSlot is a slot as shown to a user browsing for a booking.
type AvailableSlot struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	DoseType  DoseType  `json:"dose_type"`
	Capacity  int       `json:"capacity"`
	Remaining int       `json:"available_doses"`
}

func (s *Slot) Available() AvailableSlot {
	return AvailableSlot{
		ID:        s.ID,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		DoseType:  s.DoseType,
		Capacity:  s.Capacity,
		Remaining: s.Remaining(),
	}
}

// SlotDetails is a slot with its registered users resolved.
type SlotDetails struct {
	Slot
	Users []UserSummary `json:"users"`
}

type SlotsByDate struct {
	Date       string        `json:"date"`
	FirstDose  []SlotDetails `json:"first_dose"`
	SecondDose []SlotDetails `json:"second_dose"`
	Total      []SlotDetails `json:"total"`
}

type AdminLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
