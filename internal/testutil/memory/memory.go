// Package memory holds in-process repositories with the same contracts as the
// Mongo ones. End-to-end tests run the full HTTP stack against them.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	slotserrors "vaxbook/internal/slots/errors"
	userserrors "vaxbook/internal/users/errors"
	"vaxbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*model.User{}}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.PhoneNumber == user.PhoneNumber {
			return userserrors.ErrPhoneTaken
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, userserrors.ErrInvalidID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (r *UserRepository) UpdateBooking(ctx context.Context, id string, slotID string, status model.VaccinationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userserrors.ErrNotFound
	}
	u.RegisteredSlot = slotID
	u.VaccinationStatus = status
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) Count(ctx context.Context, filter model.UserFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.users {
		if filter.Age != nil && u.Age != *filter.Age {
			continue
		}
		if filter.Pincode != "" && u.Pincode != filter.Pincode {
			continue
		}
		if filter.VaccinationStatus != "" && u.VaccinationStatus != filter.VaccinationStatus {
			continue
		}
		n++
	}
	return n, nil
}

type SlotRepository struct {
	mu    sync.RWMutex
	slots map[string]*model.Slot
}

func NewSlotRepository() *SlotRepository {
	return &SlotRepository{slots: map[string]*model.Slot{}}
}

func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot.ID = primitive.NewObjectID().Hex()
	slot.CreatedAt = time.Now().UTC()
	if slot.RegisteredUsers == nil {
		slot.RegisteredUsers = []string{}
	}
	r.slots[slot.ID] = clone(slot)
	return nil
}

func (r *SlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, slotserrors.ErrInvalidID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, slotserrors.ErrNotFound
	}
	return clone(s), nil
}

func (r *SlotRepository) FindByDateRange(ctx context.Context, start, end time.Time, dose *model.DoseType) ([]*model.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Slot{}
	for _, s := range r.slots {
		if s.Date.Before(start) || !s.Date.Before(end) {
			continue
		}
		if dose != nil && s.DoseType != *dose {
			continue
		}
		out = append(out, clone(s))
	}
	slices.SortFunc(out, func(a, b *model.Slot) int { return a.StartTime.Compare(b.StartTime) })
	return out, nil
}

// AddRegistrant applies the same guard as the conditional Mongo update.
func (r *SlotRepository) AddRegistrant(ctx context.Context, slotID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return slotserrors.ErrNotFound
	}
	if s.HasUser(userID) || s.IsFull() {
		return slotserrors.ErrSlotUnavailable
	}
	s.RegisteredUsers = append(s.RegisteredUsers, userID)
	return nil
}

func (r *SlotRepository) RemoveRegistrant(ctx context.Context, slotID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return slotserrors.ErrNotFound
	}
	s.RegisteredUsers = slices.DeleteFunc(s.RegisteredUsers, func(id string) bool { return id == userID })
	return nil
}

func clone(s *model.Slot) *model.Slot {
	cp := *s
	cp.RegisteredUsers = slices.Clone(s.RegisteredUsers)
	if cp.RegisteredUsers == nil {
		cp.RegisteredUsers = []string{}
	}
	return &cp
}
