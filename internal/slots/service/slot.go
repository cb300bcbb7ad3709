package service

import (
	"context"
	"errors"
	"time"

	"vaxbook/internal/events"
	slotserrors "vaxbook/internal/slots/errors"
	"vaxbook/internal/slots/metrics"
	"vaxbook/internal/slots/repository"
	"vaxbook/internal/slots/validator"
	userserrors "vaxbook/internal/users/errors"
	usersrepository "vaxbook/internal/users/repository"
	"vaxbook/pkg/config"
	mongodb "vaxbook/pkg/db/mongo"
	apperrors "vaxbook/pkg/errors"
	"vaxbook/pkg/model"
	"vaxbook/pkg/validation"
)

const (
	msgUserNotFound      = "User not found"
	msgSlotNotFound      = "Slot not found"
	msgAlreadyRegistered = "User already registered for the slot"
	msgSlotFull          = "Slot is full"
	msgNewSlotFull       = "New slot is full"
	msgHasOtherSlot      = "User already holds a slot registration, use the slot update endpoint to change it"
	msgNotRegistered     = "User is not registered for the current slot"
	msgSameSlot          = "New slot must differ from the current slot"
)

// SlotService is the booking manager: it moves users into and between slots
// while keeping capacity, uniqueness and status progression intact.
type SlotService interface {
	Register(ctx context.Context, req *model.SlotRegistration) (*model.User, error)
	Rebook(ctx context.Context, currentSlotID string, req *model.SlotRebook) (*model.User, error)
	ListAvailable(ctx context.Context, userID string) ([]model.AvailableSlot, error)
	CreateSlot(ctx context.Context, req *model.SlotCreate) (*model.Slot, error)
}

type slotService struct {
	slots     repository.SlotRepository
	users     usersrepository.UserRepository
	tx        mongodb.TransactionManager
	validator *validator.SlotValidator
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
	now       func() time.Time
}

func NewSlotService(
	slots repository.SlotRepository,
	users usersrepository.UserRepository,
	tx mongodb.TransactionManager,
	validator *validator.SlotValidator,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	cfg *config.Config,
) SlotService {
	return &slotService{
		slots:     slots,
		users:     users,
		tx:        tx,
		validator: validator,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Register books the user into a slot. Checks run in this order: user and slot
// exist, user not already in the slot, slot has room, user holds no other
// registration. The slot is written before the user.
func (s *slotService) Register(ctx context.Context, req *model.SlotRegistration) (user *model.User, err error) {
	start := s.now()
	var dose model.DoseType
	defer func() { s.record(metrics.OperationRegister, dose, start, err) }()

	if err := s.validator.ValidateRegistration(req); err != nil {
		return nil, validation.ToAppError("Invalid slot registration request", err)
	}

	user, err = s.loadUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	slot, err := s.loadSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	dose = slot.DoseType

	if slot.HasUser(user.ID) {
		return nil, apperrors.BadRequest(msgAlreadyRegistered)
	}
	if slot.IsFull() {
		return nil, apperrors.BadRequest(msgSlotFull)
	}
	if user.RegisteredSlot != "" && user.RegisteredSlot != slot.ID {
		return nil, apperrors.BadRequest(msgHasOtherSlot).WithDetails(map[string]any{
			"registered_slot": user.RegisteredSlot,
		})
	}

	status := model.Advance(user.VaccinationStatus, slot.DoseType)

	err = s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		if err := s.slots.AddRegistrant(ctx, slot.ID, user.ID); err != nil {
			return s.translateAddError(err, msgSlotFull)
		}
		if err := s.users.UpdateBooking(ctx, user.ID, slot.ID, status); err != nil {
			return s.translateUserWriteError(err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to register user for slot", "user_id", user.ID, "slot_id", slot.ID, "error", err)
		return nil, err
	}

	user.RegisteredSlot = slot.ID
	user.VaccinationStatus = status

	s.cfg.Log.Info("User registered for slot",
		"user_id", user.ID,
		"slot_id", slot.ID,
		"dose_type", slot.DoseType,
		"vaccination_status", status,
	)
	s.publish(ctx, events.SlotRegistered(user, slot, s.now()))

	return user, nil
}

// Rebook moves the user from currentSlotID to the requested slot. The new slot
// gains the user before the old one loses them, so a failure in between leaves
// the user holding a place rather than none.
func (s *slotService) Rebook(ctx context.Context, currentSlotID string, req *model.SlotRebook) (user *model.User, err error) {
	start := s.now()
	var dose model.DoseType
	defer func() { s.record(metrics.OperationRebook, dose, start, err) }()

	if err := s.validator.ValidateID("slotId", currentSlotID); err != nil {
		return nil, validation.ToAppError("Invalid current slot id", err)
	}
	if err := s.validator.ValidateRebook(req); err != nil {
		return nil, validation.ToAppError("Invalid slot update request", err)
	}

	user, err = s.loadUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	newSlot, err := s.loadSlot(ctx, req.NewSlotID)
	if err != nil {
		return nil, err
	}
	dose = newSlot.DoseType

	if user.RegisteredSlot == "" || user.RegisteredSlot != currentSlotID {
		return nil, apperrors.BadRequest(msgNotRegistered)
	}
	if newSlot.ID == currentSlotID {
		return nil, apperrors.BadRequest(msgSameSlot)
	}
	if newSlot.HasUser(user.ID) {
		return nil, apperrors.BadRequest(msgAlreadyRegistered)
	}
	if newSlot.IsFull() {
		return nil, apperrors.BadRequest(msgNewSlotFull)
	}

	status := model.Advance(user.VaccinationStatus, newSlot.DoseType)

	err = s.tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		if err := s.slots.AddRegistrant(ctx, newSlot.ID, user.ID); err != nil {
			return s.translateAddError(err, msgNewSlotFull)
		}
		if err := s.slots.RemoveRegistrant(ctx, currentSlotID, user.ID); err != nil {
			if !errors.Is(err, slotserrors.ErrNotFound) {
				return apperrors.Internal("Failed to release current slot", err)
			}
			s.cfg.Log.Warn("Current slot no longer exists, skipping release", "slot_id", currentSlotID, "user_id", user.ID)
		}
		if err := s.users.UpdateBooking(ctx, user.ID, newSlot.ID, status); err != nil {
			return s.translateUserWriteError(err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to rebook user", "user_id", user.ID, "from_slot", currentSlotID, "to_slot", newSlot.ID, "error", err)
		return nil, err
	}

	user.RegisteredSlot = newSlot.ID
	user.VaccinationStatus = status

	s.cfg.Log.Info("User slot updated",
		"user_id", user.ID,
		"from_slot", currentSlotID,
		"to_slot", newSlot.ID,
		"vaccination_status", status,
	)
	s.publish(ctx, events.SlotRebooked(user, currentSlotID, newSlot, s.now()))

	return user, nil
}

// ListAvailable returns today's slots for the dose the user needs next. Users
// with every dose completed get an empty list without a storage query.
func (s *slotService) ListAvailable(ctx context.Context, userID string) (result []model.AvailableSlot, err error) {
	start := s.now()
	var dose model.DoseType
	defer func() { s.record(metrics.OperationListAvailable, dose, start, err) }()

	if err := s.validator.ValidateID("user_id", userID); err != nil {
		return nil, validation.ToAppError("Invalid user id", err)
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, ok := user.VaccinationStatus.NextDose()
	if !ok {
		return []model.AvailableSlot{}, nil
	}
	dose = next

	dayStart, dayEnd := s.cfg.Today(s.now())
	slots, err := s.slots.FindByDateRange(ctx, dayStart, dayEnd, &next)
	if err != nil {
		s.cfg.Log.Error("Failed to list available slots", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve available slots", err)
	}

	result = make([]model.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		result = append(result, slot.Available())
	}
	return result, nil
}

// CreateSlot stores a new slot dated to the day of its start time in the
// service timezone. Capacity defaults to the configured slot capacity.
func (s *slotService) CreateSlot(ctx context.Context, req *model.SlotCreate) (slot *model.Slot, err error) {
	start := s.now()
	defer func() { s.record(metrics.OperationCreateSlot, req.DoseType, start, err) }()

	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, validation.ToAppError("Invalid slot", err)
	}

	capacity := s.cfg.SlotCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	day, _ := config.DayBounds(req.StartTime, s.cfg.Location)

	slot = &model.Slot{
		Date:            day,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		DoseType:        req.DoseType,
		Capacity:        capacity,
		RegisteredUsers: []string{},
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		s.cfg.Log.Error("Failed to create slot", "error", err)
		return nil, apperrors.Internal("Failed to create slot", err)
	}

	s.cfg.Log.Info("Slot created",
		"slot_id", slot.ID,
		"date", slot.Date,
		"dose_type", slot.DoseType,
		"capacity", slot.Capacity,
	)
	return slot, nil
}

func (s *slotService) loadUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to load user", "user_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

func (s *slotService) loadSlot(ctx context.Context, id string) (*model.Slot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Slot")
		}
		if errors.Is(err, slotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid slot ID format")
		}
		s.cfg.Log.Error("Failed to load slot", "slot_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slot", err)
	}
	return slot, nil
}

// translateAddError maps a lost race on the capacity guard to the same 400 the
// pre-checks would have produced.
func (s *slotService) translateAddError(err error, fullMessage string) error {
	switch {
	case errors.Is(err, slotserrors.ErrSlotUnavailable):
		s.metrics.IncrementCapacityConflict()
		return apperrors.BadRequest(fullMessage)
	case errors.Is(err, slotserrors.ErrNotFound):
		return apperrors.NotFound("Slot")
	default:
		return apperrors.Internal("Failed to update slot", err)
	}
}

func (s *slotService) translateUserWriteError(err error) error {
	if errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.NotFound("User")
	}
	return apperrors.Internal("Failed to update user", err)
}

func (s *slotService) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "type", evt.Type, "user_id", evt.UserID, "error", err)
	}
}

func (s *slotService) record(operation string, dose model.DoseType, start time.Time, err error) {
	s.metrics.ObserveLatency(operation, s.now().Sub(start))

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.StatusCode() < 500 {
			outcome = metrics.OutcomeRejected
		}
	}
	s.metrics.IncrementBooking(operation, string(dose), outcome)
}
