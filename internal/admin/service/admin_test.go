package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	slotserrors "vaxbook/internal/slots/errors"
	userserrors "vaxbook/internal/users/errors"
	"vaxbook/pkg/config"
	apperrors "vaxbook/pkg/errors"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"
	"vaxbook/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSlotRepository struct {
	mu        sync.Mutex
	rangeFunc func(start, end time.Time, dose *model.DoseType) ([]*model.Slot, error)
	starts    []time.Time
}

func (m *mockSlotRepository) Create(ctx context.Context, slot *model.Slot) error { return nil }

func (m *mockSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	return nil, slotserrors.ErrNotFound
}

func (m *mockSlotRepository) FindByDateRange(ctx context.Context, start, end time.Time, dose *model.DoseType) ([]*model.Slot, error) {
	m.mu.Lock()
	m.starts = append(m.starts, start)
	m.mu.Unlock()
	return m.rangeFunc(start, end, dose)
}

func (m *mockSlotRepository) AddRegistrant(ctx context.Context, slotID, userID string) error {
	return nil
}

func (m *mockSlotRepository) RemoveRegistrant(ctx context.Context, slotID, userID string) error {
	return nil
}

type mockUserRepository struct {
	countFunc func(filter model.UserFilter) (int64, error)
	users     map[string]*model.User
	requested []string
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	m.requested = ids
	var out []*model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) UpdateBooking(ctx context.Context, id string, slotID string, status model.VaccinationStatus) error {
	return nil
}

func (m *mockUserRepository) Count(ctx context.Context, filter model.UserFilter) (int64, error) {
	return m.countFunc(filter)
}

func newTestService(users *mockUserRepository, slots *mockSlotRepository) *adminService {
	return &adminService{
		users:    users,
		slots:    slots,
		validate: validation.New(),
		cfg: &config.Config{
			Log:           logger.Discard(),
			AdminUsername: "admin",
			AdminPassword: "adminpassword",
			Location:      time.UTC,
		},
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.StatusCode()
}

func TestLogin(t *testing.T) {
	svc := newTestService(&mockUserRepository{}, &mockSlotRepository{})

	require.NoError(t, svc.Login(context.Background(), &model.AdminLogin{Username: "admin", Password: "adminpassword"}))

	err := svc.Login(context.Background(), &model.AdminLogin{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Equal(t, "Invalid admin credentials", apperrors.AsAppError(err).Message)

	err = svc.Login(context.Background(), &model.AdminLogin{Username: "admin"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestCountUsers(t *testing.T) {
	var got model.UserFilter
	users := &mockUserRepository{
		countFunc: func(filter model.UserFilter) (int64, error) {
			got = filter
			return 42, nil
		},
	}
	svc := newTestService(users, &mockSlotRepository{})

	age := 30
	count, err := svc.CountUsers(context.Background(), model.UserFilter{Age: &age, VaccinationStatus: model.StatusAllCompleted})
	require.NoError(t, err)
	assert.EqualValues(t, 42, count)
	assert.Equal(t, model.StatusAllCompleted, got.VaccinationStatus)
}

func TestCountUsers_InvalidFilter(t *testing.T) {
	svc := newTestService(&mockUserRepository{
		countFunc: func(filter model.UserFilter) (int64, error) {
			t.Fatal("storage must not be queried")
			return 0, nil
		},
	}, &mockSlotRepository{})

	_, err := svc.CountUsers(context.Background(), model.UserFilter{VaccinationStatus: "half-done"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	age := -1
	_, err = svc.CountUsers(context.Background(), model.UserFilter{Age: &age})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestCountUsers_StorageError(t *testing.T) {
	svc := newTestService(&mockUserRepository{
		countFunc: func(filter model.UserFilter) (int64, error) {
			return 0, errors.New("server selection timeout")
		},
	}, &mockSlotRepository{})

	_, err := svc.CountUsers(context.Background(), model.UserFilter{})
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestSlotsByDate_GroupsAndResolvesUsers(t *testing.T) {
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	firstSlot := &model.Slot{ID: "s1", Date: day, DoseType: model.DoseFirst, Capacity: 10, RegisteredUsers: []string{"u1", "u2"}}
	secondSlot := &model.Slot{ID: "s2", Date: day, DoseType: model.DoseSecond, Capacity: 10, RegisteredUsers: []string{"u2", "ghost"}}

	slots := &mockSlotRepository{
		rangeFunc: func(start, end time.Time, dose *model.DoseType) ([]*model.Slot, error) {
			switch {
			case dose == nil:
				return []*model.Slot{firstSlot, secondSlot}, nil
			case *dose == model.DoseFirst:
				return []*model.Slot{firstSlot}, nil
			default:
				return []*model.Slot{secondSlot}, nil
			}
		},
	}
	users := &mockUserRepository{users: map[string]*model.User{
		"u1": {ID: "u1", Name: "Asha", Password: "secret"},
		"u2": {ID: "u2", Name: "Ravi", Password: "secret"},
	}}
	svc := newTestService(users, slots)

	result, err := svc.SlotsByDate(context.Background(), day.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "2026-04-02", result.Date)
	require.Len(t, result.FirstDose, 1)
	require.Len(t, result.SecondDose, 1)
	require.Len(t, result.Total, 2)

	assert.Equal(t, []string{"u1", "u2", "ghost"}, users.requested)
	assert.Len(t, result.FirstDose[0].Users, 2)
	require.Len(t, result.SecondDose[0].Users, 1)
	assert.Equal(t, "Ravi", result.SecondDose[0].Users[0].Name)

	for _, start := range slots.starts {
		assert.True(t, start.Equal(day), "queries should start at midnight, got %s", start)
	}
}

func TestSlotsByDate_QueryFailure(t *testing.T) {
	slots := &mockSlotRepository{
		rangeFunc: func(start, end time.Time, dose *model.DoseType) ([]*model.Slot, error) {
			if dose != nil && *dose == model.DoseSecond {
				return nil, errors.New("cursor killed")
			}
			return []*model.Slot{}, nil
		},
	}
	svc := newTestService(&mockUserRepository{}, slots)

	_, err := svc.SlotsByDate(context.Background(), time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}
