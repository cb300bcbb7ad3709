package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "vaxbook/pkg/errors"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSlotService struct {
	registerFunc      func(ctx context.Context, req *model.SlotRegistration) (*model.User, error)
	rebookFunc        func(ctx context.Context, currentSlotID string, req *model.SlotRebook) (*model.User, error)
	listAvailableFunc func(ctx context.Context, userID string) ([]model.AvailableSlot, error)
}

func (m *mockSlotService) Register(ctx context.Context, req *model.SlotRegistration) (*model.User, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockSlotService) Rebook(ctx context.Context, currentSlotID string, req *model.SlotRebook) (*model.User, error) {
	return m.rebookFunc(ctx, currentSlotID, req)
}

func (m *mockSlotService) ListAvailable(ctx context.Context, userID string) ([]model.AvailableSlot, error) {
	return m.listAvailableFunc(ctx, userID)
}

func (m *mockSlotService) CreateSlot(ctx context.Context, req *model.SlotCreate) (*model.Slot, error) {
	return nil, apperrors.Internal("not used", nil)
}

func serve(svc *mockSlotService, method, target, body string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewSlotHandler(svc, logger.Discard()).RegisterRoutes(router)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestListAvailable(t *testing.T) {
	var gotUser string
	svc := &mockSlotService{
		listAvailableFunc: func(ctx context.Context, userID string) ([]model.AvailableSlot, error) {
			gotUser = userID
			return []model.AvailableSlot{{ID: "s1", DoseType: model.DoseSecond, Capacity: 10, Remaining: 4}}, nil
		},
	}

	w := serve(svc, http.MethodGet, "/api/slots/available?user_id=u1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", gotUser)

	var slots []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &slots))
	require.Len(t, slots, 1)
	assert.Equal(t, "second", slots[0]["dose_type"])
	assert.EqualValues(t, 4, slots[0]["available_doses"])
}

func TestListAvailable_EmptyIsArray(t *testing.T) {
	svc := &mockSlotService{
		listAvailableFunc: func(ctx context.Context, userID string) ([]model.AvailableSlot, error) {
			return []model.AvailableSlot{}, nil
		},
	}

	w := serve(svc, http.MethodGet, "/api/slots/available?user_id=u1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestRegister_Success(t *testing.T) {
	var got *model.SlotRegistration
	svc := &mockSlotService{
		registerFunc: func(ctx context.Context, req *model.SlotRegistration) (*model.User, error) {
			got = req
			return &model.User{ID: req.UserID, RegisteredSlot: req.SlotID, VaccinationStatus: model.StatusFirstDoseCompleted}, nil
		},
	}

	w := serve(svc, http.MethodPost, "/api/slots/register", `{"userId":"u1","slotId":"s1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "s1", got.SlotID)

	env := decode(t, w)
	assert.Equal(t, "User registered for the slot successfully", env.Message)
	assert.JSONEq(t, `{"user_id":"u1","slot_id":"s1","vaccination_status":"first-dose-completed"}`, string(env.Data))
}

func TestRegister_SlotFull(t *testing.T) {
	svc := &mockSlotService{
		registerFunc: func(ctx context.Context, req *model.SlotRegistration) (*model.User, error) {
			return nil, apperrors.BadRequest("Slot is full")
		},
	}

	w := serve(svc, http.MethodPost, "/api/slots/register", `{"userId":"u1","slotId":"s1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Slot is full", decode(t, w).Message)
}

func TestRegister_MalformedBody(t *testing.T) {
	called := false
	svc := &mockSlotService{
		registerFunc: func(ctx context.Context, req *model.SlotRegistration) (*model.User, error) {
			called = true
			return nil, nil
		},
	}

	w := serve(svc, http.MethodPost, "/api/slots/register", `{"userId":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestRebook_PassesPathSlot(t *testing.T) {
	var gotCurrent string
	svc := &mockSlotService{
		rebookFunc: func(ctx context.Context, currentSlotID string, req *model.SlotRebook) (*model.User, error) {
			gotCurrent = currentSlotID
			return &model.User{ID: req.UserID, RegisteredSlot: req.NewSlotID, VaccinationStatus: model.StatusAllCompleted}, nil
		},
	}

	w := serve(svc, http.MethodPut, "/api/slots/s1", `{"userId":"u1","newSlotId":"s2"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", gotCurrent)
	env := decode(t, w)
	assert.Equal(t, "Slot updated successfully", env.Message)
	assert.JSONEq(t, `{"user_id":"u1","slot_id":"s2","vaccination_status":"all-completed"}`, string(env.Data))
}

func TestRebook_NotRegistered(t *testing.T) {
	svc := &mockSlotService{
		rebookFunc: func(ctx context.Context, currentSlotID string, req *model.SlotRebook) (*model.User, error) {
			return nil, apperrors.BadRequest("User is not registered for the current slot")
		},
	}

	w := serve(svc, http.MethodPut, "/api/slots/s9", `{"userId":"u1","newSlotId":"s2"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User is not registered for the current slot", decode(t, w).Message)
}

func TestInternalErrorHidesCause(t *testing.T) {
	svc := &mockSlotService{
		registerFunc: func(ctx context.Context, req *model.SlotRegistration) (*model.User, error) {
			return nil, apperrors.Internal("Failed to update slot", context.DeadlineExceeded)
		},
	}

	w := serve(svc, http.MethodPost, "/api/slots/register", `{"userId":"u1","slotId":"s1"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "deadline")
}
