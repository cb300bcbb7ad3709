package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "vaxbook/pkg/errors"
	httputil "vaxbook/pkg/http"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	registerFunc func(ctx context.Context, reg *model.UserRegistration) (*model.User, error)
	loginFunc    func(ctx context.Context, login *model.UserLogin) (*model.User, error)
}

func (m *mockUserService) Register(ctx context.Context, reg *model.UserRegistration) (*model.User, error) {
	return m.registerFunc(ctx, reg)
}

func (m *mockUserService) Login(ctx context.Context, login *model.UserLogin) (*model.User, error) {
	return m.loginFunc(ctx, login)
}

func newRouter(svc *mockUserService) *httprouter.Router {
	router := httprouter.New()
	NewUserHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRegister_Created(t *testing.T) {
	var got *model.UserRegistration
	svc := &mockUserService{
		registerFunc: func(ctx context.Context, reg *model.UserRegistration) (*model.User, error) {
			got = reg
			return &model.User{ID: "65f1a2b3c4d5e6f708192a3b"}, nil
		},
	}

	body := `{"name":"Asha Rao","phoneNumber":"9876543210","age":34,"pincode":"560001","aadharNo":"123412341234","password":"s3cret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "User registered successfully", resp["message"])
	assert.Equal(t, "65f1a2b3c4d5e6f708192a3b", resp["data"].(map[string]any)["user_id"])
	require.NotNil(t, got)
	assert.Equal(t, "123412341234", got.AadharNo)
	require.NotNil(t, got.Age)
	assert.Equal(t, 34, *got.Age)
}

func TestRegister_MalformedBody(t *testing.T) {
	svc := &mockUserService{}

	for _, body := range []string{`{"name":`, `{"unknown":"field"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Invalid request body", decode(t, w)["message"])
	}
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockUserService{
		registerFunc: func(ctx context.Context, reg *model.UserRegistration) (*model.User, error) {
			return nil, apperrors.Conflict("Phone number already registered")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Phone number already registered", decode(t, w)["message"])
}

func TestLogin(t *testing.T) {
	svc := &mockUserService{
		loginFunc: func(ctx context.Context, login *model.UserLogin) (*model.User, error) {
			if login.Password != "s3cret!" {
				return nil, apperrors.Unauthorized("Invalid credentials")
			}
			return &model.User{ID: "65f1a2b3c4d5e6f708192a3b"}, nil
		},
	}

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{"success", `{"phoneNumber":"9876543210","password":"s3cret!"}`, http.StatusOK, "Login successful"},
		{"wrong password", `{"phoneNumber":"9876543210","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp httputil.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}
