package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"vaxbook/pkg/model"
)

// APIError is a non-2xx answer from the booking API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vaxbook api: %d %s", e.StatusCode, e.Message)
}

// Booking is the registration state returned by slot booking calls.
type Booking struct {
	UserID            string                  `json:"user_id"`
	SlotID            string                  `json:"slot_id"`
	VaccinationStatus model.VaccinationStatus `json:"vaccination_status"`
}

// API is a typed client for the booking service.
type API struct {
	http *HttpClient
}

func NewAPI(baseURL string) *API {
	return &API{http: NewHttpClient(baseURL)}
}

// WithHTTPClient swaps the underlying transport, e.g. for httptest servers.
func (a *API) WithHTTPClient(c *http.Client) *API {
	a.http.HTTPClient = c
	return a
}

func (a *API) RegisterUser(ctx context.Context, reg model.UserRegistration) (string, error) {
	var data struct {
		UserID string `json:"user_id"`
	}
	if err := a.call(ctx, http.MethodPost, "/api/users/register", reg, &data); err != nil {
		return "", err
	}
	return data.UserID, nil
}

func (a *API) Login(ctx context.Context, login model.UserLogin) (string, error) {
	var data struct {
		UserID string `json:"user_id"`
	}
	if err := a.call(ctx, http.MethodPost, "/api/users/login", login, &data); err != nil {
		return "", err
	}
	return data.UserID, nil
}

func (a *API) AvailableSlots(ctx context.Context, userID string) ([]model.AvailableSlot, error) {
	var slots []model.AvailableSlot
	path := "/api/slots/available?user_id=" + url.QueryEscape(userID)
	if err := a.call(ctx, http.MethodGet, path, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (a *API) RegisterSlot(ctx context.Context, userID, slotID string) (*Booking, error) {
	var b Booking
	req := model.SlotRegistration{UserID: userID, SlotID: slotID}
	if err := a.call(ctx, http.MethodPost, "/api/slots/register", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *API) Rebook(ctx context.Context, userID, currentSlotID, newSlotID string) (*Booking, error) {
	var b Booking
	req := model.SlotRebook{UserID: userID, NewSlotID: newSlotID}
	if err := a.call(ctx, http.MethodPut, "/api/slots/"+url.PathEscape(currentSlotID), req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *API) AdminLogin(ctx context.Context, username, password string) error {
	return a.call(ctx, http.MethodPost, "/api/admin/login", model.AdminLogin{Username: username, Password: password}, nil)
}

func (a *API) TotalUsers(ctx context.Context, filter model.UserFilter) (int64, error) {
	q := url.Values{}
	if filter.Age != nil {
		q.Set("age", strconv.Itoa(*filter.Age))
	}
	if filter.Pincode != "" {
		q.Set("pincode", filter.Pincode)
	}
	if filter.VaccinationStatus != "" {
		q.Set("vaccination_status", string(filter.VaccinationStatus))
	}

	path := "/api/admin/users/total"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var data struct {
		TotalUsers int64 `json:"total_users"`
	}
	if err := a.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return 0, err
	}
	return data.TotalUsers, nil
}

// SlotsByDate takes a YYYY-MM-DD date.
func (a *API) SlotsByDate(ctx context.Context, date string) (*model.SlotsByDate, error) {
	var slots model.SlotsByDate
	if err := a.call(ctx, http.MethodGet, "/api/admin/slots/"+url.PathEscape(date), nil, &slots); err != nil {
		return nil, err
	}
	return &slots, nil
}

func (a *API) CreateSlot(ctx context.Context, req model.SlotCreate) (*model.Slot, error) {
	var slot model.Slot
	if err := a.call(ctx, http.MethodPost, "/api/admin/slots", req, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (a *API) call(ctx context.Context, method, path string, body, data any) error {
	resp, err := a.http.request(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: GetMessage(resp)}
	}
	if data == nil {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("response from %s %s has no data", method, path)
	}
	return json.Unmarshal(envelope.Data, data)
}
