package usertoggle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SetUserActive(ctx context.Context, userUID string, isActive bool) (int, error) {
	args := m.Called(ctx, userUID, isActive)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequestWithUID(t *testing.T, uid string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/admin/users/"+uid+"/status", bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uid", uid)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUserToggleHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		uid            string
		body           []byte
		mockUpdated    int
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "disable user",
			uid:            "uid-1",
			body:           []byte(`{"is_active": false}`),
			mockUpdated:    1,
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown user",
			uid:            "uid-missing",
			body:           []byte(`{"is_active": true}`),
			mockUpdated:    0,
			mockCalled:     true,
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
		},
		{
			name:           "invalid json",
			uid:            "uid-1",
			body:           []byte(`{bad`),
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "storage error",
			uid:            "uid-1",
			body:           []byte(`{"is_active": true}`),
			mockErr:        errors.New("db down"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not update user status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockCalled {
				serviceMock.On("SetUserActive", mock.Anything, tt.uid, mock.AnythingOfType("bool")).
					Return(tt.mockUpdated, tt.mockErr).Once()
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequestWithUID(t, tt.uid, tt.body))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.uid, data["uid"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
