package create

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

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateFeedback(ctx context.Context, f models.Feedback) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateFeedbackHandler_ServeHTTP(t *testing.T) {
	analysisID := 5

	tests := []struct {
		name           string
		body           []byte
		withUser       bool
		mockFeedback   models.Feedback
		mockID         int
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:     "feedback with analysis reference",
			body:     []byte(`{"analysis_id": 5, "rating": 4, "comment": "diagnosis was accurate"}`),
			withUser: true,
			mockFeedback: models.Feedback{
				UserUID:    "uid-1",
				Username:   "grower1",
				AnalysisID: &analysisID,
				Rating:     4,
				Comment:    "diagnosis was accurate",
				Status:     models.FeedbackStatusNew,
			},
			mockID:         3,
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:     "feedback without analysis reference",
			body:     []byte(`{"rating": 5, "comment": "great service"}`),
			withUser: true,
			mockFeedback: models.Feedback{
				UserUID:  "uid-1",
				Username: "grower1",
				Rating:   5,
				Comment:  "great service",
				Status:   models.FeedbackStatusNew,
			},
			mockID:         4,
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "rating out of range",
			body:           []byte(`{"rating": 9, "comment": "x"}`),
			withUser:       true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Rating is too long",
		},
		{
			name:           "no user in context",
			body:           []byte(`{"rating": 4, "comment": "ok"}`),
			withUser:       false,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:     "storage error",
			body:     []byte(`{"rating": 4, "comment": "ok"}`),
			withUser: true,
			mockFeedback: models.Feedback{
				UserUID:  "uid-1",
				Username: "grower1",
				Rating:   4,
				Comment:  "ok",
				Status:   models.FeedbackStatusNew,
			},
			mockErr:        errors.New("db down"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not create feedback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockCalled {
				serviceMock.On("CreateFeedback", mock.Anything, tt.mockFeedback).
					Return(tt.mockID, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
				ctx = context.WithValue(ctx, middlewarectx.User, "grower1")
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

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
				assert.Equal(t, float64(tt.mockID), data["id"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
