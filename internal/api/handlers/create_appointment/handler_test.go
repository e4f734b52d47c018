package create_appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*createAppointment.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

const validBody = `{"businessId":7,"clientId":100,"serviceId":3,"startTime":"2025-06-02T18:15:00Z","initialStatus":"pending"}`

func post(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &mockUseCase{}
	start := time.Date(2025, time.June, 2, 18, 15, 0, 0, time.UTC)

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createAppointment.Request) bool {
		return req.BusinessID == 7 && req.ClientID == 100 && req.ServiceID == 3 &&
			req.StartTime.Equal(start) && req.InitialStatus == domain.StatusPending
	})).Return(&createAppointment.Response{Appointment: &domain.Appointment{
		ID: 1, BusinessID: 7, ClientID: 100, ServiceID: 3,
		StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusPending,
		ServiceName: "Haircut", PriceCents: 12000,
	}}, nil)

	rec := post(NewHandler(uc, logger.NewNop()), validBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body models.AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(1), body.ID)
	assert.Equal(t, "pending", body.Status)
	assert.Equal(t, 60, body.DurationMinutes)
	uc.AssertExpectations(t)
}

func TestHandle_BadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"businessId":`},
		{name: "bad start time", body: `{"businessId":7,"clientId":1,"serviceId":3,"startTime":"2025-06-02 18:15","initialStatus":"pending"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			rec := post(NewHandler(uc, logger.NewNop()), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_UseCaseErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "conflict", err: createAppointment.ErrSlotNotAvailable, status: http.StatusConflict},
		{name: "business", err: createAppointment.ErrBusinessNotFound, status: http.StatusNotFound},
		{name: "service", err: createAppointment.ErrServiceNotFound, status: http.StatusNotFound},
		{name: "off grid", err: createAppointment.ErrInvalidTimeSlot, status: http.StatusBadRequest},
		{name: "too late", err: createAppointment.ErrTooLateToBook, status: http.StatusBadRequest},
		{name: "too far", err: createAppointment.ErrDateTooFarInFuture, status: http.StatusBadRequest},
		{name: "invalid", err: createAppointment.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "internal", err: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := post(NewHandler(uc, logger.NewNop()), validBody)
			assert.Equal(t, tt.status, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}
