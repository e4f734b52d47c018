package transition_appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	transitionAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_appointment"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *transitionAppointment.Request) (*transitionAppointment.Response, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*transitionAppointment.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func patch(h *Handler, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/status", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Cancel(t *testing.T) {
	uc := &mockUseCase{}
	start := time.Date(2025, time.June, 2, 17, 0, 0, 0, time.UTC)

	uc.On("Execute", mock.Anything, &transitionAppointment.Request{
		AppointmentID: 5, TargetStatus: domain.StatusCancelled, Reason: ptr.Ptr("sick"),
	}).Return(&transitionAppointment.Response{
		Appointment: &domain.Appointment{
			ID: 5, StartTime: start, EndTime: start.Add(time.Hour),
			Status: domain.StatusCancelled, CancellationReason: ptr.Ptr("sick"), CancelledAt: &start,
		},
		Changed: true,
	}, nil)

	rec := patch(NewHandler(uc, logger.NewNop()), "5", `{"status":"cancelled","reason":"sick"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "cancelled", body.Status)
	require.NotNil(t, body.CancelledAt)
	assert.Equal(t, "2025-06-02T17:00:00Z", *body.CancelledAt)
	uc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		err    error
		status int
	}{
		{name: "bad id", id: "abc", body: `{"status":"confirmed"}`, status: http.StatusBadRequest},
		{name: "bad body", id: "5", body: `{`, status: http.StatusBadRequest},
		{name: "not found", id: "5", body: `{"status":"confirmed"}`, err: transitionAppointment.ErrAppointmentNotFound, status: http.StatusNotFound},
		{name: "invalid transition", id: "5", body: `{"status":"confirmed"}`, err: transitionAppointment.ErrInvalidTransition, status: http.StatusConflict},
		{name: "complete", id: "5", body: `{"status":"completed"}`, err: transitionAppointment.ErrCompleteViaCheckout, status: http.StatusConflict},
		{name: "slot taken", id: "5", body: `{"status":"confirmed"}`, err: transitionAppointment.ErrSlotNotAvailable, status: http.StatusConflict},
		{name: "slot invalid", id: "5", body: `{"status":"confirmed"}`, err: transitionAppointment.ErrSlotNoLongerValid, status: http.StatusConflict},
		{name: "invalid input", id: "5", body: `{"status":"nope"}`, err: transitionAppointment.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "internal", id: "5", body: `{"status":"confirmed"}`, err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			if tt.err != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := patch(NewHandler(uc, logger.NewNop()), tt.id, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			if tt.err == nil {
				uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
			}
		})
	}
}
