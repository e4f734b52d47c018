package get_payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) GetPayment(ctx context.Context, appointmentID int64) (*models.PaymentResponse, error) {
	args := m.Called(ctx, appointmentID)
	if resp, ok := args.Get(0).(*models.PaymentResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandle(t *testing.T) {
	svc := &mockService{}
	svc.On("GetPayment", mock.Anything, int64(1)).Return(&models.PaymentResponse{ID: 10, AppointmentID: 1}, nil)
	svc.On("GetPayment", mock.Anything, int64(2)).Return(nil, appointments.ErrPaymentNotFound)
	svc.On("GetPayment", mock.Anything, int64(3)).Return(nil, appointments.ErrAppointmentNotFound)
	svc.On("GetPayment", mock.Anything, int64(4)).Return(nil, errors.New("boom"))

	h := NewHandler(svc, logger.NewNop())
	tests := []struct {
		id     string
		status int
	}{
		{id: "1", status: http.StatusOK},
		{id: "2", status: http.StatusNotFound},
		{id: "3", status: http.StatusNotFound},
		{id: "4", status: http.StatusInternalServerError},
		{id: "x", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/appointments/"+tt.id+"/payment", nil),
				map[string]string{"appointmentId": tt.id})
			rec := httptest.NewRecorder()
			h.Handle(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
