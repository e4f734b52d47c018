package get_checkout_queue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) CheckoutQueue(ctx context.Context, businessID int64) (*models.AppointmentListResponse, error) {
	args := m.Called(ctx, businessID)
	if resp, ok := args.Get(0).(*models.AppointmentListResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func get(h *Handler, id string) *httptest.ResponseRecorder {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/businesses/"+id+"/checkout-queue", nil),
		map[string]string{"businessId": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	svc := &mockService{}
	svc.On("CheckoutQueue", mock.Anything, int64(7)).Return(&models.AppointmentListResponse{
		Appointments: []models.AppointmentResponse{{ID: 1, Status: "confirmed"}, {ID: 2, Status: "confirmed"}},
	}, nil)
	svc.On("CheckoutQueue", mock.Anything, int64(8)).Return(nil, errors.New("boom"))

	h := NewHandler(svc, logger.NewNop())

	rec := get(h, "7")
	require.Equal(t, http.StatusOK, rec.Code)
	var body []models.AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body, 2)

	assert.Equal(t, http.StatusInternalServerError, get(h, "8").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "x").Code)
}
