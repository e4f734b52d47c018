package checkout_eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	checkoutEligibility "github.com/m04kA/SMC-SchedulingService/internal/usecase/checkout_eligibility"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *checkoutEligibility.Request) (*checkoutEligibility.Response, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*checkoutEligibility.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func get(h *Handler, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/"+id+"/checkout-eligibility", nil)
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	uc := &mockUseCase{}
	eligibleAt := time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, &checkoutEligibility.Request{AppointmentID: 4}).
		Return(&checkoutEligibility.Response{
			AppointmentID: 4, Status: domain.StatusConfirmed, Eligible: true, EligibleAt: eligibleAt,
		}, nil)
	uc.On("Execute", mock.Anything, &checkoutEligibility.Request{AppointmentID: 5}).
		Return(nil, checkoutEligibility.ErrAppointmentNotFound)
	uc.On("Execute", mock.Anything, &checkoutEligibility.Request{AppointmentID: 6}).
		Return(nil, errors.New("boom"))

	h := NewHandler(uc, logger.NewNop())

	rec := get(h, "4")
	require.Equal(t, http.StatusOK, rec.Code)
	var body EligibilityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Eligible)
	assert.Equal(t, "confirmed", body.Status)
	assert.True(t, eligibleAt.Equal(body.EligibleAt))

	assert.Equal(t, http.StatusNotFound, get(h, "5").Code)
	assert.Equal(t, http.StatusInternalServerError, get(h, "6").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "0").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "x").Code)
}
