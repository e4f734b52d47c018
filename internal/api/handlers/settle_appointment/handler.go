package settle_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	settleAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/settle_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись не найдена"
	msgAlreadySettled       = "эта запись уже оплачена"
	msgNotEligible          = "запись нельзя оплатить: она не подтверждена"
	msgInvalidAmount        = "некорректная сумма оплаты"
	msgInvalidInput         = "некорректные данные оплаты"
)

type Handler struct {
	useCase SettleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase SettleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/settlement
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/settlement - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req SettleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/settlement - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(appointmentID))
	if err != nil {
		switch {
		case errors.Is(err, settleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/settlement - Appointment not found: id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, settleAppointment.ErrAlreadySettled):
			h.logger.Warn("POST /appointments/{id}/settlement - Already settled: id=%d", appointmentID)
			handlers.RespondConflict(w, msgAlreadySettled)

		case errors.Is(err, settleAppointment.ErrNotCheckoutEligible):
			h.logger.Warn("POST /appointments/{id}/settlement - Not eligible: id=%d, error=%v", appointmentID, err)
			handlers.RespondUnprocessable(w, msgNotEligible)

		case errors.Is(err, settleAppointment.ErrInvalidAmount):
			h.logger.Warn("POST /appointments/{id}/settlement - Invalid amount: id=%d, error=%v", appointmentID, err)
			handlers.RespondUnprocessable(w, msgInvalidAmount)

		case errors.Is(err, settleAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments/{id}/settlement - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments/{id}/settlement - Failed to settle: id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/settlement - Settled: id=%d, payment_id=%d, fee=%d",
		appointmentID, result.Payment.ID, result.Payment.PlatformFeeCents)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
