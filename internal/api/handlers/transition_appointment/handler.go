package transition_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	transitionAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись не найдена"
	msgInvalidTransition    = "изменение статуса недоступно для этой записи"
	msgCompleteViaCheckout  = "запись завершается только оплатой"
	msgSlotNotAvailable     = "это время только что заняли, выберите другое"
	msgSlotNoLongerValid    = "время записи больше недоступно"
	msgInvalidInput         = "некорректные данные запроса"
)

type Handler struct {
	useCase TransitionAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase TransitionAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(appointmentID))
	if err != nil {
		switch {
		case errors.Is(err, transitionAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/status - Appointment not found: id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transitionAppointment.ErrCompleteViaCheckout):
			h.logger.Warn("PATCH /appointments/{id}/status - Completion requested directly: id=%d", appointmentID)
			handlers.RespondConflict(w, msgCompleteViaCheckout)

		case errors.Is(err, transitionAppointment.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/status - Invalid transition: id=%d, target=%s, error=%v",
				appointmentID, req.Status, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, transitionAppointment.ErrSlotNotAvailable):
			h.logger.Warn("PATCH /appointments/{id}/status - Slot taken on confirm: id=%d", appointmentID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, transitionAppointment.ErrSlotNoLongerValid):
			h.logger.Warn("PATCH /appointments/{id}/status - Slot no longer valid: id=%d, error=%v", appointmentID, err)
			handlers.RespondConflict(w, msgSlotNoLongerValid)

		case errors.Is(err, transitionAppointment.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/status - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /appointments/{id}/status - Failed to change status: id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/status - Status updated: id=%d, status=%s, changed=%t",
		appointmentID, result.Appointment.Status, result.Changed)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result.Appointment))
}
