package get_appointment_by_code

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SLN-BookingService/internal/api/handlers"
	"github.com/m04kA/SLN-BookingService/internal/service/appointments"
)

const (
	msgInvalidPublicCode = "некорректный публичный код записи"
	msgNotFound          = "запись не найдена"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/public/appointments/{publicCode}
// Публичный эндпоинт: сам код является токеном доступа к записи.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	code, err := uuid.Parse(vars["publicCode"])
	if err != nil {
		h.logger.Warn("GET /public/appointments/{code} - Invalid public code: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPublicCode)
		return
	}

	appointment, err := h.service.GetByPublicCode(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("GET /public/appointments/{code} - Appointment not found: code=%s", code)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /public/appointments/{code} - Failed to get appointment: code=%s, error=%v", code, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /public/appointments/{code} - Appointment retrieved successfully: code=%s", code)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
