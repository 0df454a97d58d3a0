package create_recurring_appointments

import (
	"errors"
	"net/http"

	"github.com/m04kA/SLN-BookingService/internal/api/handlers"
	"github.com/m04kA/SLN-BookingService/internal/api/middleware"
	createRecurring "github.com/m04kA/SLN-BookingService/internal/usecase/create_recurring_appointments"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgScheduleNotFound   = "у мастера не настроено рабочее расписание"
	msgPastBooking        = "нельзя записаться на прошедшее время"
	msgInvalidRange       = "конечная дата серии должна быть позже начальной"
	msgSeriesConflict     = "одно из повторений серии пересекается с существующей записью"
	msgOutOfWorkingHours  = "одно из повторений серии выходит за рабочие часы мастера"
	msgInvalidInput       = "некорректные данные серии"
)

type Handler struct {
	useCase CreateRecurringAppointmentsUseCase
	logger  Logger
}

func NewHandler(useCase CreateRecurringAppointmentsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/recurring
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments/recurring - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateRecurringRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/recurring - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(clientID)
	if err != nil {
		h.logger.Warn("POST /appointments/recurring - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createRecurring.ErrSeriesConflict):
			h.logger.Warn("POST /appointments/recurring - Series conflict: client_id=%d, professional_id=%d, error=%v",
				clientID, req.ProfessionalID, err)
			handlers.RespondError(w, http.StatusConflict, handlers.CodeConflict, msgSeriesConflict)

		case errors.Is(err, createRecurring.ErrInvalidRange):
			h.logger.Warn("POST /appointments/recurring - Invalid range: client_id=%d, date=%s, end_date=%s",
				clientID, req.Date, req.EndDate)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodeInvalidRange, msgInvalidRange)

		case errors.Is(err, createRecurring.ErrPastBooking):
			h.logger.Warn("POST /appointments/recurring - Past booking: client_id=%d, professional_id=%d", clientID, req.ProfessionalID)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodePastBooking, msgPastBooking)

		case errors.Is(err, createRecurring.ErrScheduleNotFound):
			h.logger.Warn("POST /appointments/recurring - Schedule not found: professional_id=%d", req.ProfessionalID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		case errors.Is(err, createRecurring.ErrOutOfWorkingHours):
			h.logger.Warn("POST /appointments/recurring - Out of working hours: professional_id=%d, error=%v",
				req.ProfessionalID, err)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodeOutOfHours, msgOutOfWorkingHours)

		case errors.Is(err, createRecurring.ErrInvalidInput):
			h.logger.Warn("POST /appointments/recurring - Invalid input: client_id=%d, error=%v", clientID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments/recurring - Failed to create series: client_id=%d, professional_id=%d, error=%v",
				clientID, req.ProfessionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result, handlers.CodeLimitExceeded)

	h.logger.Info("POST /appointments/recurring - Series created successfully: group_id=%s, client_id=%d, occurrences=%d, truncated=%t",
		result.RecurrenceGroupID, clientID, len(result.Occurrences), result.Truncated)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
