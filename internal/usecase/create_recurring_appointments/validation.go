package create_recurring_appointments

import (
	"fmt"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.ProfessionalID <= 0 {
		return fmt.Errorf("%w: professionalID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ClientName == "" {
		return fmt.Errorf("%w: clientName is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.EndDate.IsZero() {
		return fmt.Errorf("%w: endDate is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}
	// Запись не может пересекать полночь
	if _, err := req.StartTime.AddMinutes(req.DurationMinutes); err != nil {
		return fmt.Errorf("%w: appointment must end within the same day", ErrInvalidInput)
	}

	if !domain.RecurrenceFrequency(req.Frequency).IsValid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, req.Frequency)
	}

	return nil
}

// validateWithinWorkingHours проверяет, что окно повторения целиком помещается
// в рабочие часы мастера и не пересекается с обеденным перерывом
func validateWithinWorkingHours(schedule domain.DaySchedule, startTime types.TimeString, durationMinutes int) error {
	if !schedule.IsOpen {
		return ErrOutOfWorkingHours
	}

	endTime, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return fmt.Errorf("%w: appointment must end within the same day", ErrInvalidInput)
	}

	if startTime.IsBefore(schedule.OpenTime) || endTime.IsAfter(schedule.CloseTime) {
		return fmt.Errorf("%w: %s-%s is outside %s-%s",
			ErrOutOfWorkingHours, startTime, endTime, schedule.OpenTime, schedule.CloseTime)
	}

	if schedule.HasLunch() {
		if startTime.IsBefore(*schedule.LunchEnd) && endTime.IsAfter(*schedule.LunchStart) {
			return fmt.Errorf("%w: %s-%s overlaps lunch break %s-%s",
				ErrOutOfWorkingHours, startTime, endTime, *schedule.LunchStart, *schedule.LunchEnd)
		}
	}

	return nil
}
