package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SLN-BookingService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	NewDate      string `json:"newDate"`      // "2025-10-15"
	NewStartTime string `json:"newStartTime"` // "14:30"
}

// RescheduleResponse HTTP response model
type RescheduleResponse struct {
	ID              int64  `json:"id"`
	ProfessionalID  int64  `json:"professionalId"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(userID int64, appointmentID int64) (*rescheduleAppointment.Request, error) {
	newDate, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, err
	}

	newStartTime, err := types.NewTimeStringFromString(r.NewStartTime)
	if err != nil {
		return nil, err
	}

	return &rescheduleAppointment.Request{
		UserID:        userID,
		AppointmentID: appointmentID,
		NewDate:       newDate,
		NewStartTime:  newStartTime,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *RescheduleResponse {
	return &RescheduleResponse{
		ID:              resp.ID,
		ProfessionalID:  resp.ProfessionalID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
	}
}
