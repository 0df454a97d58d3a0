package create_recurring_appointments

import (
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	createRecurring "github.com/m04kA/SLN-BookingService/internal/usecase/create_recurring_appointments"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// CreateRecurringRequest HTTP request model
type CreateRecurringRequest struct {
	ProfessionalID  int64   `json:"professionalId"`
	ServiceID       int64   `json:"serviceId"`
	ClientName      string  `json:"clientName"`
	ClientPhone     *string `json:"clientPhone,omitempty"`
	Date            string  `json:"date"`      // дата первой записи, "2025-10-15"
	StartTime       string  `json:"startTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	Frequency       string  `json:"frequency"` // weekly, biweekly, monthly
	EndDate         string  `json:"endDate"`   // конечная дата серии, включительно
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	Notes           *string `json:"notes,omitempty"`
}

// OccurrenceResponse одно повторение серии
type OccurrenceResponse struct {
	ID         int64  `json:"id"`
	PublicCode string `json:"publicCode"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
}

// RecurringSeriesResponse HTTP response model.
// Warning заполняется кодом LIMIT_EXCEEDED, если серия обрезана по лимиту
// повторений раньше конечной даты - фронтенд показывает предупреждение.
type RecurringSeriesResponse struct {
	RecurrenceGroupID string               `json:"recurrenceGroupId"`
	ProfessionalID    int64                `json:"professionalId"`
	Frequency         string               `json:"frequency"`
	Occurrences       []OccurrenceResponse `json:"occurrences"`
	Truncated         bool                 `json:"truncated"`
	Warning           *string              `json:"warning,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateRecurringRequest) ToUseCaseRequest(clientID int64) (*createRecurring.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createRecurring.Request{
		ClientID:        clientID,
		ProfessionalID:  r.ProfessionalID,
		ServiceID:       r.ServiceID,
		ClientName:      r.ClientName,
		ClientPhone:     r.ClientPhone,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
		Frequency:       r.Frequency,
		EndDate:         endDate,
		ServiceName:     r.ServiceName,
		ServicePrice:    r.ServicePrice,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createRecurring.Response, warningCode string) *RecurringSeriesResponse {
	occurrences := make([]OccurrenceResponse, len(resp.Occurrences))
	for i, occ := range resp.Occurrences {
		occurrences[i] = OccurrenceResponse{
			ID:         occ.ID,
			PublicCode: occ.PublicCode.String(),
			Date:       occ.Date.Format(domain.DateFormat),
			StartTime:  occ.StartTime.String(),
		}
	}

	result := &RecurringSeriesResponse{
		RecurrenceGroupID: resp.RecurrenceGroupID.String(),
		ProfessionalID:    resp.ProfessionalID,
		Frequency:         resp.Frequency,
		Occurrences:       occurrences,
		Truncated:         resp.Truncated,
	}

	if resp.Truncated {
		result.Warning = &warningCode
	}

	return result
}
