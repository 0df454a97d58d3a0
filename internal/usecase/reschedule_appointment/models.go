package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// Request модель запроса на перенос записи
type Request struct {
	UserID        int64            // ID пользователя (клиент записи или мастер)
	AppointmentID int64            // ID переносимой записи
	NewDate       time.Time        // Новая дата (без времени)
	NewStartTime  types.TimeString // Новое время начала (например, "14:30")
}

// Response модель ответа с перенесенной записью
type Response struct {
	ID              int64            // ID записи
	ProfessionalID  int64            // ID мастера
	Date            time.Time        // Новая дата
	StartTime       types.TimeString // Новое время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи
}
