package get_available_slots

import (
	"time"

	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ProfessionalID         int64     // ID мастера
	Date                   time.Time // Дата для получения слотов (без времени)
	ServiceDurationMinutes int       // Длительность услуги в минутах
}

// Response модель ответа со списком доступных слотов
type Response struct {
	ProfessionalID int64     // ID мастера
	Date           time.Time // Дата, на которую запрашивались слоты
	Slots          []Slot    // Список доступных слотов
}

// Slot модель доступного слота
type Slot struct {
	StartTime       types.TimeString // Время начала слота (например, "10:00")
	EndTime         types.TimeString // Время окончания слота
	DurationMinutes int              // Длительность слота в минутах
}
