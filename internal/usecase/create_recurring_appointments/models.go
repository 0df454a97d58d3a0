package create_recurring_appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// Request модель запроса на создание повторяющейся серии записей
type Request struct {
	ClientID        int64            // ID клиента (из заголовка авторизации)
	ProfessionalID  int64            // ID мастера
	ServiceID       int64            // ID услуги
	ClientName      string           // Имя клиента для календаря мастера
	ClientPhone     *string          // Телефон клиента (опционально)
	Date            time.Time        // Дата первой записи (без времени)
	StartTime       types.TimeString // Время начала (например, "10:00")
	DurationMinutes int              // Длительность услуги в минутах
	Frequency       string           // Частота: weekly, biweekly, monthly
	EndDate         time.Time        // Конечная дата серии (включительно)
	ServiceName     string           // Название услуги (денормализация)
	ServicePrice    float64          // Цена услуги (денормализация)
	Notes           *string          // Дополнительные заметки (опционально)
}

// Occurrence одно повторение созданной серии
type Occurrence struct {
	ID         int64            // ID записи
	PublicCode uuid.UUID        // Публичный код записи
	Date       time.Time        // Дата повторения
	StartTime  types.TimeString // Время начала
}

// Response модель ответа с созданной серией
type Response struct {
	RecurrenceGroupID uuid.UUID    // Общий идентификатор серии
	ProfessionalID    int64        // ID мастера
	Frequency         string       // Частота повторения
	Occurrences       []Occurrence // Созданные повторения в хронологическом порядке
	Truncated         bool         // Серия обрезана по лимиту повторений, не по конечной дате
}
