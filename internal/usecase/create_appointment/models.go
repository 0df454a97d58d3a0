package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	ClientID        int64            // ID клиента (из заголовка авторизации)
	ProfessionalID  int64            // ID мастера
	ServiceID       int64            // ID услуги
	ClientName      string           // Имя клиента для календаря мастера
	ClientPhone     *string          // Телефон клиента (опционально)
	Date            time.Time        // Дата записи (без времени)
	StartTime       types.TimeString // Время начала (например, "10:00")
	DurationMinutes int              // Длительность услуги в минутах
	ServiceName     string           // Название услуги (денормализация)
	ServicePrice    float64          // Цена услуги (денормализация)
	Notes           *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID              int64            // ID созданной записи
	PublicCode      uuid.UUID        // Публичный код для страницы онлайн-записи
	ClientID        int64            // ID клиента
	ProfessionalID  int64            // ID мастера
	ServiceID       int64            // ID услуги
	Date            time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи

	// Денормализованные данные
	ServiceName  string  // Название услуги
	ServicePrice float64 // Цена услуги
	Notes        *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
