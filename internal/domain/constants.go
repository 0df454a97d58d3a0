package domain

// Default configuration values
const (
	DefaultSlotStepMinutes    = 15 // шаг генерации слотов на странице записи
	DefaultLeadTimeMinutes    = 15 // минимальный зазор между "сейчас" и началом слота
	DefaultMoveGuardStartHour = 8  // перенос записи разрешен не раньше 08:00
	DefaultMoveGuardEndHour   = 20 // и не позже 20:00
)

// Business validation constants
const (
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 480 // 8 hours
	MaxNotesLength            = 500
	MaxCancellationReasonLen  = 500
	MaxClientNameLength       = 120

	// MaxRecurrenceOccurrences жесткий предел расширения повторяющейся серии.
	// Защита от бесконечных циклов при некорректной конечной дате.
	MaxRecurrenceOccurrences = 52
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// NonOccupyingStatuses статусы, не занимающие календарь
// Используется при фильтрации для проверки пересечений
var NonOccupyingStatuses = []AppointmentStatus{
	StatusCancelled,
}
