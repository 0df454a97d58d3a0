package notifyservice

// Типы событий, которые отправляются в сервис уведомлений
const (
	EventAppointmentCreated     = "appointment.created"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentConfirmed   = "appointment.confirmed"
)

// AppointmentEvent событие по записи для рассылки уведомлений
type AppointmentEvent struct {
	Event          string  `json:"event"`
	PublicCode     string  `json:"public_code"`
	ProfessionalID int64   `json:"professional_id"`
	ClientID       *int64  `json:"client_id,omitempty"`
	ClientName     string  `json:"client_name"`
	ClientPhone    *string `json:"client_phone,omitempty"`
	ServiceName    string  `json:"service_name"`
	Date           string  `json:"date"`       // YYYY-MM-DD
	StartTime      string  `json:"start_time"` // HH:MM
	Reason         *string `json:"reason,omitempty"`
}

// ErrorResponse модель ошибки от сервиса уведомлений
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
