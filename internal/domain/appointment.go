package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	// StatusBlocked помечает слот, созданный мастером вручную для блокировки
	// времени в календаре (обед, перерыв, личные дела). Это не клиентская
	// запись, но слот занимает календарь наравне с остальными.
	StatusBlocked AppointmentStatus = "blocked"
)

// Appointment represents a slot in a professional's calendar:
// a client booking or a manual time block
type Appointment struct {
	ID             int64
	PublicCode     uuid.UUID // публичный код для страницы онлайн-записи
	ProfessionalID int64
	ServiceID      *int64 // nil для блокировок времени

	ClientID    *int64
	ClientName  string
	ClientPhone *string

	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	Notes        *string

	// Series membership: all occurrences of one recurring booking share a group
	RecurrenceGroupID *uuid.UUID

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Occupies returns true if the appointment counts toward conflict detection.
// Единое правило занятости: календарь занимают все статусы, кроме cancelled.
// Completed остается занимающим - завершенный слот в прошлом и с будущими
// кандидатами пересечься все равно не может.
func (a *Appointment) Occupies() bool {
	return a.Status != StatusCancelled
}

// IsBlock returns true if the appointment is a manual time block, not a client booking
func (a *Appointment) IsBlock() bool {
	return a.Status == StatusBlocked
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return !a.IsTerminal() && !a.IsBlock()
}

// CanBeRescheduled returns true if the appointment can be moved to another time
func (a *Appointment) CanBeRescheduled() bool {
	return !a.IsTerminal() && !a.IsBlock()
}

// IsTerminal returns true if no further status transitions are allowed
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// CanTransitionTo validates the appointment status state machine:
// pending -> confirmed -> completed; pending|confirmed -> cancelled;
// blocked and the terminal statuses do not transition. Completion
// requires a prior confirmation, there is no pending -> completed shortcut.
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	switch a.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// ProfessionalAgendaFilter фильтр для выборки записей мастера
type ProfessionalAgendaFilter struct {
	ProfessionalID int64              // Обязательный параметр
	StartDate      *time.Time         // Начало периода (опционально)
	EndDate        *time.Time         // Конец периода (опционально)
	Status         *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeAll     bool               // Включать ли отмененные записи
}
