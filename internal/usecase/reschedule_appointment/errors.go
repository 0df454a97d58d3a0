package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("reschedule_appointment: access denied")

	// ErrCannotReschedule возвращается, когда запись нельзя перенести
	// (завершена, отменена или является блокировкой времени)
	ErrCannotReschedule = errors.New("reschedule_appointment: appointment cannot be rescheduled")

	// ErrPastBooking возвращается при попытке переноса на прошедшее время
	ErrPastBooking = errors.New("reschedule_appointment: new slot is in the past")

	// ErrOutOfHours возвращается, когда новое время вне допустимого коридора переноса
	ErrOutOfHours = errors.New("reschedule_appointment: new slot is outside the allowed hours")

	// ErrSlotConflict возвращается, когда новое окно пересекается с другой записью
	ErrSlotConflict = errors.New("reschedule_appointment: new slot conflicts with an existing appointment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
