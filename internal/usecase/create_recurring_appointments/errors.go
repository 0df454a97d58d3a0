package create_recurring_appointments

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у мастера нет настроенного расписания
	ErrScheduleNotFound = errors.New("create_recurring_appointments: professional has no working hours")

	// ErrPastBooking возвращается при попытке записи на прошедшее время
	ErrPastBooking = errors.New("create_recurring_appointments: anchor slot is in the past")

	// ErrInvalidRange возвращается, когда конечная дата серии раньше первой записи
	ErrInvalidRange = errors.New("create_recurring_appointments: end date must be after start date")

	// ErrSeriesConflict возвращается, когда одно из повторений пересекается с
	// существующей записью. Вся серия отклоняется целиком.
	ErrSeriesConflict = errors.New("create_recurring_appointments: series occurrence conflicts with an existing appointment")

	// ErrOutOfWorkingHours возвращается, когда одно из повторений выходит за
	// рабочие часы мастера. Вся серия отклоняется целиком.
	ErrOutOfWorkingHours = errors.New("create_recurring_appointments: series occurrence is out of working hours")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_recurring_appointments: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_recurring_appointments: internal error")
)
