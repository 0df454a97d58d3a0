package create_appointment

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у мастера нет настроенного расписания
	ErrScheduleNotFound = errors.New("create_appointment: professional has no working hours")

	// ErrClosedDay возвращается, когда мастер не работает в указанную дату
	ErrClosedDay = errors.New("create_appointment: professional is closed on this date")

	// ErrOutOfWorkingHours возвращается, когда окно записи выходит за рабочие часы
	// или пересекается с обеденным перерывом
	ErrOutOfWorkingHours = errors.New("create_appointment: slot is out of working hours")

	// ErrPastBooking возвращается при попытке записи на прошедшее время
	ErrPastBooking = errors.New("create_appointment: slot is in the past")

	// ErrSlotConflict возвращается, когда окно пересекается с существующей записью
	ErrSlotConflict = errors.New("create_appointment: slot conflicts with an existing appointment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
