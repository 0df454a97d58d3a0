package get_available_slots

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у мастера нет настроенного расписания
	ErrScheduleNotFound = errors.New("get_available_slots: professional has no working hours")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
