package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
)

// OccupiedWindow занятое окно вместе с идентификатором записи
// Идентификатор нужен для self-exclusion при переносе
type OccupiedWindow struct {
	AppointmentID int64
	Window        TimeWindow
}

// MoveGuard допустимый коридор часов для переноса записи (drag-and-drop)
// Запись нельзя перетащить на время, начинающееся вне [StartHour, EndHour)
type MoveGuard struct {
	StartHour int
	EndHour   int
}

// DefaultMoveGuard возвращает коридор 08:00-20:00
func DefaultMoveGuard() MoveGuard {
	return MoveGuard{
		StartHour: domain.DefaultMoveGuardStartHour,
		EndHour:   domain.DefaultMoveGuardEndHour,
	}
}

// SeriesValidation результат успешной валидации повторяющейся серии
type SeriesValidation struct {
	Occurrences []TimeWindow
	Truncated   bool
}

// Scheduler оркестратор валидации бронирований. Чистое вычисление без
// ввода-вывода: занятые окна и текущее время передаются параметрами,
// состояние между вызовами не хранится.
type Scheduler struct {
	guard MoveGuard
}

// NewScheduler creates a scheduler with the given move guard
func NewScheduler(guard MoveGuard) *Scheduler {
	return &Scheduler{guard: guard}
}

// ValidateSingle validates a single booking candidate against the
// professional's occupied windows. Возвращает nil при успехе.
func (s *Scheduler) ValidateSingle(candidate TimeWindow, occupied []TimeWindow, now time.Time) *Rejection {
	if candidate.Start.Before(now) {
		return newRejection(ReasonPastBooking,
			fmt.Sprintf("время начала %s уже прошло", candidate.Start.Format("2006-01-02 15:04")))
	}

	if conflict, found := FirstConflict(candidate, occupied); found {
		r := newRejection(ReasonConflict,
			fmt.Sprintf("время %s пересекается с существующей записью %s", candidate, conflict))
		r.ConflictWith = &conflict
		return r
	}

	return nil
}

// ValidateRecurring validates and materializes a recurring series.
//
// Порядок проверок: PAST_BOOKING по якорю, INVALID_RANGE по конечной дате,
// затем конфликт для каждого повторения. Проверка идет последовательно:
// принятые повторения добавляются к занятым окнам, поэтому серия не может
// пересечься сама с собой (например, monthly-арифметика коротких месяцев).
// На первом же конфликте вся серия отклоняется с указанием даты повторения.
func (s *Scheduler) ValidateRecurring(
	anchor TimeWindow,
	spec domain.RecurrenceSpec,
	occupied []TimeWindow,
	now time.Time,
) (*SeriesValidation, *Rejection) {
	if anchor.Start.Before(now) {
		return nil, newRejection(ReasonPastBooking,
			fmt.Sprintf("время начала %s уже прошло", anchor.Start.Format("2006-01-02 15:04")))
	}

	exp := Expand(anchor, spec)
	if len(exp.Occurrences) == 0 {
		return nil, newRejection(ReasonInvalidRange,
			fmt.Sprintf("конечная дата %s раньше даты первой записи", spec.EndDate.Format(domain.DateFormat)))
	}

	// Копия, чтобы не мутировать слайс вызывающего
	taken := make([]TimeWindow, len(occupied), len(occupied)+len(exp.Occurrences))
	copy(taken, occupied)

	for i, occurrence := range exp.Occurrences {
		if conflict, found := FirstConflict(occurrence, taken); found {
			r := newRejection(ReasonConflict,
				fmt.Sprintf("повторение на %s пересекается с существующей записью %s",
					occurrence.Start.Format("2006-01-02 15:04"), conflict))
			r.OccurrenceIndex = i
			r.ConflictWith = &conflict
			return nil, r
		}
		taken = append(taken, occurrence)
	}

	return &SeriesValidation{Occurrences: exp.Occurrences, Truncated: exp.Truncated}, nil
}

// ValidateMove validates a drag-and-drop reschedule of an existing
// appointment. Запись, которую переносят, исключается из занятых окон по
// идентификатору - перенос на собственное текущее время не конфликт.
func (s *Scheduler) ValidateMove(
	appointmentID int64,
	newWindow TimeWindow,
	occupied []OccupiedWindow,
	now time.Time,
) *Rejection {
	if newWindow.Start.Before(now) {
		return newRejection(ReasonPastBooking,
			fmt.Sprintf("время начала %s уже прошло", newWindow.Start.Format("2006-01-02 15:04")))
	}

	hour := newWindow.Start.Hour()
	if hour < s.guard.StartHour || hour >= s.guard.EndHour {
		return newRejection(ReasonOutOfHours,
			fmt.Sprintf("перенос разрешен только в интервале %02d:00-%02d:00", s.guard.StartHour, s.guard.EndHour))
	}

	others := make([]TimeWindow, 0, len(occupied))
	for _, o := range occupied {
		if o.AppointmentID == appointmentID {
			continue
		}
		others = append(others, o.Window)
	}

	if conflict, found := FirstConflict(newWindow, others); found {
		r := newRejection(ReasonConflict,
			fmt.Sprintf("время %s пересекается с существующей записью %s", newWindow, conflict))
		r.ConflictWith = &conflict
		return r
	}

	return nil
}
