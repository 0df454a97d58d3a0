package scheduling

import (
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
)

// Expansion результат расширения повторяющейся серии
type Expansion struct {
	Occurrences []TimeWindow

	// Truncated установлен, если предел в 52 повторения достигнут раньше,
	// чем конечная дата серии. Вызывающий показывает предупреждение
	// LIMIT_EXCEEDED, но серия создается.
	Truncated bool
}

// Expand materializes a recurring series: starting at anchor, repeatedly
// shift both ends by the frequency interval while the occurrence start is
// not past the end of the series' end date.
//
// Расширение ограничено domain.MaxRecurrenceOccurrences независимо от
// условия по дате. Конфликты здесь не проверяются - это работа Scheduler,
// по одному разу на каждое сгенерированное повторение.
//
// Если anchor.Start уже позже конца конечной даты, возвращается пустое
// расширение; вызывающий трактует это как INVALID_RANGE.
func Expand(anchor TimeWindow, spec domain.RecurrenceSpec) Expansion {
	exp := Expansion{Occurrences: make([]TimeWindow, 0)}

	limit := endOfDay(spec.EndDate, anchor.Start.Location())
	if anchor.Start.After(limit) {
		return exp
	}

	days, months := spec.Frequency.Interval()
	if days == 0 && months == 0 {
		return exp
	}

	current := anchor
	for !current.Start.After(limit) {
		if len(exp.Occurrences) == domain.MaxRecurrenceOccurrences {
			exp.Truncated = true
			break
		}
		exp.Occurrences = append(exp.Occurrences, current)
		current = TimeWindow{
			Start: current.Start.AddDate(0, months, days),
			End:   current.End.AddDate(0, months, days),
		}
	}

	return exp
}

func endOfDay(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, loc)
}
