package scheduling

import "fmt"

// Reason машиночитаемый код отказа в валидации
type Reason string

const (
	// ReasonPastBooking время начала не в будущем относительно "сейчас"
	ReasonPastBooking Reason = "PAST_BOOKING"
	// ReasonInvalidRange конечная дата серии раньше или равна дате якоря
	ReasonInvalidRange Reason = "INVALID_RANGE"
	// ReasonConflict окно пересекается с существующей записью мастера
	ReasonConflict Reason = "CONFLICT"
	// ReasonOutOfHours результат переноса выходит за разрешенные часы
	ReasonOutOfHours Reason = "OUT_OF_HOURS"
	// ReasonLimitExceeded расширение серии уперлось в предел в 52 повторения
	// Предупреждение, а не жесткий отказ - серия создается усеченной
	ReasonLimitExceeded Reason = "LIMIT_EXCEEDED"
)

// Rejection типизированный отказ валидации расписания.
// Ожидаемые бизнес-нарушения не оформляются как внутренние ошибки - ядро
// возвращает Rejection, а слой API сопоставляет код причины с HTTP статусом
// и конкретным сообщением для пользователя.
type Rejection struct {
	Reason Reason
	Detail string

	// OccurrenceIndex номер повторения (с нуля), на котором серия отклонена.
	// -1 для одиночных записей и отказов до расширения серии.
	OccurrenceIndex int

	// ConflictWith занятое окно, с которым пересекся кандидат (для CONFLICT)
	ConflictWith *TimeWindow
}

// Error реализует error, чтобы Rejection можно было пробрасывать по цепочке
func (r *Rejection) Error() string {
	return fmt.Sprintf("scheduling: %s: %s", r.Reason, r.Detail)
}

func newRejection(reason Reason, detail string) *Rejection {
	return &Rejection{Reason: reason, Detail: detail, OccurrenceIndex: -1}
}
