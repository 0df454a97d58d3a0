package scheduling

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidWindow возвращается, когда конец окна не позже начала
	ErrInvalidWindow = errors.New("scheduling: window end must be after start")
)

// TimeWindow полуоткрытый интервал [Start, End)
// Все проверки пересечений в сервисе работают на этом типе
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow creates a window and checks the End > Start invariant
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidWindow,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeWindow{Start: start, End: end}, nil
}

// WindowFromStart creates a window from a start instant and a duration in minutes
func WindowFromStart(start time.Time, durationMinutes int) (TimeWindow, error) {
	return NewTimeWindow(start, start.Add(time.Duration(durationMinutes)*time.Minute))
}

// Overlaps reports whether two half-open windows intersect.
// Интервалы пересекаются, только если начало одного СТРОГО раньше конца
// другого в обе стороны. Граничные случаи (конец одного равен началу
// другого) пересечением не считаются.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Duration returns the length of the window
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// String returns a human-readable representation for logs and rejection details
func (w TimeWindow) String() string {
	return fmt.Sprintf("%s - %s", w.Start.Format("2006-01-02 15:04"), w.End.Format("15:04"))
}
