package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
)

// SlotParams входные данные генерации доступных слотов на один день.
// Все моменты времени считаются в Location (таймзона салона), вычисление
// детерминировано: одинаковые входы дают одинаковый список слотов.
type SlotParams struct {
	Day                    time.Time
	Schedule               domain.DaySchedule
	ServiceDurationMinutes int
	StepMinutes            int
	LeadTimeMinutes        int
	Now                    time.Time
	Occupied               []TimeWindow
	Location               *time.Location
}

// ComputeSlots generates the candidate start windows for a day.
//
// Алгоритм: от времени открытия с шагом StepMinutes, пока кандидат целиком
// помещается до закрытия. Кандидат отбрасывается, если он пересекается с
// обеденным окном, начинается раньше Now+LeadTime или пересекается с уже
// занятым окном мастера.
func ComputeSlots(p SlotParams) ([]TimeWindow, error) {
	slots := make([]TimeWindow, 0)

	if !p.Schedule.IsOpen {
		return slots, nil
	}
	if p.ServiceDurationMinutes <= 0 {
		return nil, fmt.Errorf("scheduling: service duration must be positive, got %d", p.ServiceDurationMinutes)
	}
	if p.StepMinutes <= 0 {
		return nil, fmt.Errorf("scheduling: step must be positive, got %d", p.StepMinutes)
	}

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	opening, err := p.Schedule.OpenTime.OnDate(p.Day, loc)
	if err != nil {
		return nil, fmt.Errorf("scheduling: invalid opening time: %w", err)
	}
	closing, err := p.Schedule.CloseTime.OnDate(p.Day, loc)
	if err != nil {
		return nil, fmt.Errorf("scheduling: invalid closing time: %w", err)
	}

	var lunch *TimeWindow
	if p.Schedule.HasLunch() {
		lunchStart, err := p.Schedule.LunchStart.OnDate(p.Day, loc)
		if err != nil {
			return nil, fmt.Errorf("scheduling: invalid lunch start: %w", err)
		}
		lunchEnd, err := p.Schedule.LunchEnd.OnDate(p.Day, loc)
		if err != nil {
			return nil, fmt.Errorf("scheduling: invalid lunch end: %w", err)
		}
		window, err := NewTimeWindow(lunchStart, lunchEnd)
		if err != nil {
			return nil, fmt.Errorf("scheduling: invalid lunch window: %w", err)
		}
		lunch = &window
	}

	minStart := p.Now.Add(time.Duration(p.LeadTimeMinutes) * time.Minute)
	duration := time.Duration(p.ServiceDurationMinutes) * time.Minute
	step := time.Duration(p.StepMinutes) * time.Minute

	for start := opening; !start.Add(duration).After(closing); start = start.Add(step) {
		candidate := TimeWindow{Start: start, End: start.Add(duration)}

		if start.Before(minStart) {
			continue
		}
		if lunch != nil && candidate.Overlaps(*lunch) {
			continue
		}
		if HasConflict(candidate, p.Occupied) {
			continue
		}

		slots = append(slots, candidate)
	}

	return slots, nil
}
