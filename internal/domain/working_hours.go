package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SLN-BookingService/pkg/types"
)

var (
	// ErrInvalidWorkingHours возвращается при нарушении инвариантов рабочих часов
	ErrInvalidWorkingHours = errors.New("invalid working hours")
)

// DaySchedule working hours of a professional on a single weekday.
// Lunch break is optional; when set it must lie inside the working window.
type DaySchedule struct {
	IsOpen     bool
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	LunchStart *types.TimeString
	LunchEnd   *types.TimeString
}

// HasLunch returns true if a lunch break is configured
func (d DaySchedule) HasLunch() bool {
	return d.LunchStart != nil && d.LunchEnd != nil
}

// Validate checks the schedule invariants:
// open < close; open <= lunchStart < lunchEnd <= close
func (d DaySchedule) Validate() error {
	if !d.IsOpen {
		return nil
	}

	if err := d.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: opening time: %v", ErrInvalidWorkingHours, err)
	}
	if err := d.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: closing time: %v", ErrInvalidWorkingHours, err)
	}
	if !d.OpenTime.IsBefore(d.CloseTime) {
		return fmt.Errorf("%w: opening time %s must be before closing time %s",
			ErrInvalidWorkingHours, d.OpenTime, d.CloseTime)
	}

	// Обед либо задан целиком, либо не задан вовсе
	if (d.LunchStart == nil) != (d.LunchEnd == nil) {
		return fmt.Errorf("%w: lunch start and end must be set together", ErrInvalidWorkingHours)
	}

	if d.HasLunch() {
		if err := d.LunchStart.Validate(); err != nil {
			return fmt.Errorf("%w: lunch start: %v", ErrInvalidWorkingHours, err)
		}
		if err := d.LunchEnd.Validate(); err != nil {
			return fmt.Errorf("%w: lunch end: %v", ErrInvalidWorkingHours, err)
		}
		if !d.LunchStart.IsBefore(*d.LunchEnd) {
			return fmt.Errorf("%w: lunch start %s must be before lunch end %s",
				ErrInvalidWorkingHours, *d.LunchStart, *d.LunchEnd)
		}
		if d.LunchStart.IsBefore(d.OpenTime) || d.LunchEnd.IsAfter(d.CloseTime) {
			return fmt.Errorf("%w: lunch break must be inside working hours", ErrInvalidWorkingHours)
		}
	}

	return nil
}

// WorkingHours weekly schedule of a professional
type WorkingHours struct {
	ProfessionalID int64
	Monday         DaySchedule
	Tuesday        DaySchedule
	Wednesday      DaySchedule
	Thursday       DaySchedule
	Friday         DaySchedule
	Saturday       DaySchedule
	Sunday         DaySchedule
	UpdatedAt      time.Time
}

// ForDate returns the day schedule for the weekday of date
func (w *WorkingHours) ForDate(date time.Time) DaySchedule {
	switch date.Weekday() {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// Validate checks every day of the week
func (w *WorkingHours) Validate() error {
	days := []struct {
		name     string
		schedule DaySchedule
	}{
		{"monday", w.Monday},
		{"tuesday", w.Tuesday},
		{"wednesday", w.Wednesday},
		{"thursday", w.Thursday},
		{"friday", w.Friday},
		{"saturday", w.Saturday},
		{"sunday", w.Sunday},
	}

	for _, day := range days {
		if err := day.schedule.Validate(); err != nil {
			return fmt.Errorf("%s: %w", day.name, err)
		}
	}

	return nil
}
