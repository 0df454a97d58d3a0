package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

var (
	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM")
)

// DayScheduleDTO расписание мастера на один день недели
type DayScheduleDTO struct {
	IsOpen     bool    `json:"isOpen"`
	OpenTime   string  `json:"openTime,omitempty"`   // "09:00"
	CloseTime  string  `json:"closeTime,omitempty"`  // "19:00"
	LunchStart *string `json:"lunchStart,omitempty"` // "13:00"
	LunchEnd   *string `json:"lunchEnd,omitempty"`   // "14:00"
}

// WorkingHoursRequest запрос на сохранение недельного расписания мастера
type WorkingHoursRequest struct {
	UserID         int64          `json:"userId"`
	ProfessionalID int64          `json:"professionalId"`
	Monday         DayScheduleDTO `json:"monday"`
	Tuesday        DayScheduleDTO `json:"tuesday"`
	Wednesday      DayScheduleDTO `json:"wednesday"`
	Thursday       DayScheduleDTO `json:"thursday"`
	Friday         DayScheduleDTO `json:"friday"`
	Saturday       DayScheduleDTO `json:"saturday"`
	Sunday         DayScheduleDTO `json:"sunday"`
}

// WorkingHoursResponse ответ с недельным расписанием мастера
type WorkingHoursResponse struct {
	ProfessionalID int64          `json:"professionalId"`
	Monday         DayScheduleDTO `json:"monday"`
	Tuesday        DayScheduleDTO `json:"tuesday"`
	Wednesday      DayScheduleDTO `json:"wednesday"`
	Thursday       DayScheduleDTO `json:"thursday"`
	Friday         DayScheduleDTO `json:"friday"`
	Saturday       DayScheduleDTO `json:"saturday"`
	Sunday         DayScheduleDTO `json:"sunday"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ToDomain конвертирует request в domain модель
func (r *WorkingHoursRequest) ToDomain() (*domain.WorkingHours, error) {
	hours := &domain.WorkingHours{ProfessionalID: r.ProfessionalID}

	days := []struct {
		name string
		dto  DayScheduleDTO
		dst  *domain.DaySchedule
	}{
		{"monday", r.Monday, &hours.Monday},
		{"tuesday", r.Tuesday, &hours.Tuesday},
		{"wednesday", r.Wednesday, &hours.Wednesday},
		{"thursday", r.Thursday, &hours.Thursday},
		{"friday", r.Friday, &hours.Friday},
		{"saturday", r.Saturday, &hours.Saturday},
		{"sunday", r.Sunday, &hours.Sunday},
	}

	for _, day := range days {
		schedule, err := day.dto.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", day.name, err)
		}
		*day.dst = schedule
	}

	return hours, nil
}

func (d DayScheduleDTO) toDomain() (domain.DaySchedule, error) {
	if !d.IsOpen {
		return domain.DaySchedule{IsOpen: false}, nil
	}

	openTime, err := types.NewTimeStringFromString(d.OpenTime)
	if err != nil {
		return domain.DaySchedule{}, fmt.Errorf("%w: open time %q", ErrInvalidTime, d.OpenTime)
	}
	closeTime, err := types.NewTimeStringFromString(d.CloseTime)
	if err != nil {
		return domain.DaySchedule{}, fmt.Errorf("%w: close time %q", ErrInvalidTime, d.CloseTime)
	}

	schedule := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  openTime,
		CloseTime: closeTime,
	}

	if d.LunchStart != nil {
		lunchStart, err := types.NewTimeStringFromString(*d.LunchStart)
		if err != nil {
			return domain.DaySchedule{}, fmt.Errorf("%w: lunch start %q", ErrInvalidTime, *d.LunchStart)
		}
		schedule.LunchStart = &lunchStart
	}
	if d.LunchEnd != nil {
		lunchEnd, err := types.NewTimeStringFromString(*d.LunchEnd)
		if err != nil {
			return domain.DaySchedule{}, fmt.Errorf("%w: lunch end %q", ErrInvalidTime, *d.LunchEnd)
		}
		schedule.LunchEnd = &lunchEnd
	}

	return schedule, nil
}

// FromDomainWorkingHours конвертирует domain модель в DTO
func FromDomainWorkingHours(hours *domain.WorkingHours) *WorkingHoursResponse {
	if hours == nil {
		return nil
	}

	return &WorkingHoursResponse{
		ProfessionalID: hours.ProfessionalID,
		Monday:         fromDomainDay(hours.Monday),
		Tuesday:        fromDomainDay(hours.Tuesday),
		Wednesday:      fromDomainDay(hours.Wednesday),
		Thursday:       fromDomainDay(hours.Thursday),
		Friday:         fromDomainDay(hours.Friday),
		Saturday:       fromDomainDay(hours.Saturday),
		Sunday:         fromDomainDay(hours.Sunday),
		UpdatedAt:      hours.UpdatedAt,
	}
}

func fromDomainDay(schedule domain.DaySchedule) DayScheduleDTO {
	if !schedule.IsOpen {
		return DayScheduleDTO{IsOpen: false}
	}

	dto := DayScheduleDTO{
		IsOpen:    true,
		OpenTime:  schedule.OpenTime.String(),
		CloseTime: schedule.CloseTime.String(),
	}

	if schedule.LunchStart != nil {
		lunchStart := schedule.LunchStart.String()
		dto.LunchStart = &lunchStart
	}
	if schedule.LunchEnd != nil {
		lunchEnd := schedule.LunchEnd.String()
		dto.LunchEnd = &lunchEnd
	}

	return dto
}
