package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
	"github.com/m04kA/SLN-BookingService/pkg/ptr"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

func daySchedule(open, close string, lunch ...string) domain.DaySchedule {
	s := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  types.TimeString(open),
		CloseTime: types.TimeString(close),
	}
	if len(lunch) == 2 {
		s.LunchStart = ptr.Ptr(types.TimeString(lunch[0]))
		s.LunchEnd = ptr.Ptr(types.TimeString(lunch[1]))
	}
	return s
}

func TestComputeSlots_FullDayExample(t *testing.T) {
	// Рабочий день 08:00-18:00, обед 12:00-13:00, услуга 30 минут, шаг 15,
	// записей нет, сейчас 07:00 того же дня
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)

	slots, err := scheduling.ComputeSlots(scheduling.SlotParams{
		Day:                    day,
		Schedule:               daySchedule("08:00", "18:00", "12:00", "13:00"),
		ServiceDurationMinutes: 30,
		StepMinutes:            15,
		LeadTimeMinutes:        domain.DefaultLeadTimeMinutes,
		Now:                    now,
		Location:               time.UTC,
	})

	require.NoError(t, err)
	require.NotEmpty(t, slots)

	assert.Equal(t, at(8, 0), slots[0].Start, "first candidate is opening time")
	assert.Equal(t, at(17, 30), slots[len(slots)-1].Start, "last candidate fits before closing")

	lunch := mustWindow(t, at(12, 0), at(13, 0))
	for _, slot := range slots {
		assert.False(t, slot.Overlaps(lunch), "no candidate may touch lunch: %s", slot)
	}

	// 08:00-11:30 каждые 15 минут = 15 слотов, 13:00-17:30 = 19 слотов
	assert.Len(t, slots, 34)
}

func TestComputeSlots_LeadTime(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	// Сейчас 09:50: слоты раньше 10:05 недоступны, первый подходящий с шагом 15 - 10:15
	now := time.Date(2024, 1, 10, 9, 50, 0, 0, time.UTC)

	slots, err := scheduling.ComputeSlots(scheduling.SlotParams{
		Day:                    day,
		Schedule:               daySchedule("08:00", "12:00"),
		ServiceDurationMinutes: 30,
		StepMinutes:            15,
		LeadTimeMinutes:        15,
		Now:                    now,
		Location:               time.UTC,
	})

	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, at(10, 15), slots[0].Start)
}

func TestComputeSlots_ExcludesOccupied(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	occupied := []scheduling.TimeWindow{
		mustWindow(t, at(10, 0), at(10, 30)),
	}

	slots, err := scheduling.ComputeSlots(scheduling.SlotParams{
		Day:                    day,
		Schedule:               daySchedule("09:00", "12:00"),
		ServiceDurationMinutes: 30,
		StepMinutes:            30,
		LeadTimeMinutes:        15,
		Now:                    now,
		Occupied:               occupied,
		Location:               time.UTC,
	})

	require.NoError(t, err)
	starts := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	assert.NotContains(t, starts, at(10, 0), "occupied slot must be excluded")
	assert.Contains(t, starts, at(9, 30), "slot ending exactly at occupied start stays available")
	assert.Contains(t, starts, at(10, 30), "slot starting exactly at occupied end stays available")
}

func TestComputeSlots_ClosedDay(t *testing.T) {
	slots, err := scheduling.ComputeSlots(scheduling.SlotParams{
		Day:                    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Schedule:               domain.DaySchedule{IsOpen: false},
		ServiceDurationMinutes: 30,
		StepMinutes:            15,
		LeadTimeMinutes:        15,
		Now:                    time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC),
		Location:               time.UTC,
	})

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlots_Deterministic(t *testing.T) {
	params := scheduling.SlotParams{
		Day:                    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Schedule:               daySchedule("08:00", "18:00", "12:00", "13:00"),
		ServiceDurationMinutes: 45,
		StepMinutes:            15,
		LeadTimeMinutes:        15,
		Now:                    time.Date(2024, 1, 10, 9, 3, 0, 0, time.UTC),
		Occupied: []scheduling.TimeWindow{
			mustWindow(t, at(14, 0), at(15, 0)),
		},
		Location: time.UTC,
	}

	first, err := scheduling.ComputeSlots(params)
	require.NoError(t, err)
	second, err := scheduling.ComputeSlots(params)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must produce the identical sequence")
}
