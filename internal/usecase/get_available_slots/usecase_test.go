package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	whRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/workinghours"
	"github.com/m04kA/SLN-BookingService/pkg/ptr"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

type fakeApptRepo struct {
	appts []*domain.Appointment
}

func (f *fakeApptRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.ProfessionalAgendaFilter) ([]*domain.Appointment, error) {
	return f.appts, nil
}

type fakeWHRepo struct {
	hours *domain.WorkingHours
	err   error
}

func (f *fakeWHRepo) GetByProfessional(_ context.Context, _ int64) (*domain.WorkingHours, error) {
	return f.hours, f.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func hoursWithLunch() *domain.WorkingHours {
	day := domain.DaySchedule{
		IsOpen:     true,
		OpenTime:   "08:00",
		CloseTime:  "18:00",
		LunchStart: ptr.Ptr(types.TimeString("12:00")),
		LunchEnd:   ptr.Ptr(types.TimeString("13:00")),
	}
	return &domain.WorkingHours{
		ProfessionalID: 77,
		Monday:         day,
		Tuesday:        day,
		Wednesday:      day,
		Thursday:       day,
		Friday:         day,
		Saturday:       day,
		Sunday:         day,
	}
}

func newTestUseCase(repo *fakeApptRepo, wh *fakeWHRepo, now time.Time) *UseCase {
	uc := NewUseCase(repo, wh, 15, 15, time.UTC, nopLogger{})
	uc.timeProvider = fixedClock{t: now}
	return uc
}

func TestExecute_FullDay(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: hoursWithLunch()}
	// Запрос задолго до начала дня - lead time не влияет
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:         77,
		Date:                   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		ServiceDurationMinutes: 30,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, types.TimeString("08:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("17:30"), resp.Slots[len(resp.Slots)-1].StartTime)

	// Обеденное окно исключено
	for _, slot := range resp.Slots {
		assert.False(t, slot.StartTime.IsAfter("11:30") && slot.StartTime.IsBefore("13:00"),
			"slot %s overlaps lunch", slot.StartTime)
	}
}

func TestExecute_OccupiedSlotExcluded(t *testing.T) {
	repo := &fakeApptRepo{
		appts: []*domain.Appointment{
			{
				ID:              5,
				ProfessionalID:  77,
				Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				StartTime:       "10:00",
				DurationMinutes: 30,
				Status:          domain.StatusConfirmed,
			},
		},
	}
	wh := &fakeWHRepo{hours: hoursWithLunch()}
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:         77,
		Date:                   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		ServiceDurationMinutes: 30,
	})
	require.NoError(t, err)

	for _, slot := range resp.Slots {
		assert.NotEqual(t, types.TimeString("10:00"), slot.StartTime)
		assert.NotEqual(t, types.TimeString("09:45"), slot.StartTime)
		assert.NotEqual(t, types.TimeString("10:15"), slot.StartTime)
	}
	// Касание границ занятого окна допустимо
	starts := make(map[types.TimeString]bool)
	for _, slot := range resp.Slots {
		starts[slot.StartTime] = true
	}
	assert.True(t, starts["09:30"])
	assert.True(t, starts["10:30"])
}

func TestExecute_LeadTimeFiltersSlots(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: hoursWithLunch()}
	// 09:50 + 15 минут lead time: первый доступный слот 10:15
	now := time.Date(2024, 1, 10, 9, 50, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:         77,
		Date:                   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		ServiceDurationMinutes: 30,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, types.TimeString("10:15"), resp.Slots[0].StartTime)
}

func TestExecute_ClosedDayReturnsEmpty(t *testing.T) {
	hours := hoursWithLunch()
	hours.Wednesday = domain.DaySchedule{IsOpen: false}

	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: hours}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:         77,
		Date:                   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), // среда
		ServiceDurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_ScheduleNotFound(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{err: whRepo.ErrScheduleNotFound}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:         77,
		Date:                   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		ServiceDurationMinutes: 30,
	})
	require.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestExecute_Deterministic(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: hoursWithLunch()}
	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	req := &Request{
		ProfessionalID:         77,
		Date:                   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		ServiceDurationMinutes: 30,
	}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"zero professional", Request{Date: time.Now(), ServiceDurationMinutes: 30}},
		{"no date", Request{ProfessionalID: 1, ServiceDurationMinutes: 30}},
		{"zero duration", Request{ProfessionalID: 1, Date: time.Now()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(&tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
