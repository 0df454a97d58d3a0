package reschedule_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	apptRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
	"github.com/m04kA/SLN-BookingService/pkg/ptr"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

type fakeApptRepo struct {
	byID    map[int64]*domain.Appointment
	day     []*domain.Appointment
	updated bool
}

func (f *fakeApptRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.byID[id]
	if !ok {
		return nil, apptRepo.ErrAppointmentNotFound
	}
	return appt, nil
}

func (f *fakeApptRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.ProfessionalAgendaFilter) ([]*domain.Appointment, error) {
	return f.day, nil
}

func (f *fakeApptRepo) UpdateWindow(_ context.Context, _ int64, _ time.Time, _ string, _ int) error {
	f.updated = true
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              42,
		ProfessionalID:  77,
		ClientID:        ptr.Ptr(int64(10)),
		ClientName:      "Ana Souza",
		Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
	}
}

func newTestUseCase(repo *fakeApptRepo, now time.Time) *UseCase {
	uc := NewUseCase(
		repo,
		nil,
		fakeTxManager{},
		scheduling.NewScheduler(scheduling.DefaultMoveGuard()),
		time.UTC,
		nopLogger{},
	)
	uc.timeProvider = fixedClock{t: now}
	return uc
}

func TestExecute_Success(t *testing.T) {
	appt := testAppointment()
	repo := &fakeApptRepo{
		byID: map[int64]*domain.Appointment{42: appt},
		day:  []*domain.Appointment{appt},
	}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, now)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:        10,
		AppointmentID: 42,
		NewDate:       time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		NewStartTime:  "14:30",
	})
	require.NoError(t, err)

	assert.True(t, repo.updated)
	assert.Equal(t, types.TimeString("14:30"), resp.StartTime)
}

func TestExecute_MoveToOwnTimeSucceeds(t *testing.T) {
	// Перенос на собственное текущее время - self-exclusion по ID
	appt := testAppointment()
	repo := &fakeApptRepo{
		byID: map[int64]*domain.Appointment{42: appt},
		day:  []*domain.Appointment{appt},
	}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        10,
		AppointmentID: 42,
		NewDate:       appt.Date,
		NewStartTime:  appt.StartTime,
	})
	require.NoError(t, err)
}

func TestExecute_ConflictWithOtherAppointment(t *testing.T) {
	appt := testAppointment()
	other := &domain.Appointment{
		ID:              43,
		ProfessionalID:  77,
		Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       "14:00",
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}
	repo := &fakeApptRepo{
		byID: map[int64]*domain.Appointment{42: appt},
		day:  []*domain.Appointment{appt, other},
	}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        10,
		AppointmentID: 42,
		NewDate:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		NewStartTime:  "14:30",
	})
	require.ErrorIs(t, err, ErrSlotConflict)
	assert.False(t, repo.updated)
}

func TestExecute_GuardHours(t *testing.T) {
	appt := testAppointment()
	repo := &fakeApptRepo{
		byID: map[int64]*domain.Appointment{42: appt},
		day:  []*domain.Appointment{appt},
	}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, now)

	tests := []struct {
		name      string
		startTime types.TimeString
	}{
		{"before guard", "07:30"},
		{"at guard end", "20:00"},
		{"after guard", "22:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), &Request{
				UserID:        10,
				AppointmentID: 42,
				NewDate:       time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
				NewStartTime:  tt.startTime,
			})
			assert.ErrorIs(t, err, ErrOutOfHours)
		})
	}
}

func TestExecute_PastTargetRejected(t *testing.T) {
	appt := testAppointment()
	repo := &fakeApptRepo{
		byID: map[int64]*domain.Appointment{42: appt},
		day:  []*domain.Appointment{appt},
	}
	now := time.Date(2024, 1, 12, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        10,
		AppointmentID: 42,
		NewDate:       time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		NewStartTime:  "14:30",
	})
	require.ErrorIs(t, err, ErrPastBooking)
}

func TestExecute_AccessDenied(t *testing.T) {
	appt := testAppointment()
	repo := &fakeApptRepo{
		byID: map[int64]*domain.Appointment{42: appt},
		day:  []*domain.Appointment{appt},
	}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        999,
		AppointmentID: 42,
		NewDate:       time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		NewStartTime:  "14:30",
	})
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_NotFound(t *testing.T) {
	repo := &fakeApptRepo{byID: map[int64]*domain.Appointment{}}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, now)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:        10,
		AppointmentID: 42,
		NewDate:       time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		NewStartTime:  "14:30",
	})
	require.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_TerminalStatusCannotBeMoved(t *testing.T) {
	tests := []struct {
		name   string
		status domain.AppointmentStatus
	}{
		{"completed", domain.StatusCompleted},
		{"cancelled", domain.StatusCancelled},
		{"blocked", domain.StatusBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := testAppointment()
			appt.Status = tt.status
			repo := &fakeApptRepo{
				byID: map[int64]*domain.Appointment{42: appt},
				day:  []*domain.Appointment{appt},
			}
			uc := newTestUseCase(repo, time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC))

			_, err := uc.Execute(context.Background(), &Request{
				UserID:        77,
				AppointmentID: 42,
				NewDate:       time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
				NewStartTime:  "14:30",
			})
			assert.ErrorIs(t, err, ErrCannotReschedule)
		})
	}
}
