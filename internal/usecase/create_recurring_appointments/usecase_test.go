package create_recurring_appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	apptRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

type fakeApptRepo struct {
	existing []*domain.Appointment
	batches  [][]*domain.Appointment
	batchErr error
	nextID   int64
}

func (f *fakeApptRepo) CreateBatch(_ context.Context, appts []*domain.Appointment) ([]*domain.Appointment, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	for _, appt := range appts {
		f.nextID++
		appt.ID = f.nextID
	}
	f.batches = append(f.batches, appts)
	return appts, nil
}

func (f *fakeApptRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.ProfessionalAgendaFilter) ([]*domain.Appointment, error) {
	return f.existing, nil
}

type fakeWHRepo struct {
	hours *domain.WorkingHours
}

func (f *fakeWHRepo) GetByProfessional(_ context.Context, _ int64) (*domain.WorkingHours, error) {
	return f.hours, nil
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

func fullWeek() *domain.WorkingHours {
	day := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  "09:00",
		CloseTime: "19:00",
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
	uc := NewUseCase(
		repo,
		wh,
		nil,
		fakeTxManager{},
		scheduling.NewScheduler(scheduling.DefaultMoveGuard()),
		time.UTC,
		nopLogger{},
	)
	uc.timeProvider = fixedClock{t: now}
	return uc
}

func validRequest() *Request {
	return &Request{
		ClientID:        10,
		ProfessionalID:  77,
		ServiceID:       3,
		ClientName:      "Ana Souza",
		Date:            time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), // понедельник
		StartTime:       "10:00",
		DurationMinutes: 30,
		Frequency:       "weekly",
		EndDate:         time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		ServiceName:     "Corte feminino",
		ServicePrice:    120,
	}
}

func TestExecute_WeeklySeries(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek()}
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// 8, 15, 22, 29 января и 5 февраля
	assert.Len(t, resp.Occurrences, 5)
	assert.False(t, resp.Truncated)
	require.Len(t, repo.batches, 1)

	// Вся серия делит один идентификатор группы
	for _, appt := range repo.batches[0] {
		require.NotNil(t, appt.RecurrenceGroupID)
		assert.Equal(t, resp.RecurrenceGroupID, *appt.RecurrenceGroupID)
		assert.Equal(t, types.TimeString("10:00"), appt.StartTime)
		assert.Equal(t, domain.StatusPending, appt.Status)
	}
}

func TestExecute_ConflictAbortsWholeSeries(t *testing.T) {
	// Существующая запись пересекается с третьим повторением (22 января)
	repo := &fakeApptRepo{
		existing: []*domain.Appointment{
			{
				ID:              5,
				ProfessionalID:  77,
				Date:            time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
				StartTime:       "10:15",
				DurationMinutes: 30,
				Status:          domain.StatusConfirmed,
			},
		},
	}
	wh := &fakeWHRepo{hours: fullWeek()}
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSeriesConflict)
	assert.Contains(t, err.Error(), "2024-01-22")
	assert.Empty(t, repo.batches)
}

func TestExecute_ConcurrentWindowTakenMapsToConflict(t *testing.T) {
	// Проверка в памяти прошла, но батч отклонил exclusion constraint БД -
	// параллельная транзакция успела занять одно из окон серии
	repo := &fakeApptRepo{batchErr: apptRepo.ErrWindowTaken}
	wh := &fakeWHRepo{hours: fullWeek()}
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSeriesConflict)
	assert.NotErrorIs(t, err, ErrInternal)
}

func TestExecute_EndDateBeforeAnchor(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek()}
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	req := validRequest()
	req.EndDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestExecute_PastAnchorRejected(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek()}
	now := time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrPastBooking)
}

func TestExecute_OccurrenceOutsideWorkingHours(t *testing.T) {
	// Мастер не работает по понедельникам - вся weekly серия в понедельник отклоняется
	hours := fullWeek()
	hours.Monday = domain.DaySchedule{IsOpen: false}

	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: hours}
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrOutOfWorkingHours)
	assert.Empty(t, repo.batches)
}

func TestExecute_TruncatedAtCap(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek()}
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	req := validRequest()
	req.EndDate = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, resp.Occurrences, domain.MaxRecurrenceOccurrences)
	assert.True(t, resp.Truncated)
}

func TestExecute_UnknownFrequency(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek()}
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	req := validRequest()
	req.Frequency = "daily"

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidInput)
}
