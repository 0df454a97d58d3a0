package create_appointment

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
	existing  []*domain.Appointment
	created   []*domain.Appointment
	createErr error
	nextID    int64
}

func (f *fakeApptRepo) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	appt.ID = f.nextID
	f.created = append(f.created, appt)
	return appt, nil
}

func (f *fakeApptRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.ProfessionalAgendaFilter) ([]*domain.Appointment, error) {
	return f.existing, nil
}

type fakeWHRepo struct {
	hours *domain.WorkingHours
	err   error
}

func (f *fakeWHRepo) GetByProfessional(_ context.Context, _ int64) (*domain.WorkingHours, error) {
	return f.hours, f.err
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

func openDay(open, close string) domain.DaySchedule {
	return domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  types.TimeString(open),
		CloseTime: types.TimeString(close),
	}
}

func fullWeek(open, close string) *domain.WorkingHours {
	day := openDay(open, close)
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
		Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		ServiceName:     "Corte feminino",
		ServicePrice:    120,
	}
}

func TestExecute_Success(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek("09:00", "19:00")}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", resp.PublicCode.String())
	require.Len(t, repo.created, 1)
	assert.Equal(t, types.TimeString("10:00"), repo.created[0].StartTime)
}

func TestExecute_PastSlotRejected(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek("09:00", "19:00")}
	// Текущее время позже запрошенного слота
	now := time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrPastBooking)
	assert.Empty(t, repo.created)
}

func TestExecute_ConflictRejected(t *testing.T) {
	repo := &fakeApptRepo{
		existing: []*domain.Appointment{
			{
				ID:              5,
				ProfessionalID:  77,
				Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				StartTime:       "09:45",
				DurationMinutes: 30,
				Status:          domain.StatusConfirmed,
			},
		},
	}
	wh := &fakeWHRepo{hours: fullWeek("09:00", "19:00")}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSlotConflict)
	assert.Empty(t, repo.created)
}

func TestExecute_ConcurrentWindowTakenMapsToConflict(t *testing.T) {
	// Проверка в памяти прошла, но вставку отклонил exclusion constraint БД -
	// параллельная транзакция успела занять окно
	repo := &fakeApptRepo{createErr: apptRepo.ErrWindowTaken}
	wh := &fakeWHRepo{hours: fullWeek("09:00", "19:00")}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSlotConflict)
	assert.NotErrorIs(t, err, ErrInternal)
}

func TestExecute_TouchingSlotAccepted(t *testing.T) {
	// Существующая запись заканчивается ровно в 10:00 - касание не конфликт
	repo := &fakeApptRepo{
		existing: []*domain.Appointment{
			{
				ID:              5,
				ProfessionalID:  77,
				Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				StartTime:       "09:30",
				DurationMinutes: 30,
				Status:          domain.StatusConfirmed,
			},
		},
	}
	wh := &fakeWHRepo{hours: fullWeek("09:00", "19:00")}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestExecute_CancelledSlotDoesNotOccupy(t *testing.T) {
	repo := &fakeApptRepo{
		existing: []*domain.Appointment{
			{
				ID:              5,
				ProfessionalID:  77,
				Date:            time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				StartTime:       "10:00",
				DurationMinutes: 30,
				Status:          domain.StatusCancelled,
			},
		},
	}
	wh := &fakeWHRepo{hours: fullWeek("09:00", "19:00")}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
}

func TestExecute_OutOfWorkingHours(t *testing.T) {
	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: fullWeek("11:00", "19:00")}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrOutOfWorkingHours)
}

func TestExecute_LunchOverlapRejected(t *testing.T) {
	day := openDay("09:00", "19:00")
	day.LunchStart = ptr.Ptr(types.TimeString("10:00"))
	day.LunchEnd = ptr.Ptr(types.TimeString("11:00"))

	hours := fullWeek("09:00", "19:00")
	hours.Wednesday = day // 2024-01-10 это среда

	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: hours}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrOutOfWorkingHours)
}

func TestExecute_ClosedDay(t *testing.T) {
	hours := fullWeek("09:00", "19:00")
	hours.Wednesday = domain.DaySchedule{IsOpen: false}

	repo := &fakeApptRepo{}
	wh := &fakeWHRepo{hours: hours}
	now := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(repo, wh, now)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrClosedDay)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"zero client", func(r *Request) { r.ClientID = 0 }},
		{"zero professional", func(r *Request) { r.ProfessionalID = 0 }},
		{"empty name", func(r *Request) { r.ClientName = "" }},
		{"no date", func(r *Request) { r.Date = time.Time{} }},
		{"no start time", func(r *Request) { r.StartTime = "" }},
		{"bad start time", func(r *Request) { r.StartTime = "25:99" }},
		{"zero duration", func(r *Request) { r.DurationMinutes = 0 }},
		{"crosses midnight", func(r *Request) { r.StartTime = "23:45"; r.DurationMinutes = 30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := validateRequest(req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
