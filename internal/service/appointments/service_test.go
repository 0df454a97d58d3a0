package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SLN-BookingService/internal/domain"
	apptRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SLN-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SLN-BookingService/internal/service/appointments/models"
	"github.com/m04kA/SLN-BookingService/pkg/ptr"
	"github.com/m04kA/SLN-BookingService/pkg/types"
)

// Реальный репозиторий обязан удовлетворять контракту сервиса
var _ AppointmentRepository = (*apptRepo.Repository)(nil)

type fakeApptRepo struct {
	byID      map[int64]*domain.Appointment
	day       []*domain.Appointment
	created   []*domain.Appointment
	cancelled []int64
	updated   map[int64]domain.AppointmentStatus
	deleted   []int64
	nextID    int64
}

func newFakeApptRepo(appts ...*domain.Appointment) *fakeApptRepo {
	repo := &fakeApptRepo{
		byID:    make(map[int64]*domain.Appointment),
		updated: make(map[int64]domain.AppointmentStatus),
		nextID:  100,
	}
	for _, appt := range appts {
		repo.byID[appt.ID] = appt
	}
	return repo
}

func (f *fakeApptRepo) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	f.nextID++
	appt.ID = f.nextID
	f.created = append(f.created, appt)
	f.byID[appt.ID] = appt
	return appt, nil
}

func (f *fakeApptRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.byID[id]
	if !ok {
		return nil, apptRepo.ErrAppointmentNotFound
	}
	return appt, nil
}

func (f *fakeApptRepo) GetByPublicCode(_ context.Context, code uuid.UUID) (*domain.Appointment, error) {
	for _, appt := range f.byID {
		if appt.PublicCode == code {
			return appt, nil
		}
	}
	return nil, apptRepo.ErrAppointmentNotFound
}

func (f *fakeApptRepo) GetByClientID(_ context.Context, clientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	for _, appt := range f.byID {
		if appt.ClientID == nil || *appt.ClientID != clientID {
			continue
		}
		if status != nil && appt.Status != *status {
			continue
		}
		result = append(result, appt)
	}
	return result, nil
}

func (f *fakeApptRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.ProfessionalAgendaFilter) ([]*domain.Appointment, error) {
	return f.day, nil
}

func (f *fakeApptRepo) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	if _, ok := f.byID[id]; !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	f.updated[id] = status
	return nil
}

func (f *fakeApptRepo) Cancel(_ context.Context, id int64, _ string) error {
	if _, ok := f.byID[id]; !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeApptRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifyClient struct {
	events []notifyservice.AppointmentEvent
}

func (f *fakeNotifyClient) SendEventWithGracefulDegradation(_ context.Context, event notifyservice.AppointmentEvent) error {
	f.events = append(f.events, event)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const (
	professionalID = int64(77)
	clientID       = int64(42)
	strangerID     = int64(999)
)

func pendingAppointment(id int64) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		PublicCode:      uuid.New(),
		ProfessionalID:  professionalID,
		ClientID:        ptr.Ptr(clientID),
		ClientName:      "Ana",
		Date:            time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("10:00"),
		DurationMinutes: 30,
		Status:          domain.StatusPending,
	}
}

func newTestService(repo *fakeApptRepo, notify *fakeNotifyClient) *Service {
	var notifyClient NotifyServiceClient
	if notify != nil {
		notifyClient = notify
	}
	return NewService(repo, fakeTxManager{}, notifyClient, time.UTC, nopLogger{})
}

func TestGetByID_Access(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment(1))
	svc := newTestService(repo, nil)

	tests := []struct {
		name    string
		userID  int64
		wantErr error
	}{
		{"client sees own appointment", clientID, nil},
		{"professional sees own calendar", professionalID, nil},
		{"stranger is rejected", strangerID, ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetByID(context.Background(), 1, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), resp.ID)
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(newFakeApptRepo(), nil)

	_, err := svc.GetByID(context.Background(), 404, clientID)

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetByPublicCode_NoAccessCheck(t *testing.T) {
	appt := pendingAppointment(1)
	repo := newFakeApptRepo(appt)
	svc := newTestService(repo, nil)

	resp, err := svc.GetByPublicCode(context.Background(), appt.PublicCode)

	require.NoError(t, err)
	assert.Equal(t, appt.PublicCode.String(), resp.PublicCode)
}

func TestCancel_Success(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment(1))
	notify := &fakeNotifyClient{}
	svc := newTestService(repo, notify)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
		UserID:             clientID,
		CancellationReason: "не смогу прийти",
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1}, repo.cancelled)
	require.Len(t, notify.events, 1)
	assert.Equal(t, notifyservice.EventAppointmentCancelled, notify.events[0].Event)
	require.NotNil(t, notify.events[0].Reason)
	assert.Equal(t, "не смогу прийти", *notify.events[0].Reason)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	appt := pendingAppointment(1)
	appt.Status = domain.StatusCompleted
	repo := newFakeApptRepo(appt)
	svc := newTestService(repo, nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: clientID})

	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Empty(t, repo.cancelled)
}

func TestCancel_AccessDenied(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment(1))
	svc := newTestService(repo, nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: strangerID})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatus_ProfessionalConfirms(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment(1))
	notify := &fakeNotifyClient{}
	svc := newTestService(repo, notify)

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: professionalID,
		Status: "confirmed",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, repo.updated[1])
	require.Len(t, notify.events, 1)
	assert.Equal(t, notifyservice.EventAppointmentConfirmed, notify.events[0].Event)
}

func TestUpdateStatus_ClientHasNoControl(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment(1))
	svc := newTestService(repo, nil)

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: clientID,
		Status: "confirmed",
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	appt := pendingAppointment(1)
	appt.Status = domain.StatusConfirmed
	repo := newFakeApptRepo(appt)
	svc := newTestService(repo, nil)

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: professionalID,
		Status: "pending",
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, repo.updated)
}

func TestUpdateStatus_PendingCannotSkipConfirmation(t *testing.T) {
	// Завершение возможно только из confirmed, напрямую из pending - нет
	repo := newFakeApptRepo(pendingAppointment(1))
	svc := newTestService(repo, nil)

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: professionalID,
		Status: "completed",
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, repo.updated)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment(1))
	svc := newTestService(repo, nil)

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: professionalID,
		Status: "archived",
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetProfessionalAgenda_OnlyOwner(t *testing.T) {
	repo := newFakeApptRepo()
	repo.day = []*domain.Appointment{pendingAppointment(1)}
	svc := newTestService(repo, nil)

	_, err := svc.GetProfessionalAgenda(context.Background(), &models.GetProfessionalAgendaRequest{
		UserID:         strangerID,
		ProfessionalID: professionalID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetProfessionalAgenda(context.Background(), &models.GetProfessionalAgendaRequest{
		UserID:         professionalID,
		ProfessionalID: professionalID,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)
}

func TestCreateBlock_Success(t *testing.T) {
	repo := newFakeApptRepo()
	svc := newTestService(repo, nil)

	resp, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		UserID:          professionalID,
		ProfessionalID:  professionalID,
		Date:            "2024-03-06",
		StartTime:       "13:00",
		DurationMinutes: 60,
		Notes:           ptr.Ptr("обед"),
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, domain.StatusBlocked, repo.created[0].Status)
	assert.NotEqual(t, uuid.Nil, repo.created[0].PublicCode)
	assert.Equal(t, string(domain.StatusBlocked), resp.Status)
}

func TestCreateBlock_ConflictWithExistingAppointment(t *testing.T) {
	repo := newFakeApptRepo()
	repo.day = []*domain.Appointment{pendingAppointment(1)}
	svc := newTestService(repo, nil)

	// Запись клиента 10:00-10:30, блокировка 10:15 пересекается
	_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		UserID:          professionalID,
		ProfessionalID:  professionalID,
		Date:            "2024-03-06",
		StartTime:       "10:15",
		DurationMinutes: 30,
	})

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Empty(t, repo.created)
}

func TestCreateBlock_TouchingAppointmentAllowed(t *testing.T) {
	repo := newFakeApptRepo()
	repo.day = []*domain.Appointment{pendingAppointment(1)}
	svc := newTestService(repo, nil)

	// Запись 10:00-10:30, блокировка ровно с 10:30 не конфликтует
	_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		UserID:          professionalID,
		ProfessionalID:  professionalID,
		Date:            "2024-03-06",
		StartTime:       "10:30",
		DurationMinutes: 30,
	})

	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestCreateBlock_OnlyOwnCalendar(t *testing.T) {
	svc := newTestService(newFakeApptRepo(), nil)

	_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		UserID:          strangerID,
		ProfessionalID:  professionalID,
		Date:            "2024-03-06",
		StartTime:       "13:00",
		DurationMinutes: 60,
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCreateBlock_InvalidInput(t *testing.T) {
	svc := newTestService(newFakeApptRepo(), nil)

	tests := []struct {
		name string
		req  models.CreateBlockRequest
	}{
		{"bad date", models.CreateBlockRequest{UserID: professionalID, ProfessionalID: professionalID, Date: "06.03.2024", StartTime: "13:00", DurationMinutes: 30}},
		{"bad time", models.CreateBlockRequest{UserID: professionalID, ProfessionalID: professionalID, Date: "2024-03-06", StartTime: "13h00", DurationMinutes: 30}},
		{"zero duration", models.CreateBlockRequest{UserID: professionalID, ProfessionalID: professionalID, Date: "2024-03-06", StartTime: "13:00", DurationMinutes: 0}},
		{"crosses midnight", models.CreateBlockRequest{UserID: professionalID, ProfessionalID: professionalID, Date: "2024-03-06", StartTime: "23:30", DurationMinutes: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBlock(context.Background(), &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRemoveBlock_Success(t *testing.T) {
	block := pendingAppointment(5)
	block.Status = domain.StatusBlocked
	block.ClientID = nil
	repo := newFakeApptRepo(block)
	svc := newTestService(repo, nil)

	err := svc.RemoveBlock(context.Background(), 5, professionalID)

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, repo.deleted)
}

func TestRemoveBlock_ClientAppointmentRejected(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment(1))
	svc := newTestService(repo, nil)

	err := svc.RemoveBlock(context.Background(), 1, professionalID)

	assert.ErrorIs(t, err, ErrNotABlock)
	assert.Empty(t, repo.deleted)
}

func TestSendEvent_SkippedForBlocks(t *testing.T) {
	repo := newFakeApptRepo()
	notify := &fakeNotifyClient{}
	svc := newTestService(repo, notify)

	_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		UserID:          professionalID,
		ProfessionalID:  professionalID,
		Date:            "2024-03-06",
		StartTime:       "13:00",
		DurationMinutes: 60,
	})

	require.NoError(t, err)
	assert.Empty(t, notify.events)
}
