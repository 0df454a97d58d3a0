package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	cancelAppointmentHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/create_appointment"
	createBlockHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/create_block"
	createRecurringHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/create_recurring_appointments"
	getAppointmentHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/get_appointment"
	getAppointmentByCodeHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/get_appointment_by_code"
	getAvailableSlotsHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/get_available_slots"
	getClientAppointmentsHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/get_client_appointments"
	getProfessionalAgendaHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/get_professional_agenda"
	getWorkingHoursHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/get_working_hours"
	removeBlockHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/remove_block"
	rescheduleAppointmentHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/reschedule_appointment"
	updateAppointmentStatusHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/update_appointment_status"
	updateWorkingHoursHandler "github.com/m04kA/SLN-BookingService/internal/api/handlers/update_working_hours"
	"github.com/m04kA/SLN-BookingService/internal/api/middleware"
	"github.com/m04kA/SLN-BookingService/internal/config"
	appointmentRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/appointment"
	workingHoursRepo "github.com/m04kA/SLN-BookingService/internal/infra/storage/workinghours"
	notifyServiceClient "github.com/m04kA/SLN-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/SLN-BookingService/internal/scheduling"
	appointmentsService "github.com/m04kA/SLN-BookingService/internal/service/appointments"
	maintenanceService "github.com/m04kA/SLN-BookingService/internal/service/maintenance"
	scheduleService "github.com/m04kA/SLN-BookingService/internal/service/schedule"
	createAppointmentUC "github.com/m04kA/SLN-BookingService/internal/usecase/create_appointment"
	createRecurringUC "github.com/m04kA/SLN-BookingService/internal/usecase/create_recurring_appointments"
	getAvailableSlotsUC "github.com/m04kA/SLN-BookingService/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/SLN-BookingService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SLN-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SLN-BookingService/pkg/logger"
	"github.com/m04kA/SLN-BookingService/pkg/metrics"
	"github.com/m04kA/SLN-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/SLN-BookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SLN-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Таймзона салона: все вычисления слотов происходят в ней
	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Failed to load salon timezone: %v", err)
	}
	log.Info("Salon timezone: %s", location)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Клиент сервиса уведомлений (nil, если уведомления выключены -
	// usecases и сервисы обрабатывают nil как "не отправлять")
	var notifyClient *notifyServiceClient.Client
	if cfg.NotifyService.Enabled {
		notifyClient = notifyServiceClient.NewClient(
			cfg.NotifyService.URL,
			time.Duration(cfg.NotifyService.Timeout)*time.Second,
			log,
		)
		log.Info("NotifyService client initialized (url=%s, timeout=%ds)",
			cfg.NotifyService.URL, cfg.NotifyService.Timeout)
	} else {
		log.Info("NotifyService disabled, appointment events will not be sent")
	}

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		apptRepository *appointmentRepo.Repository
		whRepository   *workingHoursRepo.Repository
	)

	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")

		apptRepository = appointmentRepo.NewRepository(wrappedDB)
		whRepository = workingHoursRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		apptRepository = appointmentRepo.NewRepository(db)
		whRepository = workingHoursRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Планировщик с коридором переноса из конфигурации
	scheduler := scheduling.NewScheduler(scheduling.MoveGuard{
		StartHour: cfg.Booking.MoveGuardStartHour,
		EndHour:   cfg.Booking.MoveGuardEndHour,
	})

	// Интерфейсы принимают nil-клиента только через нетипизированный nil
	var notifyForAppointments appointmentsService.NotifyServiceClient
	var notifyForCreate createAppointmentUC.NotifyServiceClient
	var notifyForRecurring createRecurringUC.NotifyServiceClient
	var notifyForReschedule rescheduleAppointmentUC.NotifyServiceClient
	if notifyClient != nil {
		notifyForAppointments = notifyClient
		notifyForCreate = notifyClient
		notifyForRecurring = notifyClient
		notifyForReschedule = notifyClient
	}

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		apptRepository,
		txMgr,
		notifyForAppointments,
		location,
		log,
	)
	scheduleSvc := scheduleService.NewService(whRepository, log)
	maintenanceSvc := maintenanceService.NewService(apptRepository, maintenanceService.RealClock{}, log)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		apptRepository,
		whRepository,
		notifyForCreate,
		txMgr,
		scheduler,
		location,
		log,
	)
	createRecurringUseCase := createRecurringUC.NewUseCase(
		apptRepository,
		whRepository,
		notifyForRecurring,
		txMgr,
		scheduler,
		location,
		log,
	)
	rescheduleUseCase := rescheduleAppointmentUC.NewUseCase(
		apptRepository,
		notifyForReschedule,
		txMgr,
		scheduler,
		location,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		apptRepository,
		whRepository,
		cfg.Booking.SlotStepMinutes,
		cfg.Booking.LeadTimeMinutes,
		location,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	createRecurring := createRecurringHandler.NewHandler(createRecurringUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getAppointmentByCode := getAppointmentByCodeHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getProfessionalAgenda := getProfessionalAgendaHandler.NewHandler(appointmentsSvc, log)
	createBlock := createBlockHandler.NewHandler(appointmentsSvc, log)
	removeBlock := removeBlockHandler.NewHandler(appointmentsSvc, log)
	getWorkingHours := getWorkingHoursHandler.NewHandler(scheduleSvc, log)
	updateWorkingHours := updateWorkingHoursHandler.NewHandler(scheduleSvc, log)

	// Фоновая задача: завершение прошедших подтвержденных записей
	cronRunner := cron.New()
	if cfg.Jobs.Enabled {
		_, err := cronRunner.AddFunc(cfg.Jobs.CompleteElapsedSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := maintenanceSvc.CompleteElapsedAppointments(ctx); err != nil {
				log.Error("Cron: failed to complete elapsed appointments: %v", err)
			}
		})
		if err != nil {
			log.Fatal("Failed to schedule complete-elapsed job: %v", err)
		}
		cronRunner.Start()
		log.Info("Background jobs started (complete_elapsed schedule=%q)", cfg.Jobs.CompleteElapsedSchedule)
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации - страница онлайн-записи)
	// ============================================================

	// Доступные слоты мастера на дату
	api.HandleFunc("/professionals/{professionalId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Рабочее расписание мастера
	api.HandleFunc("/professionals/{professionalId}/working-hours",
		getWorkingHours.Handle).Methods(http.MethodGet)

	// Запись по публичному коду (код - токен доступа)
	api.HandleFunc("/public/appointments/{publicCode}",
		getAppointmentByCode.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/recurring", createRecurring.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)

	// --- История записей клиента ---
	protected.HandleFunc("/clients/{clientId}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)

	// --- Календарь мастера ---
	protected.HandleFunc("/professionals/{professionalId}/agenda", getProfessionalAgenda.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/professionals/{professionalId}/blocks", createBlock.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/professionals/{professionalId}/blocks/{blockId}", removeBlock.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/professionals/{professionalId}/working-hours", updateWorkingHours.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи
	if cfg.Jobs.Enabled {
		cronCtx := cronRunner.Stop()
		<-cronCtx.Done()
		log.Info("Background jobs stopped")
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
