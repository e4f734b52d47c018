package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	checkoutEligibilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/checkout_eligibility"
	createAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_availability"
	getBusinessAppointmentsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_business_appointments"
	getCheckoutQueueHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_checkout_queue"
	getPaymentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_payment"
	healthHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/health"
	settleAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/settle_appointment"
	transitionAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/transition_appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/checkout"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/messaging/kafka"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	outboxRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/outbox"
	paymentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/payment"
	directoryClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/directory"
	"github.com/m04kA/SMC-SchedulingService/internal/relay"
	appointmentsService "github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	checkoutEligibilityUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/checkout_eligibility"
	createAppointmentUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_appointment"
	getAvailabilityUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_availability"
	settleAppointmentUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/settle_appointment"
	transitionAppointmentUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/transition_appointment"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/tzconv"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
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

	log.Info("Starting SMC-SchedulingService...")

	// Метрики: при выключенных метриках компоненты получают nil-коллектор
	var metricsCollector *metrics.Metrics
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

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	txMgr := txmanager.NewTransactionManager(wrappedDB,
		txmanager.WithMaxAttempts(cfg.Database.TxMaxAttempts),
		txmanager.WithInitialInterval(time.Duration(cfg.Database.TxRetryDelayMs)*time.Millisecond),
		txmanager.WithRetryRecorder(metricsCollector),
		txmanager.WithLogger(log),
	)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	paymentRepository := paymentRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)

	// Справочник бизнесов и услуг
	directory := directoryClient.NewClient(
		cfg.Directory.URL,
		time.Duration(cfg.Directory.Timeout)*time.Second,
		log,
	)
	log.Info("Directory client initialized (url=%s, timeout=%ds)", cfg.Directory.URL, cfg.Directory.Timeout)

	// Доменные компоненты
	engine := availability.NewEngine(tzconv.New(), cfg.Scheduling.SlotStepMinutes)

	feePolicy, err := checkout.NewFeePolicy(cfg.Checkout.FeeRateBps, cfg.Checkout.FixedFeeCents)
	if err != nil {
		log.Fatal("Invalid checkout configuration: %v", err)
	}
	log.Info("Fee policy: %d bps + %d cents, grace %d min",
		feePolicy.RateBps, feePolicy.FixedFeeCents, cfg.Checkout.GracePeriodMinutes)

	minNotice := time.Duration(cfg.Scheduling.MinNoticeMinutes) * time.Minute
	pendingHold := time.Duration(cfg.Scheduling.PendingHoldMinutes) * time.Minute
	grace := time.Duration(cfg.Checkout.GracePeriodMinutes) * time.Minute

	// Сервисы
	appointmentSvc := appointmentsService.NewService(appointmentRepository, paymentRepository, grace, log)

	// Use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		appointmentRepository,
		directory,
		engine,
		getAvailabilityUC.Settings{
			MinNotice:          minNotice,
			AdvanceBookingDays: cfg.Scheduling.AdvanceBookingDays,
			PendingHold:        pendingHold,
		},
		log,
	)

	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		outboxRepository,
		directory,
		engine,
		txMgr,
		metricsCollector,
		createAppointmentUC.Settings{
			MinNotice:          minNotice,
			AdvanceBookingDays: cfg.Scheduling.AdvanceBookingDays,
			PendingHold:        pendingHold,
		},
		log,
	)

	transitionAppointmentUseCase := transitionAppointmentUC.NewUseCase(
		appointmentRepository,
		outboxRepository,
		directory,
		engine,
		txMgr,
		metricsCollector,
		transitionAppointmentUC.Settings{PendingHold: pendingHold},
		log,
	)

	settleAppointmentUseCase := settleAppointmentUC.NewUseCase(
		appointmentRepository,
		paymentRepository,
		outboxRepository,
		feePolicy,
		txMgr,
		metricsCollector,
		log,
	)

	checkoutEligibilityUseCase := checkoutEligibilityUC.NewUseCase(appointmentRepository, grace, log)

	// Handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	transitionAppointment := transitionAppointmentHandler.NewHandler(transitionAppointmentUseCase, log)
	settleAppointment := settleAppointmentHandler.NewHandler(settleAppointmentUseCase, log)
	checkoutEligibility := checkoutEligibilityHandler.NewHandler(checkoutEligibilityUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getBusinessAppointments := getBusinessAppointmentsHandler.NewHandler(appointmentSvc, log)
	getCheckoutQueue := getCheckoutQueueHandler.NewHandler(appointmentSvc, log)
	getPayment := getPaymentHandler.NewHandler(appointmentSvc, log)
	health := healthHandler.NewHandler(wrappedDB, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Расписание ---
	api.HandleFunc("/businesses/{businessId}/services/{serviceId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// --- Записи ---
	var createHandler http.Handler = http.HandlerFunc(createAppointment.Handle)
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		limiter := middleware.NewRateLimiter(
			redisClient,
			cfg.RateLimit.Limit,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
			cfg.RateLimit.FailOpen,
			metricsCollector,
			log,
		)
		createHandler = limiter.Middleware(createHandler)
		log.Info("Rate limit on POST /appointments: %d per %ds (redis=%s, fail_open=%t)",
			cfg.RateLimit.Limit, cfg.RateLimit.WindowSeconds, cfg.RateLimit.RedisAddr, cfg.RateLimit.FailOpen)
	}
	api.Handle("/appointments", createHandler).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/status", transitionAppointment.Handle).Methods(http.MethodPatch)

	// --- Оплата ---
	api.HandleFunc("/appointments/{appointmentId}/checkout-eligibility", checkoutEligibility.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/settlement", settleAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}/payment", getPayment.Handle).Methods(http.MethodGet)

	// --- Бизнес ---
	api.HandleFunc("/businesses/{businessId}/appointments", getBusinessAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/checkout-queue", getCheckoutQueue.Handle).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Ожидаем сигнал завершения
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Outbox relay: события уходят в Kafka только при включенном брокере
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		outboxRelay := relay.NewRelay(
			outboxRepository,
			producer,
			txMgr,
			metricsCollector,
			log,
			time.Duration(cfg.Outbox.PollIntervalMs)*time.Millisecond,
			cfg.Outbox.BatchSize,
		)
		g.Go(func() error {
			log.Info("Outbox relay started (topic=%s, brokers=%v)", cfg.Kafka.Topic, cfg.Kafka.Brokers)
			return outboxRelay.Run(gCtx)
		})
	} else {
		log.Warn("Kafka is disabled: outbox events stay pending")
	}

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Service stopped with error: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if producer != nil {
		_ = producer.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
