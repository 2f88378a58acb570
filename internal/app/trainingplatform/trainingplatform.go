// Package trainingplatform собирает основное приложение: хранилище,
// кеш, брокер событий, сервисы и HTTP-сервер.
package trainingplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/training-platform/internal/cache"
	"github.com/magabrotheeeer/training-platform/internal/config"
	"github.com/magabrotheeeer/training-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/training-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/training-platform/internal/migrations"
	appointmentservice "github.com/magabrotheeeer/training-platform/internal/services/appointment"
	authservice "github.com/magabrotheeeer/training-platform/internal/services/auth"
	companyservice "github.com/magabrotheeeer/training-platform/internal/services/company"
	enrollmentservice "github.com/magabrotheeeer/training-platform/internal/services/enrollment"
	formationservice "github.com/magabrotheeeer/training-platform/internal/services/formation"
	invitationservice "github.com/magabrotheeeer/training-platform/internal/services/invitation"
	notificationservice "github.com/magabrotheeeer/training-platform/internal/services/notification"
	"github.com/magabrotheeeer/training-platform/internal/storage/repository"
)

// App содержит собранное приложение и его ресурсы.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
	rabbitCh   *amqp.Channel
}

// New собирает приложение из конфигурации: подключает хранилище,
// применяет миграции, поднимает кеш и брокер, строит сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitCh)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	companyService := companyservice.NewCompanyService(db, cacheRedis, logger)
	services := &Services{
		Auth:         authservice.NewAuthService(db, jwtMaker, publisher, cfg.ResetTokenTTL, logger),
		Company:      companyService,
		Invitation:   invitationservice.NewInvitationService(db, companyService, publisher, cfg.InvitationTTL, logger),
		Formation:    formationservice.NewFormationService(db, companyService, publisher, logger),
		Enrollment:   enrollmentservice.NewEnrollmentService(db, logger),
		Appointment:  appointmentservice.NewAppointmentService(db, publisher, logger),
		Notification: notificationservice.NewNotificationService(db, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.WebhookSecret, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
		rabbitCh:   rabbitCh,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rabbitCh.Close()
		_ = a.rabbitConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
