// Package trainingplatform предоставляет маршруты для основного приложения.
package trainingplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	appointmentapprove "github.com/magabrotheeeer/training-platform/internal/http/handlers/appointment/approve"
	appointmentcomplete "github.com/magabrotheeeer/training-platform/internal/http/handlers/appointment/complete"
	appointmentcreate "github.com/magabrotheeeer/training-platform/internal/http/handlers/appointment/create"
	appointmentfeedback "github.com/magabrotheeeer/training-platform/internal/http/handlers/appointment/feedback"
	appointmentlist "github.com/magabrotheeeer/training-platform/internal/http/handlers/appointment/list"
	appointmentreject "github.com/magabrotheeeer/training-platform/internal/http/handlers/appointment/reject"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/auth/register"
	companycreate "github.com/magabrotheeeer/training-platform/internal/http/handlers/company/create"
	companyread "github.com/magabrotheeeer/training-platform/internal/http/handlers/company/read"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/company/webhook"
	enrollmentlist "github.com/magabrotheeeer/training-platform/internal/http/handlers/enrollment/list"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/enrollment/progress"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/formation/addlesson"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/formation/addsection"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/formation/assign"
	formationcreate "github.com/magabrotheeeer/training-platform/internal/http/handlers/formation/create"
	formationlist "github.com/magabrotheeeer/training-platform/internal/http/handlers/formation/list"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/formation/toggleactive"
	formationupdate "github.com/magabrotheeeer/training-platform/internal/http/handlers/formation/update"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/health"
	invitationaccept "github.com/magabrotheeeer/training-platform/internal/http/handlers/invitation/accept"
	invitationcreate "github.com/magabrotheeeer/training-platform/internal/http/handlers/invitation/create"
	invitationlist "github.com/magabrotheeeer/training-platform/internal/http/handlers/invitation/list"
	notificationdismiss "github.com/magabrotheeeer/training-platform/internal/http/handlers/notification/dismiss"
	notificationlist "github.com/magabrotheeeer/training-platform/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/notification/markread"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/passwordreset/confirm"
	"github.com/magabrotheeeer/training-platform/internal/http/handlers/passwordreset/request"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	appointmentservice "github.com/magabrotheeeer/training-platform/internal/services/appointment"
	authservice "github.com/magabrotheeeer/training-platform/internal/services/auth"
	companyservice "github.com/magabrotheeeer/training-platform/internal/services/company"
	enrollmentservice "github.com/magabrotheeeer/training-platform/internal/services/enrollment"
	formationservice "github.com/magabrotheeeer/training-platform/internal/services/formation"
	invitationservice "github.com/magabrotheeeer/training-platform/internal/services/invitation"
	notificationservice "github.com/magabrotheeeer/training-platform/internal/services/notification"
)

// Services объединяет сервисы бизнес-логики, нужные маршрутам.
type Services struct {
	Auth         *authservice.AuthService
	Company      *companyservice.CompanyService
	Invitation   *invitationservice.InvitationService
	Formation    *formationservice.FormationService
	Enrollment   *enrollmentservice.EnrollmentService
	Appointment  *appointmentservice.AppointmentService
	Notification *notificationservice.NotificationService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, webhookSecret string, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/password-reset/request", request.New(logger, s.Auth).ServeHTTP)
		r.Post("/password-reset/confirm", confirm.New(logger, s.Auth).ServeHTTP)
		r.Post("/invitations/accept", invitationaccept.New(logger, s.Invitation).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/companies", companycreate.New(logger, s.Company).ServeHTTP)
			r.Get("/companies/{uuid}", companyread.New(logger, s.Company).ServeHTTP)
			r.Post("/companies/{uuid}/invitations", invitationcreate.New(logger, s.Invitation).ServeHTTP)
			r.Get("/companies/{uuid}/invitations", invitationlist.New(logger, s.Invitation).ServeHTTP)

			r.Post("/formations", formationcreate.New(logger, s.Formation).ServeHTTP)
			r.Get("/formations", formationlist.New(logger, s.Formation).ServeHTTP)
			r.Put("/formations/{id}", formationupdate.New(logger, s.Formation).ServeHTTP)
			r.Post("/formations/{id}/sections", addsection.New(logger, s.Formation).ServeHTTP)
			r.Post("/formations/{id}/active", toggleactive.New(logger, s.Formation).ServeHTTP)
			r.Post("/formations/{id}/assign", assign.New(logger, s.Formation).ServeHTTP)
			r.Post("/lessons", addlesson.New(logger, s.Formation).ServeHTTP)

			r.Get("/accounts/{uuid}/enrollments", enrollmentlist.New(logger, s.Enrollment).ServeHTTP)
			r.Patch("/enrollments/{id}/progress", progress.New(logger, s.Enrollment).ServeHTTP)

			r.Post("/appointments", appointmentcreate.New(logger, s.Appointment).ServeHTTP)
			r.Get("/appointments", appointmentlist.New(logger, s.Appointment).ServeHTTP)
			r.Post("/appointments/{id}/approve", appointmentapprove.New(logger, s.Appointment).ServeHTTP)
			r.Post("/appointments/{id}/reject", appointmentreject.New(logger, s.Appointment).ServeHTTP)
			r.Post("/appointments/{id}/complete", appointmentcomplete.New(logger, s.Appointment).ServeHTTP)
			r.Post("/appointments/{id}/feedback", appointmentfeedback.New(logger, s.Appointment).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, s.Notification).ServeHTTP)
			r.Post("/notifications/{id}/read", markread.New(logger, s.Notification).ServeHTTP)
			r.Delete("/notifications/{id}", notificationdismiss.New(logger, s.Notification).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/webhooks/subscription", webhook.New(logger, s.Company, webhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
