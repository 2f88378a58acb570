package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/training-platform/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateCompany создает тестовую компанию с подпиской и возвращает её UUID
func (f *TestDataFactory) CreateCompany(t *testing.T, name, status string, seatLimit int) string {
	var companyUUID string
	err := f.storage.DB.QueryRow(`INSERT INTO companies (name, contact_email)
		VALUES ($1, $2) RETURNING uuid`,
		name, name+"@example.com").Scan(&companyUUID)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`INSERT INTO subscriptions (company_uuid, plan, status, seat_limit)
		VALUES ($1, $2, $3, $4)`,
		companyUUID, "standard", status, seatLimit)
	require.NoError(t, err)
	return companyUUID
}

// CreateAccount создает тестовую учётную запись и возвращает её UUID
func (f *TestDataFactory) CreateAccount(t *testing.T, email, role string, companyUUID *string) string {
	var accountUUID string
	err := f.storage.DB.QueryRow(`INSERT INTO accounts (email, password_hash, role, company_uuid)
		VALUES ($1, $2, $3, $4) RETURNING uuid`,
		email, "hashedpassword", role, companyUUID).Scan(&accountUUID)
	require.NoError(t, err)
	return accountUUID
}

// CreateInvitation создает тестовое приглашение и возвращает его токен
func (f *TestDataFactory) CreateInvitation(t *testing.T, email, role, companyUUID, issuedBy string, expiresAt time.Time) string {
	var token string
	err := f.storage.DB.QueryRow(`INSERT INTO invitations (email, role, company_uuid, issued_by, expires_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING token`,
		email, role, companyUUID, issuedBy, expiresAt).Scan(&token)
	require.NoError(t, err)
	return token
}

// CreateFormation создает тестовый курс и возвращает его ID
func (f *TestDataFactory) CreateFormation(t *testing.T, title, authorUUID string, isActive bool) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO formations (title, description, author_uuid, is_active)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		title, "description", authorUUID, isActive).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateEnrollment создает тестовую запись на курс и возвращает её ID
func (f *TestDataFactory) CreateEnrollment(t *testing.T, accountUUID string, formationID, progress int, assignedBy string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO enrollments (account_uuid, formation_id, progress, assigned_by)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		accountUUID, formationID, progress, assignedBy).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateAppointment создает тестовую консультацию и возвращает её ID
func (f *TestDataFactory) CreateAppointment(t *testing.T, employeeUUID, consultantUUID, companyUUID, status string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO appointments
		(employee_uuid, consultant_uuid, company_uuid, starts_at, topic, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		employeeUUID, consultantUUID, companyUUID, time.Now().Add(24*time.Hour), "onboarding", status).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyAccountExists проверяет существование учётной записи в БД
func (v *TestVerification) VerifyAccountExists(t *testing.T, accountUUID string) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM accounts WHERE uuid = $1", accountUUID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// VerifyInvitationAccepted проверяет, что приглашение принято и связано с учётной записью
func (v *TestVerification) VerifyInvitationAccepted(t *testing.T, token, accountUUID string) {
	var gotAccount string
	err := v.storage.DB.QueryRow(
		"SELECT account_uuid FROM invitations WHERE token = $1 AND accepted_at IS NOT NULL", token).
		Scan(&gotAccount)
	require.NoError(t, err)
	require.Equal(t, accountUUID, gotAccount)
}

// VerifyAppointmentStatus проверяет статус консультации
func (v *TestVerification) VerifyAppointmentStatus(t *testing.T, id int, expectedStatus string) {
	var status string
	err := v.storage.DB.QueryRow("SELECT status FROM appointments WHERE id = $1", id).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// VerifyEnrollmentProgress проверяет прогресс записи на курс
func (v *TestVerification) VerifyEnrollmentProgress(t *testing.T, id, expectedProgress int) {
	var progress int
	err := v.storage.DB.QueryRow("SELECT progress FROM enrollments WHERE id = $1", id).Scan(&progress)
	require.NoError(t, err)
	require.Equal(t, expectedProgress, progress)
}

// VerifySubscriptionStatus проверяет статус подписки компании
func (v *TestVerification) VerifySubscriptionStatus(t *testing.T, companyUUID, expectedStatus string) {
	var status string
	err := v.storage.DB.QueryRow("SELECT status FROM subscriptions WHERE company_uuid = $1", companyUUID).
		Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE companies (
            uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name TEXT NOT NULL,
            contact_email TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE subscriptions (
            id SERIAL PRIMARY KEY,
            company_uuid UUID NOT NULL UNIQUE REFERENCES companies(uuid) ON DELETE CASCADE,
            plan TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'unpaid',
            seat_limit INT NOT NULL,
            period_start TIMESTAMPTZ,
            period_end TIMESTAMPTZ
        );

        CREATE TABLE accounts (
            uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            company_uuid UUID REFERENCES companies(uuid) ON DELETE CASCADE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE invitations (
            token UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL,
            role TEXT NOT NULL,
            company_uuid UUID NOT NULL REFERENCES companies(uuid) ON DELETE CASCADE,
            issued_by UUID NOT NULL REFERENCES accounts(uuid),
            expires_at TIMESTAMPTZ NOT NULL,
            accepted_at TIMESTAMPTZ,
            account_uuid UUID REFERENCES accounts(uuid)
        );

        CREATE UNIQUE INDEX invitations_live_unique
            ON invitations (email, company_uuid)
            WHERE accepted_at IS NULL;

        CREATE TABLE formations (
            id SERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            author_uuid UUID NOT NULL REFERENCES accounts(uuid),
            is_active BOOLEAN NOT NULL DEFAULT false
        );

        CREATE TABLE sections (
            id SERIAL PRIMARY KEY,
            formation_id INT NOT NULL REFERENCES formations(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            position INT NOT NULL,
            UNIQUE (formation_id, position)
        );

        CREATE TABLE lessons (
            id SERIAL PRIMARY KEY,
            section_id INT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            lesson_type TEXT NOT NULL,
            position INT NOT NULL,
            is_published BOOLEAN NOT NULL DEFAULT false,
            UNIQUE (section_id, position)
        );

        CREATE TABLE enrollments (
            id SERIAL PRIMARY KEY,
            account_uuid UUID NOT NULL REFERENCES accounts(uuid) ON DELETE CASCADE,
            formation_id INT NOT NULL REFERENCES formations(id) ON DELETE CASCADE,
            progress INT NOT NULL DEFAULT 0,
            completed_at TIMESTAMPTZ,
            assigned_by UUID NOT NULL REFERENCES accounts(uuid),
            UNIQUE (account_uuid, formation_id)
        );

        CREATE TABLE appointments (
            id SERIAL PRIMARY KEY,
            employee_uuid UUID NOT NULL REFERENCES accounts(uuid) ON DELETE CASCADE,
            consultant_uuid UUID NOT NULL REFERENCES accounts(uuid),
            company_uuid UUID NOT NULL REFERENCES companies(uuid) ON DELETE CASCADE,
            starts_at TIMESTAMPTZ NOT NULL,
            topic TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE feedbacks (
            id SERIAL PRIMARY KEY,
            appointment_id INT NOT NULL UNIQUE REFERENCES appointments(id) ON DELETE CASCADE,
            rating INT NOT NULL,
            satisfied BOOLEAN NOT NULL,
            recommend BOOLEAN NOT NULL
        );

        CREATE TABLE notifications (
            id SERIAL PRIMARY KEY,
            account_uuid UUID NOT NULL REFERENCES accounts(uuid) ON DELETE CASCADE,
            ntype TEXT NOT NULL,
            title TEXT NOT NULL,
            message TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT false,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE password_resets (
            token UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            account_uuid UUID NOT NULL REFERENCES accounts(uuid) ON DELETE CASCADE,
            expires_at TIMESTAMPTZ NOT NULL,
            used_at TIMESTAMPTZ
        );
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}

// платная компания со штатным набором ролей для сквозных сценариев
type testCompany struct {
	CompanyUUID    string
	AdminUUID      string
	EmployeeUUID   string
	ConsultantUUID string
}

func newTestCompany(t *testing.T, factory *TestDataFactory, status string) testCompany {
	companyUUID := factory.CreateCompany(t, "acme", status, 50)
	return testCompany{
		CompanyUUID:    companyUUID,
		AdminUUID:      factory.CreateAccount(t, "admin@acme.example.com", models.RoleCompanyAdmin, &companyUUID),
		EmployeeUUID:   factory.CreateAccount(t, "employee@acme.example.com", models.RoleEmployee, &companyUUID),
		ConsultantUUID: factory.CreateAccount(t, "consultant@acme.example.com", models.RoleConsultant, &companyUUID),
	}
}
