package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CompanyRequest{},
		&models.MentorApplication{},
		&models.Program{},
		&models.ReviewDecision{},
		&models.ActivityLog{},
		&models.Notification{},
	))
	return db
}

type reviewFixture struct {
	db            *gorm.DB
	companies     repository.ReviewRepository[models.CompanyRequest]
	mentors       repository.ReviewRepository[models.MentorApplication]
	programs      repository.ReviewRepository[models.Program]
	activityRepo  repository.ActivityLogRepository
	notifications repository.NotificationRepository
	hub           *ReviewHub
	catalog       ReviewCatalog
	summary       ReviewSummaryService
	sessions      ReviewSessionStore
	service       ReviewService
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db := openTestDB(t)
	logger := testLogger()

	f := &reviewFixture{
		db:            db,
		companies:     repository.NewCompanyRequestRepository(db),
		mentors:       repository.NewMentorApplicationRepository(db),
		programs:      repository.NewProgramRepository(db),
		activityRepo:  repository.NewActivityLogRepository(db),
		notifications: repository.NewNotificationRepository(db),
		hub:           NewReviewHub(),
		sessions:      NewReviewSessionStore(nil, time.Hour),
	}
	f.catalog = NewReviewCatalog(f.companies, f.mentors, f.programs)
	f.summary = NewReviewSummaryService(f.catalog, nil, time.Minute, logger)

	dispatcher := NewReviewDispatcher(
		f.catalog,
		NewActivityService(f.activityRepo, logger),
		NewNotificationService(f.notifications, logger),
		NewReviewEventBus(f.hub, nil, "", nil, logger),
		f.summary,
		logger,
	)
	f.service = NewReviewService(f.catalog, repository.NewReviewDecisionRepository(db), dispatcher, f.sessions, nil, 10, logger)
	return f
}

// seedMentors inserts n applications submitted one hour apart; the list shows the newest first.
func (f *reviewFixture) seedMentors(t *testing.T, n int, statusFor func(i int) models.ReviewStatus) []models.MentorApplication {
	t.Helper()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	created := make([]models.MentorApplication, 0, n)
	for i := 0; i < n; i++ {
		application := models.MentorApplication{
			ApplicantID: fmt.Sprintf("%d", 100+i),
			FullName:    fmt.Sprintf("Mentor Applicant %02d", i),
			Email:       fmt.Sprintf("applicant%02d@uni.test", i),
			University:  "Universitas Indonesia",
			Expertise:   "Data Science",
			Role:        models.MentorRolePreMentor,
			ReviewFields: models.ReviewFields{
				Status:      statusFor(i),
				SubmittedAt: base.Add(time.Duration(i) * time.Hour),
			},
		}
		require.NoError(t, f.mentors.Create(context.Background(), &application))
		created = append(created, application)
	}
	return created
}

func allPending(int) models.ReviewStatus { return models.ReviewStatusPending }

func ptrString(v string) *string { return &v }

func ptrInt(v int) *int { return &v }

func isValidationErr(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
