package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/mentora-api/internal/models"
)

// ErrStatusConflict indicates the record left the pending state before the transition was applied.
var ErrStatusConflict = errors.New("review record is no longer pending")

// ReviewTransition describes a status change applied by a reviewer.
type ReviewTransition struct {
	To        models.ReviewStatus
	Reason    string
	ActorID   uint
	ActorRole string
	At        time.Time
}

// StatusCount is one row of a GROUP BY status aggregate.
type StatusCount struct {
	Status models.ReviewStatus
	Total  int64
}

// ReviewRepository persists one kind of reviewable submission.
type ReviewRepository[T models.Reviewable] interface {
	Create(ctx context.Context, record *T) error
	ListAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id uint) (T, error)
	Transition(ctx context.Context, id uint, change ReviewTransition) (T, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type reviewRepository[T models.Reviewable] struct {
	db *gorm.DB
}

// NewReviewRepository constructs a GORM backed review repository for T.
func NewReviewRepository[T models.Reviewable](db *gorm.DB) ReviewRepository[T] {
	return &reviewRepository[T]{db: db}
}

// NewCompanyRequestRepository constructs the company request queue repository.
func NewCompanyRequestRepository(db *gorm.DB) ReviewRepository[models.CompanyRequest] {
	return NewReviewRepository[models.CompanyRequest](db)
}

// NewMentorApplicationRepository constructs the mentor application queue repository.
func NewMentorApplicationRepository(db *gorm.DB) ReviewRepository[models.MentorApplication] {
	return NewReviewRepository[models.MentorApplication](db)
}

// NewProgramRepository constructs the program queue repository.
func NewProgramRepository(db *gorm.DB) ReviewRepository[models.Program] {
	return NewReviewRepository[models.Program](db)
}

func (r *reviewRepository[T]) Create(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *reviewRepository[T]) ListAll(ctx context.Context) ([]T, error) {
	var records []T
	if err := r.db.WithContext(ctx).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *reviewRepository[T]) GetByID(ctx context.Context, id uint) (T, error) {
	var record T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

// Transition moves a pending record to change.To and writes the decision history row in one
// transaction. The update is conditional on status = pending so concurrent reviewers cannot
// both win.
func (r *reviewRepository[T]) Transition(ctx context.Context, id uint, change ReviewTransition) (T, error) {
	var updated T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current T
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			return err
		}

		reviewedAt := change.At
		reviewedBy := change.ActorID
		result := tx.Model(new(T)).
			Where("id = ?", id).
			Where("status = ?", models.ReviewStatusPending).
			Updates(map[string]interface{}{
				"status":           change.To,
				"rejection_reason": change.Reason,
				"reviewed_by":      &reviewedBy,
				"reviewed_at":      &reviewedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}

		decision := models.ReviewDecision{
			Kind:       current.ReviewKind(),
			RecordID:   id,
			FromStatus: current.Review().Status,
			ToStatus:   change.To,
			Reason:     change.Reason,
			ActorID:    change.ActorID,
			ActorRole:  change.ActorRole,
			DecidedAt:  reviewedAt,
		}
		if err := tx.Create(&decision).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return updated, nil
}

func (r *reviewRepository[T]) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	if err := r.db.WithContext(ctx).
		Model(new(T)).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReviewDecisionRepository reads the decision history written by Transition.
type ReviewDecisionRepository interface {
	ListForRecord(ctx context.Context, kind models.ReviewKind, recordID uint) ([]models.ReviewDecision, error)
}

type reviewDecisionRepository struct {
	db *gorm.DB
}

// NewReviewDecisionRepository constructs the decision history repository.
func NewReviewDecisionRepository(db *gorm.DB) ReviewDecisionRepository {
	return &reviewDecisionRepository{db: db}
}

func (r *reviewDecisionRepository) ListForRecord(ctx context.Context, kind models.ReviewKind, recordID uint) ([]models.ReviewDecision, error) {
	var decisions []models.ReviewDecision
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND record_id = ?", kind, recordID).
		Order("decided_at ASC").
		Order("id ASC").
		Find(&decisions).Error; err != nil {
		return nil, err
	}
	return decisions, nil
}
