package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/repository"
)

// ErrUnknownReviewKind indicates the requested queue does not exist.
var ErrUnknownReviewKind = errors.New("unknown review queue")

var reviewKindSlugs = map[string]models.ReviewKind{
	"company-requests":    models.ReviewKindCompanyRequest,
	"mentor-applications": models.ReviewKindMentorApplication,
	"programs":            models.ReviewKindProgram,
}

// ParseReviewKind accepts either the URL slug ("mentor-applications") or the stored kind
// ("mentor_application").
func ParseReviewKind(raw string) (models.ReviewKind, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if kind, ok := reviewKindSlugs[value]; ok {
		return kind, nil
	}
	for _, kind := range models.ReviewKinds() {
		if string(kind) == value {
			return kind, nil
		}
	}
	return "", ErrUnknownReviewKind
}

// ReviewQueue is the kind-agnostic view over one review repository.
type ReviewQueue interface {
	Kind() models.ReviewKind
	List(ctx context.Context) ([]dto.ReviewItem, error)
	Get(ctx context.Context, id uint) (dto.ReviewItem, error)
	Transition(ctx context.Context, id uint, change repository.ReviewTransition) (dto.ReviewItem, error)
	CountByStatus(ctx context.Context) (map[models.ReviewStatus]int64, error)
}

// ReviewCatalog resolves the queue backing each review kind.
type ReviewCatalog interface {
	Queue(kind models.ReviewKind) (ReviewQueue, bool)
	Kinds() []models.ReviewKind
}

type reviewCatalog struct {
	queues map[models.ReviewKind]ReviewQueue
}

// NewReviewCatalog wires the three marketplace review queues.
func NewReviewCatalog(
	companies repository.ReviewRepository[models.CompanyRequest],
	mentors repository.ReviewRepository[models.MentorApplication],
	programs repository.ReviewRepository[models.Program],
) ReviewCatalog {
	return NewReviewCatalogFromQueues(
		NewReviewQueue(models.ReviewKindCompanyRequest, companies, dto.NewCompanyRequestItem),
		NewReviewQueue(models.ReviewKindMentorApplication, mentors, dto.NewMentorApplicationItem),
		NewReviewQueue(models.ReviewKindProgram, programs, dto.NewProgramItem),
	)
}

// NewReviewCatalogFromQueues builds a catalog from arbitrary queues.
func NewReviewCatalogFromQueues(queues ...ReviewQueue) ReviewCatalog {
	catalog := &reviewCatalog{queues: make(map[models.ReviewKind]ReviewQueue, len(queues))}
	for _, queue := range queues {
		catalog.queues[queue.Kind()] = queue
	}
	return catalog
}

func (c *reviewCatalog) Queue(kind models.ReviewKind) (ReviewQueue, bool) {
	queue, ok := c.queues[kind]
	return queue, ok
}

func (c *reviewCatalog) Kinds() []models.ReviewKind {
	kinds := make([]models.ReviewKind, 0, len(c.queues))
	for _, kind := range models.ReviewKinds() {
		if _, ok := c.queues[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

type reviewQueue[T models.Reviewable] struct {
	kind    models.ReviewKind
	repo    repository.ReviewRepository[T]
	project func(T) dto.ReviewItem
}

// NewReviewQueue adapts a typed repository to ReviewQueue.
func NewReviewQueue[T models.Reviewable](kind models.ReviewKind, repo repository.ReviewRepository[T], project func(T) dto.ReviewItem) ReviewQueue {
	return &reviewQueue[T]{kind: kind, repo: repo, project: project}
}

func (q *reviewQueue[T]) Kind() models.ReviewKind {
	return q.kind
}

func (q *reviewQueue[T]) List(ctx context.Context) ([]dto.ReviewItem, error) {
	records, err := q.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReviewItem, 0, len(records))
	for _, record := range records {
		items = append(items, q.project(record))
	}
	return items, nil
}

func (q *reviewQueue[T]) Get(ctx context.Context, id uint) (dto.ReviewItem, error) {
	record, err := q.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewItem{}, ErrReviewNotFound
		}
		return dto.ReviewItem{}, err
	}
	return q.project(record), nil
}

func (q *reviewQueue[T]) Transition(ctx context.Context, id uint, change repository.ReviewTransition) (dto.ReviewItem, error) {
	record, err := q.repo.Transition(ctx, id, change)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.ReviewItem{}, ErrReviewNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return dto.ReviewItem{}, ErrReviewNotPending
		default:
			return dto.ReviewItem{}, err
		}
	}
	return q.project(record), nil
}

func (q *reviewQueue[T]) CountByStatus(ctx context.Context) (map[models.ReviewStatus]int64, error) {
	rows, err := q.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ReviewStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
