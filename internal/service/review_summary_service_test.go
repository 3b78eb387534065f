package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/repository"
)

type countingQueue struct {
	kind   models.ReviewKind
	counts map[models.ReviewStatus]int64
	err    error
	calls  int
}

func (q *countingQueue) Kind() models.ReviewKind { return q.kind }

func (q *countingQueue) List(context.Context) ([]dto.ReviewItem, error) { return nil, nil }

func (q *countingQueue) Get(context.Context, uint) (dto.ReviewItem, error) {
	return dto.ReviewItem{}, ErrReviewNotFound
}

func (q *countingQueue) Transition(context.Context, uint, repository.ReviewTransition) (dto.ReviewItem, error) {
	return dto.ReviewItem{}, ErrReviewNotFound
}

func (q *countingQueue) CountByStatus(context.Context) (map[models.ReviewStatus]int64, error) {
	q.calls++
	return q.counts, q.err
}

func TestReviewSummaryServiceCountsAndCaches(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	companies := &countingQueue{kind: models.ReviewKindCompanyRequest, counts: map[models.ReviewStatus]int64{
		models.ReviewStatusPending: 4, models.ReviewStatusApproved: 2,
	}}
	mentors := &countingQueue{kind: models.ReviewKindMentorApplication, counts: map[models.ReviewStatus]int64{
		models.ReviewStatusPending: 12, models.ReviewStatusRejected: 3,
	}}
	programs := &countingQueue{kind: models.ReviewKindProgram, counts: map[models.ReviewStatus]int64{}}

	svc := NewReviewSummaryService(NewReviewCatalogFromQueues(programs, mentors, companies), client, time.Minute, testLogger())
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.Equal(t, int64(16), summary.TotalPending)
	require.Len(t, summary.Queues, 3)
	require.Equal(t, "company_request", summary.Queues[0].Kind, "queues follow display order")
	require.Equal(t, int64(6), summary.Queues[0].Total)
	require.Equal(t, int64(3), summary.Queues[1].Rejected)
	require.Zero(t, summary.Queues[2].Total)

	cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, 1, mentors.calls)

	svc.Invalidate(ctx)
	fresh, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, 2, mentors.calls)
}

func TestReviewSummaryServicePropagatesErrors(t *testing.T) {
	boom := errors.New("database unavailable")
	queue := &countingQueue{kind: models.ReviewKindProgram, err: boom}
	svc := NewReviewSummaryService(NewReviewCatalogFromQueues(queue), nil, 0, testLogger())

	_, err := svc.Summary(context.Background())
	require.ErrorIs(t, err, boom)
}
