package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/models"
)

const (
	reviewSummaryCacheKey      = "reviews:summary"
	defaultReviewSummaryTTL    = time.Minute
	reviewSummaryMaxConcurrent = 4
)

// ReviewSummaryService reports pending/approved/rejected counts for every queue.
type ReviewSummaryService interface {
	SummaryInvalidator
	Summary(ctx context.Context) (dto.ReviewSummaryResponse, error)
}

type reviewSummaryService struct {
	catalog ReviewCatalog
	cache   *redis.Client
	ttl     time.Duration
	logger  zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewReviewSummaryService constructs the summary service. The cache is optional.
func NewReviewSummaryService(catalog ReviewCatalog, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReviewSummaryService {
	if ttl <= 0 {
		ttl = defaultReviewSummaryTTL
	}
	return &reviewSummaryService{
		catalog: catalog,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.With().Str("component", "review_summary_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/mentora-api/internal/service/review"),
		now:     time.Now,
	}
}

func (s *reviewSummaryService) Summary(ctx context.Context) (dto.ReviewSummaryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reviews.summary")
	defer span.End()

	if cached, ok := s.fromCache(ctx); ok {
		cached.CacheHit = true
		return cached, nil
	}

	kinds := s.catalog.Kinds()
	queues := make([]dto.ReviewQueueSummary, len(kinds))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(reviewSummaryMaxConcurrent)
	for i, kind := range kinds {
		i, kind := i, kind
		group.Go(func() error {
			summary, err := s.count(groupCtx, kind)
			if err != nil {
				return err
			}
			queues[i] = summary
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return dto.ReviewSummaryResponse{}, err
	}

	response := dto.ReviewSummaryResponse{Queues: queues, GeneratedAt: s.now().UTC()}
	for _, queue := range queues {
		response.TotalPending += queue.Pending
	}

	s.store(ctx, response)
	return response, nil
}

func (s *reviewSummaryService) count(ctx context.Context, kind models.ReviewKind) (dto.ReviewQueueSummary, error) {
	queue, ok := s.catalog.Queue(kind)
	if !ok {
		return dto.ReviewQueueSummary{}, ErrUnknownReviewKind
	}

	counts, err := queue.CountByStatus(ctx)
	if err != nil {
		return dto.ReviewQueueSummary{}, err
	}

	summary := dto.ReviewQueueSummary{
		Kind:     string(kind),
		Pending:  counts[models.ReviewStatusPending],
		Approved: counts[models.ReviewStatusApproved],
		Rejected: counts[models.ReviewStatusRejected],
	}
	summary.Total = summary.Pending + summary.Approved + summary.Rejected
	return summary, nil
}

func (s *reviewSummaryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, reviewSummaryCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate review summary cache")
	}
}

func (s *reviewSummaryService) fromCache(ctx context.Context) (dto.ReviewSummaryResponse, bool) {
	if s.cache == nil {
		return dto.ReviewSummaryResponse{}, false
	}

	raw, err := s.cache.Get(ctx, reviewSummaryCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read review summary cache")
		}
		return dto.ReviewSummaryResponse{}, false
	}

	var cached dto.ReviewSummaryResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode review summary cache")
		return dto.ReviewSummaryResponse{}, false
	}
	return cached, true
}

func (s *reviewSummaryService) store(ctx context.Context, response dto.ReviewSummaryResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, reviewSummaryCacheKey, payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache review summary")
	}
}
