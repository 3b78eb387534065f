package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/listview"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/observability"
	"github.com/noah-isme/mentora-api/internal/repository"
)

var (
	// ErrReviewNotFound indicates the record does not exist in the queue.
	ErrReviewNotFound = errors.New("review record not found")
	// ErrReviewNotPending indicates the record was already approved or rejected.
	ErrReviewNotPending = errors.New("review record is not pending")
	// ErrRejectReasonRequired indicates a rejection without a usable reason.
	ErrRejectReasonRequired = errors.New("rejection reason is required")
	// ErrInvalidReviewAction indicates a transition to a status other than approved or rejected.
	ErrInvalidReviewAction = errors.New("invalid review action")
)

// SummaryInvalidator drops cached queue summaries after a status change.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context)
}

// ReviewDispatcher applies the status transitions requested from a review list.
type ReviewDispatcher interface {
	Dispatch(ctx context.Context, actor ActivityActor, kind models.ReviewKind, action listview.Action) (dto.ReviewItem, error)
}

type reviewDispatcher struct {
	catalog       ReviewCatalog
	activity      ActivityRecorder
	notifications NotificationService
	events        ReviewEventPublisher
	summary       SummaryInvalidator
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewReviewDispatcher constructs the dispatcher. Activity, notifications, events and summary
// are optional collaborators.
func NewReviewDispatcher(
	catalog ReviewCatalog,
	activity ActivityRecorder,
	notifications NotificationService,
	events ReviewEventPublisher,
	summary SummaryInvalidator,
	logger zerolog.Logger,
) ReviewDispatcher {
	return &reviewDispatcher{
		catalog:       catalog,
		activity:      activity,
		notifications: notifications,
		events:        events,
		summary:       summary,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "review_dispatcher").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/mentora-api/internal/service/review"),
		now:           time.Now,
	}
}

func (d *reviewDispatcher) Dispatch(ctx context.Context, actor ActivityActor, kind models.ReviewKind, action listview.Action) (dto.ReviewItem, error) {
	ctx, span := d.tracer.Start(ctx, "reviews.dispatch", trace.WithAttributes(
		attribute.String("review.kind", string(kind)),
		attribute.String("review.record_id", action.RecordID),
		attribute.String("review.status", action.Status),
		attribute.Int("review.actor_id", int(actor.ID)),
	))
	defer span.End()

	item, err := d.dispatch(ctx, actor, kind, action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		return dto.ReviewItem{}, err
	}

	span.SetStatus(codes.Ok, "applied")
	return item, nil
}

func (d *reviewDispatcher) dispatch(ctx context.Context, actor ActivityActor, kind models.ReviewKind, action listview.Action) (dto.ReviewItem, error) {
	queue, ok := d.catalog.Queue(kind)
	if !ok {
		return dto.ReviewItem{}, ErrUnknownReviewKind
	}

	id, err := strconv.ParseUint(action.RecordID, 10, 64)
	if err != nil || id == 0 {
		return dto.ReviewItem{}, ErrReviewNotFound
	}

	change := repository.ReviewTransition{
		ActorID:   actor.ID,
		ActorRole: normalizeRole(actor.Role),
		At:        d.now().UTC(),
	}
	switch models.ReviewStatus(action.Status) {
	case models.ReviewStatusApproved:
		change.To = models.ReviewStatusApproved
	case models.ReviewStatusRejected:
		change.To = models.ReviewStatusRejected
		change.Reason = plainText(d.sanitizer, action.Reason)
		if change.Reason == "" {
			return dto.ReviewItem{}, ErrRejectReasonRequired
		}
	default:
		return dto.ReviewItem{}, ErrInvalidReviewAction
	}

	item, err := queue.Transition(ctx, uint(id), change)
	if err != nil {
		return dto.ReviewItem{}, err
	}

	observability.ReviewDecisions().WithLabelValues(string(kind), string(change.To)).Inc()
	d.logger.Info().
		Str("kind", string(kind)).
		Uint("record_id", item.ID).
		Str("status", item.Status).
		Uint("actor_id", actor.ID).
		Msg("review decision applied")

	d.afterTransition(ctx, actor, kind, item, change)
	return item, nil
}

// afterTransition runs the side effects of a persisted decision. Failures are logged and never
// undo the transition.
func (d *reviewDispatcher) afterTransition(ctx context.Context, actor ActivityActor, kind models.ReviewKind, item dto.ReviewItem, change repository.ReviewTransition) {
	if d.activity != nil {
		recordID := item.ID
		metadata := map[string]interface{}{"title": item.Title}
		if change.Reason != "" {
			metadata["reason"] = change.Reason
		}
		if _, err := d.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "review." + string(change.To),
			EntityType: string(kind),
			EntityID:   &recordID,
			Metadata:   metadata,
		}); err != nil {
			d.logger.Warn().Err(err).Uint("record_id", item.ID).Msg("failed to record review activity")
		}
	}

	if d.notifications != nil && item.SubmitterID != "" {
		if _, err := d.notifications.Notify(ctx, item.SubmitterID, "review."+string(change.To), decisionMessage(kind, item, change)); err != nil {
			d.logger.Warn().Err(err).Uint("record_id", item.ID).Msg("failed to notify submitter")
		}
	}

	if d.events != nil {
		d.events.Publish(ctx, dto.ReviewEvent{
			Kind:       string(kind),
			RecordID:   item.ID,
			Status:     item.Status,
			Reason:     change.Reason,
			ActorID:    actor.ID,
			OccurredAt: change.At,
		})
	}

	if d.summary != nil {
		d.summary.Invalidate(ctx)
	}
}

func decisionMessage(kind models.ReviewKind, item dto.ReviewItem, change repository.ReviewTransition) string {
	subject := strings.ReplaceAll(string(kind), "_", " ")
	if item.Title != "" {
		subject = fmt.Sprintf("%s %s", subject, item.Title)
	}
	if change.To == models.ReviewStatusRejected {
		return fmt.Sprintf("Your %s was rejected: %s", subject, change.Reason)
	}
	return fmt.Sprintf("Your %s was approved.", subject)
}
