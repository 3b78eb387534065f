package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/observability"
)

// ReviewEventPublisher announces review status changes.
type ReviewEventPublisher interface {
	Publish(ctx context.Context, event dto.ReviewEvent)
}

// ReviewEventBus delivers review events to local stream clients and to the other API nodes.
type ReviewEventBus interface {
	ReviewEventPublisher
	Start(ctx context.Context)
}

type reviewEventEnvelope struct {
	Source string          `json:"source"`
	Event  dto.ReviewEvent `json:"event"`
	SentAt time.Time       `json:"sent_at"`
}

const (
	// reviewEventMemory is how many event ids a node remembers to drop the copy
	// arriving over the second transport.
	reviewEventMemory       = 4096
	reviewEventRetryInitial = 250 * time.Millisecond
	reviewEventRetryMax     = 30 * time.Second
)

type reviewEventBus struct {
	hub          *ReviewHub
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
	seen         *lru.Cache[string, struct{}]
	retryInitial time.Duration
	retryMax     time.Duration
}

// NewReviewEventBus constructs the event bus. Redis and NATS are both optional.
func NewReviewEventBus(hub *ReviewHub, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ReviewEventBus {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":reviews"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".reviews"
	}

	seen, _ := lru.New[string, struct{}](reviewEventMemory)

	return &reviewEventBus{
		seen:         seen,
		retryInitial: reviewEventRetryInitial,
		retryMax:     reviewEventRetryMax,
		hub:          hub,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "review_event_bus").Logger(),
		nodeID:       uuid.NewString(),
	}
}

func (b *reviewEventBus) Start(ctx context.Context) {
	if b.redis != nil && b.redisChannel != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		go b.consumeNATS(ctx)
	}
}

func (b *reviewEventBus) Publish(ctx context.Context, event dto.ReviewEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if b.hub != nil {
		b.hub.Broadcast(event)
		observability.ReviewEvents().WithLabelValues("local").Inc()
	}

	payload, err := json.Marshal(reviewEventEnvelope{Source: b.nodeID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to encode review event")
		return
	}

	if b.redis != nil && b.redisChannel != "" {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			b.logger.Warn().Err(err).Str("channel", b.redisChannel).Msg("failed to publish review event to redis")
		}
	}
	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			b.logger.Warn().Err(err).Str("subject", b.natsSubject).Msg("failed to publish review event to nats")
		}
	}
}

// consumeRedis relays the redis channel until ctx ends or the client is closed. A failed
// subscription is re-established with exponential backoff; a delivered message resets it.
func (b *reviewEventBus) consumeRedis(ctx context.Context) {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = b.retryInitial
	retry.MaxInterval = b.retryMax
	retry.MaxElapsedTime = 0

	for ctx.Err() == nil {
		err := b.receiveRedis(ctx, retry)
		if err == nil || ctx.Err() != nil {
			return
		}

		wait := retry.NextBackOff()
		b.logger.Warn().Err(err).Dur("retry_in", wait).Msg("review event redis subscription failed, resubscribing")
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// receiveRedis returns nil when the client was closed and the error otherwise.
func (b *reviewEventBus) receiveRedis(ctx context.Context, retry backoff.BackOff) error {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, redis.ErrClosed) {
				return nil
			}
			return err
		}
		retry.Reset()
		b.handle([]byte(msg.Payload), "redis")
	}
}

func (b *reviewEventBus) consumeNATS(ctx context.Context) {
	// A plain subscription: every node must relay the event to its own websocket clients.
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handle(msg.Data, "nats")
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats review subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain review nats subscription")
		}
	}()
}

func (b *reviewEventBus) handle(payload []byte, origin string) {
	var envelope reviewEventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		b.logger.Warn().Err(err).Msg("invalid review event payload")
		return
	}
	if envelope.Source == b.nodeID || b.hub == nil {
		return
	}
	// With both redis and NATS configured every event arrives twice.
	if id := envelope.Event.ID; id != "" {
		if duplicate, _ := b.seen.ContainsOrAdd(id, struct{}{}); duplicate {
			return
		}
	}

	observability.ReviewEvents().WithLabelValues(origin).Inc()
	b.hub.Broadcast(envelope.Event)
}
