package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/service"
	"github.com/noah-isme/mentora-api/internal/utils"
)

const reviewStreamPingInterval = 30 * time.Second

// ReviewHandler serves the admin review queues.
type ReviewHandler struct {
	reviews service.ReviewService
	summary service.ReviewSummaryService
	hub     *service.ReviewHub
	logger  zerolog.Logger
}

// NewReviewHandler constructs a review handler. The hub is optional; without it the stream route
// is not registered.
func NewReviewHandler(reviews service.ReviewService, summary service.ReviewSummaryService, hub *service.ReviewHub, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		summary: summary,
		hub:     hub,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register wires review routes under the provided router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	if h.summary != nil {
		router.Get("/summary", h.getSummary)
	}
	if h.hub != nil {
		router.Use("/stream", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		router.Get("/stream", websocket.New(h.stream))
	}

	router.Get("/:kind", h.list)
	router.Patch("/:kind/session", h.updateSession)
	router.Delete("/:kind/session", h.resetSession)
	router.Put("/:kind/reject/reason", h.updateRejectReason)
	router.Post("/:kind/reject/confirm", h.confirmReject)
	router.Delete("/:kind/reject", h.cancelReject)
	router.Get("/:kind/:id", h.detail)
	router.Post("/:kind/:id/approve", h.approve)
	router.Post("/:kind/:id/reject", h.openReject)
}

func (h *ReviewHandler) getSummary(c *fiber.Ctx) error {
	summary, err := h.summary.Summary(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build review summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build review summary")
	}
	return utils.SendSuccess(c, "review summary", summary)
}

func (h *ReviewHandler) list(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}

	update, err := sessionUpdateFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := activityActorFromContext(c)
	var view dto.ReviewListResponse
	if update.IsEmpty() {
		view, err = h.reviews.View(requestContext(c), actor, kind)
	} else {
		view, err = h.reviews.UpdateSession(requestContext(c), actor, kind, update)
	}
	if err != nil {
		return h.reviewError(c, err, nil)
	}

	return utils.SendSuccess(c, "review queue", view)
}

func (h *ReviewHandler) updateSession(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}

	var payload dto.ReviewSessionUpdate
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	view, err := h.reviews.UpdateSession(requestContext(c), activityActorFromContext(c), kind, payload)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	return utils.SendSuccess(c, "review session updated", view)
}

func (h *ReviewHandler) resetSession(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}

	view, err := h.reviews.ResetSession(requestContext(c), activityActorFromContext(c), kind)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	return utils.SendSuccess(c, "review session reset", view)
}

func (h *ReviewHandler) detail(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid review id")
	}

	detail, err := h.reviews.Detail(requestContext(c), kind, id)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	return utils.SendSuccess(c, "review record", detail)
}

func (h *ReviewHandler) approve(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid review id")
	}

	view, err := h.reviews.Approve(requestContext(c), activityActorFromContext(c), kind, id)
	if err != nil {
		return h.reviewError(c, err, &view)
	}
	return utils.SendSuccess(c, "review approved", view)
}

func (h *ReviewHandler) openReject(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid review id")
	}

	view, err := h.reviews.OpenReject(requestContext(c), activityActorFromContext(c), kind, id)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	return utils.SendSuccess(c, "rejection started", view)
}

func (h *ReviewHandler) updateRejectReason(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}

	var payload dto.RejectReasonRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	view, err := h.reviews.UpdateRejectReason(requestContext(c), activityActorFromContext(c), kind, payload)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	return utils.SendSuccess(c, "rejection reason updated", view)
}

func (h *ReviewHandler) confirmReject(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}

	var payload dto.RejectReasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	view, err := h.reviews.ConfirmReject(requestContext(c), activityActorFromContext(c), kind, payload)
	if err != nil {
		return h.reviewError(c, err, &view)
	}
	return utils.SendSuccess(c, "review rejected", view)
}

func (h *ReviewHandler) cancelReject(c *fiber.Ctx) error {
	kind, err := parseReviewKindParam(c)
	if err != nil {
		return h.reviewError(c, err, nil)
	}

	view, err := h.reviews.CancelReject(requestContext(c), activityActorFromContext(c), kind)
	if err != nil {
		return h.reviewError(c, err, nil)
	}
	return utils.SendSuccess(c, "rejection cancelled", view)
}

// reviewError maps service errors to responses. When the service still rendered the queue, the
// view is returned alongside the error so the client can redraw.
func (h *ReviewHandler) reviewError(c *fiber.Ctx, err error, view *dto.ReviewListResponse) error {
	status, message := fiber.StatusInternalServerError, "failed to process review request"
	switch {
	case errors.Is(err, service.ErrUnknownReviewKind):
		status, message = fiber.StatusNotFound, "review queue not found"
	case errors.Is(err, service.ErrReviewNotFound):
		status, message = fiber.StatusNotFound, "review record not found"
	case errors.Is(err, service.ErrReviewNotPending):
		status, message = fiber.StatusConflict, "review record is not pending"
	case errors.Is(err, service.ErrRejectNotOpen):
		status, message = fiber.StatusConflict, "no rejection in progress"
	case errors.Is(err, service.ErrRejectReasonRequired):
		status, message = fiber.StatusUnprocessableEntity, "rejection reason is required"
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid review request", validationDetails(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg("review request failed")
	}

	if view != nil && view.Kind != "" {
		return utils.FailWithData(c, status, message, view)
	}
	return utils.SendError(c, status, message)
}

func sessionUpdateFromQuery(c *fiber.Ctx) (dto.ReviewSessionUpdate, error) {
	var update dto.ReviewSessionUpdate
	queries := c.Queries()

	if search, ok := queries["search"]; ok {
		update.Search = &search
	}
	if status, ok := queries["status"]; ok && status != "" {
		update.Status = &status
	}
	if _, ok := queries["page"]; ok {
		page, err := parseQueryInt(c, "page")
		if err != nil {
			return update, errors.New("invalid page")
		}
		update.Page = &page
	}
	if _, ok := queries["page_size"]; ok {
		size, err := parseQueryInt(c, "page_size")
		if err != nil {
			return update, errors.New("invalid page size")
		}
		update.PageSize = &size
	}
	return update, nil
}

type reviewStreamMessage struct {
	Type  string          `json:"type"`
	Event dto.ReviewEvent `json:"event"`
}

func (h *ReviewHandler) stream(conn *websocket.Conn) {
	var kindFilter models.ReviewKind
	if raw := conn.Query("kind"); raw != "" {
		kind, err := service.ParseReviewKind(raw)
		if err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "unknown review queue"))
			_ = conn.Close()
			return
		}
		kindFilter = kind
	}

	events, cleanup := h.hub.Subscribe()
	defer cleanup()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Info().Str("kind", string(kindFilter)).Msg("review stream connected")
	defer func() { h.logger.Info().Msg("review stream disconnected") }()

	ping := time.NewTicker(reviewStreamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if kindFilter != "" && event.Kind != string(kindFilter) {
				continue
			}
			payload, err := json.Marshal(reviewStreamMessage{Type: "review.updated", Event: event})
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
