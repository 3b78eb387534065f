package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/handler"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/service"
)

type stubReviewService struct {
	view       dto.ReviewListResponse
	detail     dto.ReviewDetailResponse
	err        error
	calls      []string
	lastActor  service.ActivityActor
	lastKind   models.ReviewKind
	lastID     uint
	lastUpdate dto.ReviewSessionUpdate
	lastReason dto.RejectReasonRequest
}

func (s *stubReviewService) record(name string, actor service.ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	s.calls = append(s.calls, name)
	s.lastActor = actor
	s.lastKind = kind
	return s.view, s.err
}

func (s *stubReviewService) View(_ context.Context, actor service.ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	return s.record("view", actor, kind)
}

func (s *stubReviewService) UpdateSession(_ context.Context, actor service.ActivityActor, kind models.ReviewKind, update dto.ReviewSessionUpdate) (dto.ReviewListResponse, error) {
	s.lastUpdate = update
	return s.record("update", actor, kind)
}

func (s *stubReviewService) ResetSession(_ context.Context, actor service.ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	return s.record("reset", actor, kind)
}

func (s *stubReviewService) Detail(_ context.Context, kind models.ReviewKind, id uint) (dto.ReviewDetailResponse, error) {
	s.calls = append(s.calls, "detail")
	s.lastKind = kind
	s.lastID = id
	return s.detail, s.err
}

func (s *stubReviewService) Approve(_ context.Context, actor service.ActivityActor, kind models.ReviewKind, id uint) (dto.ReviewListResponse, error) {
	s.lastID = id
	return s.record("approve", actor, kind)
}

func (s *stubReviewService) OpenReject(_ context.Context, actor service.ActivityActor, kind models.ReviewKind, id uint) (dto.ReviewListResponse, error) {
	s.lastID = id
	return s.record("open_reject", actor, kind)
}

func (s *stubReviewService) UpdateRejectReason(_ context.Context, actor service.ActivityActor, kind models.ReviewKind, req dto.RejectReasonRequest) (dto.ReviewListResponse, error) {
	s.lastReason = req
	return s.record("reason", actor, kind)
}

func (s *stubReviewService) ConfirmReject(_ context.Context, actor service.ActivityActor, kind models.ReviewKind, req dto.RejectReasonRequest) (dto.ReviewListResponse, error) {
	s.lastReason = req
	return s.record("confirm", actor, kind)
}

func (s *stubReviewService) CancelReject(_ context.Context, actor service.ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	return s.record("cancel", actor, kind)
}

type stubSummaryService struct {
	response dto.ReviewSummaryResponse
	err      error
}

func (s *stubSummaryService) Invalidate(context.Context) {}

func (s *stubSummaryService) Summary(context.Context) (dto.ReviewSummaryResponse, error) {
	return s.response, s.err
}

func newReviewApp(reviews service.ReviewService, summary service.ReviewSummaryService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/admin/reviews", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "counsellor")
		return c.Next()
	})
	handler.NewReviewHandler(reviews, summary, nil, zerolog.New(io.Discard)).Register(group)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

type reviewEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    dto.ReviewListResponse `json:"data"`
}

func TestReviewHandler_ListWithoutQueryRendersView(t *testing.T) {
	svc := &stubReviewService{view: dto.ReviewListResponse{Kind: "mentor_application", Status: "all"}}
	app := newReviewApp(svc, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/admin/reviews/mentor-applications", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body reviewEnvelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "mentor_application", body.Data.Kind)
	require.Equal(t, []string{"view"}, svc.calls)
	require.Equal(t, models.ReviewKindMentorApplication, svc.lastKind)
	require.Equal(t, uint(7), svc.lastActor.ID)
	require.Equal(t, "counsellor", svc.lastActor.Role)
}

func TestReviewHandler_ListWithQueryUpdatesSession(t *testing.T) {
	svc := &stubReviewService{view: dto.ReviewListResponse{Kind: "program"}}
	app := newReviewApp(svc, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/admin/reviews/programs?search=data&status=pending&page=2&page_size=5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"update"}, svc.calls)
	require.NotNil(t, svc.lastUpdate.Search)
	require.Equal(t, "data", *svc.lastUpdate.Search)
	require.Equal(t, "pending", *svc.lastUpdate.Status)
	require.Equal(t, 2, *svc.lastUpdate.Page)
	require.Equal(t, 5, *svc.lastUpdate.PageSize)
}

func TestReviewHandler_ListRejectsBadPage(t *testing.T) {
	svc := &stubReviewService{}
	app := newReviewApp(svc, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/admin/reviews/programs?page=abc", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.calls)
}

func TestReviewHandler_UnknownQueue(t *testing.T) {
	svc := &stubReviewService{}
	app := newReviewApp(svc, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/admin/reviews/scholarships", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Empty(t, svc.calls)
}

func TestReviewHandler_SessionRoutes(t *testing.T) {
	svc := &stubReviewService{view: dto.ReviewListResponse{Kind: "company_request"}}
	app := newReviewApp(svc, nil)

	search := "acme"
	resp := doJSON(t, app, http.MethodPatch, "/api/admin/reviews/company-requests/session", dto.ReviewSessionUpdate{Search: &search})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "acme", *svc.lastUpdate.Search)

	resp = doJSON(t, app, http.MethodDelete, "/api/admin/reviews/company-requests/session", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"update", "reset"}, svc.calls)
}

func TestReviewHandler_ApproveAndRejectFlow(t *testing.T) {
	svc := &stubReviewService{view: dto.ReviewListResponse{Kind: "mentor_application"}}
	app := newReviewApp(svc, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/admin/reviews/mentor-applications/12/approve", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(12), svc.lastID)

	resp = doJSON(t, app, http.MethodPost, "/api/admin/reviews/mentor-applications/13/reject", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(13), svc.lastID)

	reason := "Incomplete CV"
	resp = doJSON(t, app, http.MethodPut, "/api/admin/reviews/mentor-applications/reject/reason", dto.RejectReasonRequest{Reason: &reason})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Incomplete CV", *svc.lastReason.Reason)

	resp = doJSON(t, app, http.MethodPost, "/api/admin/reviews/mentor-applications/reject/confirm", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Nil(t, svc.lastReason.Reason)

	resp = doJSON(t, app, http.MethodDelete, "/api/admin/reviews/mentor-applications/reject", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, []string{"approve", "open_reject", "reason", "confirm", "cancel"}, svc.calls)
}

func TestReviewHandler_InvalidRecordID(t *testing.T) {
	svc := &stubReviewService{}
	app := newReviewApp(svc, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/admin/reviews/programs/0/approve", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.calls)
}

func TestReviewHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
		message    string
	}{
		{name: "not found", err: service.ErrReviewNotFound, statusCode: fiber.StatusNotFound, message: "review record not found"},
		{name: "not pending", err: service.ErrReviewNotPending, statusCode: fiber.StatusConflict, message: "review record is not pending"},
		{name: "not open", err: service.ErrRejectNotOpen, statusCode: fiber.StatusConflict, message: "no rejection in progress"},
		{name: "reason", err: service.ErrRejectReasonRequired, statusCode: fiber.StatusUnprocessableEntity, message: "rejection reason is required"},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError, message: "failed to process review request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubReviewService{err: tc.err, view: dto.ReviewListResponse{Kind: "program", Status: "pending"}}
			app := newReviewApp(svc, nil)

			resp := doJSON(t, app, http.MethodPost, "/api/admin/reviews/programs/reject/confirm", map[string]string{"reason": ""})
			require.Equal(t, tc.statusCode, resp.StatusCode)

			var body reviewEnvelope
			decodeResponse(t, resp, &body)
			require.False(t, body.Success)
			require.Equal(t, tc.message, body.Message)
			// the re-rendered queue travels with decision errors
			require.Equal(t, "program", body.Data.Kind)
		})
	}
}

func TestReviewHandler_ValidationDetails(t *testing.T) {
	svc := &stubReviewService{}
	app := newReviewApp(svc, nil)

	// a real validation error from the service layer
	validateErr := validatorError(t)
	svc.err = validateErr

	resp := doJSON(t, app, http.MethodGet, "/api/admin/reviews/programs?status=archived", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Details map[string]string `json:"details"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "oneof", body.Details["Status"])
}

func TestReviewHandler_DetailAndSummary(t *testing.T) {
	svc := &stubReviewService{detail: dto.ReviewDetailResponse{Item: dto.ReviewItem{ID: 3, Kind: "program", Title: "Data Science"}}}
	summary := &stubSummaryService{response: dto.ReviewSummaryResponse{TotalPending: 4}}
	app := newReviewApp(svc, summary)

	resp := doJSON(t, app, http.MethodGet, "/api/admin/reviews/programs/3", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var detailBody struct {
		Data dto.ReviewDetailResponse `json:"data"`
	}
	decodeResponse(t, resp, &detailBody)
	require.Equal(t, "Data Science", detailBody.Data.Item.Title)
	require.Equal(t, uint(3), svc.lastID)

	resp = doJSON(t, app, http.MethodGet, "/api/admin/reviews/summary", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summaryBody struct {
		Data dto.ReviewSummaryResponse `json:"data"`
	}
	decodeResponse(t, resp, &summaryBody)
	require.Equal(t, int64(4), summaryBody.Data.TotalPending)
}
