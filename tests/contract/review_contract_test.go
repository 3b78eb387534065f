package contract_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/handler"
	"github.com/noah-isme/mentora-api/internal/listview"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/service"
)

// stubReviewService renders a real controller view over fixed records.
type stubReviewService struct {
	service.ReviewService
	items []dto.ReviewItem
}

func (s stubReviewService) View(_ context.Context, _ service.ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	ctrl := listview.New[dto.ReviewItem](nil, listview.WithPageSize(2))
	ctrl.SetRecords(s.items)
	ctrl.SetStatusFilter(listview.StatusPending)
	ctrl.RequestReject(s.items[0].RecordID())
	return dto.NewReviewListResponse(kind, ctrl.View()), nil
}

type stubSummaryService struct{}

func (stubSummaryService) Invalidate(context.Context) {}

func (stubSummaryService) Summary(context.Context) (dto.ReviewSummaryResponse, error) {
	return dto.ReviewSummaryResponse{
		Queues: []dto.ReviewQueueSummary{
			{Kind: "company_request", Pending: 2, Approved: 1, Total: 3},
			{Kind: "mentor_application", Pending: 5, Rejected: 2, Total: 7},
			{Kind: "program"},
		},
		TotalPending: 7,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func fetchPayload(t *testing.T, app *fiber.App, path string) interface{} {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func newContractApp(items []dto.ReviewItem) *fiber.App {
	app := fiber.New()
	handler.NewReviewHandler(stubReviewService{items: items}, stubSummaryService{}, nil, zerolog.Nop()).
		Register(app.Group("/api/admin/reviews"))
	return app
}

func TestReviewListContract(t *testing.T) {
	schema := compileSchema(t, "review_list.schema.json")

	reviewedAt := time.Now().UTC()
	items := make([]dto.ReviewItem, 0, 4)
	for i := 1; i <= 3; i++ {
		items = append(items, dto.ReviewItem{
			ID:          uint(i),
			Kind:        "mentor_application",
			Title:       fmt.Sprintf("Applicant %d", i),
			Subtitle:    "Universitas Indonesia",
			Email:       fmt.Sprintf("applicant%d@example.com", i),
			Category:    "Data Science",
			Status:      listview.StatusPending,
			SubmittedAt: time.Now().Add(-time.Duration(i) * time.Hour).UTC(),
			DocumentURL: "https://files.test/cv.pdf",
			SubmitterID: "42",
		})
	}
	items = append(items, dto.ReviewItem{
		ID: 4, Kind: "mentor_application", Title: "Applicant 4", Status: listview.StatusRejected,
		SubmittedAt: time.Now().UTC(), ReviewedAt: &reviewedAt, RejectionReason: "Incomplete",
	})

	payload := fetchPayload(t, newContractApp(items), "/api/admin/reviews/mentor-applications")
	require.NoError(t, schema.Validate(payload))
}

func TestReviewSummaryContract(t *testing.T) {
	schema := compileSchema(t, "review_summary.schema.json")

	payload := fetchPayload(t, newContractApp(nil), "/api/admin/reviews/summary")
	require.NoError(t, schema.Validate(payload))
}
