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
	"github.com/noah-isme/mentora-api/internal/service"
)

type mockSeedService struct {
	err         error
	lastToken   string
	lastRequest *dto.ReviewSeedRequest
	response    dto.ReviewSeedResponse
}

func (m *mockSeedService) SeedReviews(_ context.Context, token string, req dto.ReviewSeedRequest) (dto.ReviewSeedResponse, error) {
	m.lastToken = token
	m.lastRequest = &req
	if m.err != nil {
		return dto.ReviewSeedResponse{}, m.err
	}
	return m.response, nil
}

func seedRequestBody(t *testing.T) []byte {
	t.Helper()
	payload := dto.ReviewSeedRequest{
		MentorApplications: []dto.MentorApplicationCreateRequest{{
			FullName: "Ayu Lestari", Email: "ayu@example.com", University: "UGM", Expertise: "Data", Role: "pre_mentor",
		}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestSeedHandler_ReviewsSuccess(t *testing.T) {
	svc := &mockSeedService{response: dto.ReviewSeedResponse{MentorApplications: 1}}
	app := fiber.New()
	handler.NewSeedHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/seed"))

	req := httptest.NewRequest(http.MethodPost, "/api/seed/reviews", bytes.NewReader(seedRequestBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Seed-Token", "secret")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.ReviewSeedResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, 1, response.Data.MentorApplications)
	require.Equal(t, "secret", svc.lastToken)
	require.Len(t, svc.lastRequest.MentorApplications, 1)
}

func TestSeedHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
		message    string
	}{
		{name: "disabled", err: service.ErrSeedDisabled, statusCode: fiber.StatusForbidden, message: "seeding disabled"},
		{name: "unauthorized", err: service.ErrSeedUnauthorized, statusCode: fiber.StatusForbidden, message: "invalid token"},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError, message: "seed operation failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSeedService{err: tc.err}
			app := fiber.New()
			handler.NewSeedHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/seed"))

			req := httptest.NewRequest(http.MethodPost, "/api/seed/reviews", bytes.NewReader(seedRequestBody(t)))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Seed-Token", "secret")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)

			var response struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decodeResponse(t, resp, &response)
			require.False(t, response.Success)
			require.Equal(t, tc.message, response.Message)
		})
	}
}

func TestSeedHandler_InvalidPayload(t *testing.T) {
	svc := &mockSeedService{}
	app := fiber.New()
	handler.NewSeedHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/seed"))

	req := httptest.NewRequest(http.MethodPost, "/api/seed/reviews", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Nil(t, svc.lastRequest)
}
