package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mentora-api/internal/dto"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService fills the review queues with demo submissions for local environments.
type SeedService interface {
	SeedReviews(ctx context.Context, token string, req dto.ReviewSeedRequest) (dto.ReviewSeedResponse, error)
}

type seedService struct {
	intake  IntakeService
	enabled bool
	token   string
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service. Seeded records go through intake, so they land
// as pending like any other submission.
func NewSeedService(intake IntakeService, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		intake:  intake,
		enabled: enabled,
		token:   token,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedReviews(ctx context.Context, token string, req dto.ReviewSeedRequest) (dto.ReviewSeedResponse, error) {
	if !s.enabled {
		return dto.ReviewSeedResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.ReviewSeedResponse{}, ErrSeedUnauthorized
	}

	var result dto.ReviewSeedResponse
	for _, item := range req.CompanyRequests {
		if _, err := s.intake.SubmitCompanyRequest(ctx, "", item, nil); err != nil {
			return result, err
		}
		result.CompanyRequests++
	}
	for _, item := range req.MentorApplications {
		if _, err := s.intake.SubmitMentorApplication(ctx, "", item, nil); err != nil {
			return result, err
		}
		result.MentorApplications++
	}
	for _, item := range req.Programs {
		if _, err := s.intake.SubmitProgram(ctx, "", item); err != nil {
			return result, err
		}
		result.Programs++
	}

	s.logger.Info().
		Int("company_requests", result.CompanyRequests).
		Int("mentor_applications", result.MentorApplications).
		Int("programs", result.Programs).
		Msg("review queues seeded")
	return result, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
