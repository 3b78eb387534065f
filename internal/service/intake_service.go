package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/observability"
	"github.com/noah-isme/mentora-api/internal/repository"
)

const defaultMaxDocumentBytes int64 = 5 * 1024 * 1024

var (
	// ErrUnsupportedDocument indicates the supporting document is not a PDF, PNG or JPEG.
	ErrUnsupportedDocument = errors.New("document type not allowed")
	// ErrDocumentTooLarge indicates the supporting document exceeded the configured limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum allowed size")
	// ErrDocumentUploadUnavailable indicates a document was sent but no storage is configured.
	ErrDocumentUploadUnavailable = errors.New("document uploads are not configured")
)

var allowedDocumentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
}

// DocumentStorage abstracts where supporting documents are kept.
type DocumentStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// IntakeService accepts new submissions into the review queues.
type IntakeService interface {
	SubmitCompanyRequest(ctx context.Context, submitterID string, req dto.CompanyRequestCreateRequest, document *dto.UploadedDocument) (dto.IntakeResponse, error)
	SubmitMentorApplication(ctx context.Context, applicantID string, req dto.MentorApplicationCreateRequest, document *dto.UploadedDocument) (dto.IntakeResponse, error)
	SubmitProgram(ctx context.Context, submitterID string, req dto.ProgramCreateRequest) (dto.IntakeResponse, error)
}

type intakeService struct {
	companies repository.ReviewRepository[models.CompanyRequest]
	mentors   repository.ReviewRepository[models.MentorApplication]
	programs  repository.ReviewRepository[models.Program]
	storage   DocumentStorage
	events    ReviewEventPublisher
	summary   SummaryInvalidator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	maxBytes  int64
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewIntakeService constructs the intake service. Storage, events and summary may be nil.
func NewIntakeService(
	companies repository.ReviewRepository[models.CompanyRequest],
	mentors repository.ReviewRepository[models.MentorApplication],
	programs repository.ReviewRepository[models.Program],
	storage DocumentStorage,
	events ReviewEventPublisher,
	summary SummaryInvalidator,
	validate *validator.Validate,
	maxBytes int64,
	logger zerolog.Logger,
) IntakeService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxDocumentBytes
	}
	if validate == nil {
		validate = validator.New()
	}
	return &intakeService{
		companies: companies,
		mentors:   mentors,
		programs:  programs,
		storage:   storage,
		events:    events,
		summary:   summary,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		maxBytes:  maxBytes,
		logger:    logger.With().Str("component", "intake_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/mentora-api/internal/service/intake"),
		now:       time.Now,
	}
}

func (s *intakeService) SubmitCompanyRequest(ctx context.Context, submitterID string, req dto.CompanyRequestCreateRequest, document *dto.UploadedDocument) (dto.IntakeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.IntakeResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "intake.company_request")
	defer span.End()

	documentURL, err := s.storeDocument(ctx, span, "company", document)
	if err != nil {
		return dto.IntakeResponse{}, err
	}

	model := models.CompanyRequest{
		CompanyName:  s.clean(req.CompanyName),
		ContactName:  s.clean(req.ContactName),
		ContactEmail: strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		Industry:     s.clean(req.Industry),
		Website:      strings.TrimSpace(req.Website),
		Message:      s.clean(req.Message),
		DocumentURL:  documentURL,
		SubmittedBy:  strings.TrimSpace(submitterID),
		ReviewFields: s.pending(),
	}
	if err := s.companies.Create(ctx, &model); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.IntakeResponse{}, err
	}

	return s.accepted(ctx, dto.NewCompanyRequestItem(model)), nil
}

func (s *intakeService) SubmitMentorApplication(ctx context.Context, applicantID string, req dto.MentorApplicationCreateRequest, document *dto.UploadedDocument) (dto.IntakeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.IntakeResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "intake.mentor_application")
	defer span.End()

	cvURL, err := s.storeDocument(ctx, span, "cv", document)
	if err != nil {
		return dto.IntakeResponse{}, err
	}

	model := models.MentorApplication{
		ApplicantID:  strings.TrimSpace(applicantID),
		FullName:     s.clean(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		University:   s.clean(req.University),
		Expertise:    s.clean(req.Expertise),
		Role:         models.MentorRole(req.Role),
		Bio:          s.clean(req.Bio),
		CVURL:        cvURL,
		ReviewFields: s.pending(),
	}
	if err := s.mentors.Create(ctx, &model); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.IntakeResponse{}, err
	}

	return s.accepted(ctx, dto.NewMentorApplicationItem(model)), nil
}

func (s *intakeService) SubmitProgram(ctx context.Context, submitterID string, req dto.ProgramCreateRequest) (dto.IntakeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.IntakeResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "intake.program")
	defer span.End()

	tags := make([]string, 0, len(req.Tags))
	seen := make(map[string]struct{}, len(req.Tags))
	for _, tag := range req.Tags {
		normalized := strings.ToLower(s.clean(tag))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		tags = append(tags, normalized)
	}

	model := models.Program{
		Title:        s.clean(req.Title),
		University:   s.clean(req.University),
		Category:     s.clean(req.Category),
		Description:  s.clean(req.Description),
		ContactEmail: strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		Tags:         datatypes.JSONSlice[string](tags),
		SubmittedBy:  strings.TrimSpace(submitterID),
		ReviewFields: s.pending(),
	}
	if err := s.programs.Create(ctx, &model); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.IntakeResponse{}, err
	}

	return s.accepted(ctx, dto.NewProgramItem(model)), nil
}

func (s *intakeService) pending() models.ReviewFields {
	return models.ReviewFields{Status: models.ReviewStatusPending, SubmittedAt: s.now().UTC()}
}

func (s *intakeService) clean(value string) string {
	return plainText(s.sanitizer, value)
}

func (s *intakeService) accepted(ctx context.Context, item dto.ReviewItem) dto.IntakeResponse {
	observability.ReviewSubmissions().WithLabelValues(item.Kind).Inc()
	s.logger.Info().Str("kind", item.Kind).Uint("id", item.ID).Msg("submission queued for review")

	if s.events != nil {
		s.events.Publish(ctx, dto.ReviewEvent{
			Kind:       item.Kind,
			RecordID:   item.ID,
			Status:     item.Status,
			OccurredAt: item.SubmittedAt,
		})
	}
	if s.summary != nil {
		s.summary.Invalidate(ctx)
	}

	return dto.IntakeResponse{ID: item.ID, Kind: item.Kind, Status: item.Status, Item: item}
}

// storeDocument validates and uploads an optional supporting document, returning its URL.
func (s *intakeService) storeDocument(ctx context.Context, span trace.Span, prefix string, document *dto.UploadedDocument) (string, error) {
	if document == nil || document.Content == nil {
		return "", nil
	}
	if s.storage == nil {
		span.SetStatus(codes.Error, "storage unavailable")
		return "", ErrDocumentUploadUnavailable
	}
	if document.Size > s.maxBytes {
		span.RecordError(ErrDocumentTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrDocumentTooLarge
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(document.Content, s.maxBytes+1)); err != nil {
		span.RecordError(err)
		return "", err
	}
	if int64(buf.Len()) > s.maxBytes {
		span.RecordError(ErrDocumentTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrDocumentTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	contentType := strings.ToLower(strings.SplitN(detected.String(), ";", 2)[0])
	span.SetAttributes(attribute.String("intake.document_mime", contentType))
	if _, ok := allowedDocumentTypes[contentType]; !ok {
		span.RecordError(ErrUnsupportedDocument)
		span.SetStatus(codes.Error, "type not allowed")
		return "", ErrUnsupportedDocument
	}

	name := documentName(prefix, document.Filename, detected.Extension())
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return "", fmt.Errorf("upload document: %w", err)
	}
	return url, nil
}

func documentName(prefix, original, extension string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" || base == "." {
		base = "document"
	}
	return prefix + "-" + base + extension
}
