package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/service"
	"github.com/noah-isme/mentora-api/internal/utils"
)

const documentField = "document"

// IntakeHandler accepts submissions that land in the review queues.
type IntakeHandler struct {
	service service.IntakeService
	logger  zerolog.Logger
}

// NewIntakeHandler constructs an intake handler.
func NewIntakeHandler(service service.IntakeService, logger zerolog.Logger) *IntakeHandler {
	return &IntakeHandler{
		service: service,
		logger:  logger.With().Str("component", "intake_handler").Logger(),
	}
}

// Register wires intake routes. Company requests and mentor applications accept either JSON or a
// multipart form with an optional "document" file. Guards run before each route only, so the
// routes can share a group with unrelated endpoints.
func (h *IntakeHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	route := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guards...), handler)
	}
	router.Post("/company-requests", route(h.submitCompanyRequest)...)
	router.Post("/mentor-applications", route(h.submitMentorApplication)...)
	router.Post("/programs", route(h.submitProgram)...)
}

func (h *IntakeHandler) submitCompanyRequest(c *fiber.Ctx) error {
	var payload dto.CompanyRequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	document, closeDocument, err := documentFromRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document")
	}
	defer closeDocument()

	response, err := h.service.SubmitCompanyRequest(requestContext(c), userIDStringFromContext(c), payload, document)
	if err != nil {
		return h.intakeError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "company request submitted", response)
}

func (h *IntakeHandler) submitMentorApplication(c *fiber.Ctx) error {
	var payload dto.MentorApplicationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	document, closeDocument, err := documentFromRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document")
	}
	defer closeDocument()

	response, err := h.service.SubmitMentorApplication(requestContext(c), userIDStringFromContext(c), payload, document)
	if err != nil {
		return h.intakeError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mentor application submitted", response)
}

func (h *IntakeHandler) submitProgram(c *fiber.Ctx) error {
	var payload dto.ProgramCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.SubmitProgram(requestContext(c), userIDStringFromContext(c), payload)
	if err != nil {
		return h.intakeError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program submitted", response)
}

func (h *IntakeHandler) intakeError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid submission", validationDetails(err))
	case errors.Is(err, service.ErrUnsupportedDocument):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrDocumentTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrDocumentUploadUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg("submission failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "submission failed")
	}
}

// documentFromRequest returns the optional uploaded document. The returned close func is always
// safe to call.
func documentFromRequest(c *fiber.Ctx) (*dto.UploadedDocument, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, err
	}
	files := form.File[documentField]
	if len(files) == 0 {
		return nil, noop, nil
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}

	return &dto.UploadedDocument{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, func() { _ = file.Close() }, nil
}
