package server

import (
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"forgeline/internal/models"
	"forgeline/internal/observability"
	"forgeline/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SubmissionResponse is the API response model for accepted submissions.
type SubmissionResponse struct {
	ConfirmationID string `json:"confirmation_id"`
	Kind           string `json:"kind"`
	Attachments    int    `json:"attachments"`
}

// SubmitContact handles POST /api/forms/contact
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	return s.handleSubmission(c, models.SubmissionContact)
}

// SubmitRFQ handles POST /api/forms/rfq
func (s *Server) SubmitRFQ(c *fiber.Ctx) error {
	return s.handleSubmission(c, models.SubmissionRFQ)
}

func (s *Server) handleSubmission(c *fiber.Ctx, kind string) error {
	submission := &models.Submission{
		Kind:     kind,
		Name:     strings.TrimSpace(c.FormValue("name")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Phone:    strings.TrimSpace(c.FormValue("phone")),
		Company:  strings.TrimSpace(c.FormValue("company")),
		Message:  strings.TrimSpace(c.FormValue("message")),
		ClientIP: c.IP(),
	}
	// A captcha token may be posted; verification happens upstream.
	_ = c.FormValue("captcha_token")

	submission.Locale = c.FormValue("locale")
	if submission.Locale == "" {
		submission.Locale = s.translator.Negotiate(c.Get("Accept-Language"))
	}

	fieldErrs := validation.FieldErrors{}
	if err := validation.ValidateName(submission.Name); err != nil {
		fieldErrs.Add("name", err.Error())
	}
	if err := validation.ValidateEmail(submission.Email); err != nil {
		fieldErrs.Add("email", err.Error())
	}
	if submission.Phone != "" {
		if err := validation.ValidatePhone(submission.Phone); err != nil {
			fieldErrs.Add("phone", err.Error())
		}
	}
	if err := validation.ValidateMessage(submission.Message); err != nil {
		fieldErrs.Add("message", err.Error())
	}

	if kind == models.SubmissionRFQ {
		s.validateRFQFields(c, submission, fieldErrs)
	}

	attachments, attachErrs := s.collectAttachments(c)
	for field, problem := range attachErrs {
		fieldErrs.Add(field, problem)
	}

	if len(fieldErrs) > 0 {
		observability.SubmissionsTotal.WithLabelValues(kind, "rejected").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("submission failed validation", fieldErrs))
	}

	submission.ConfirmationID = uuid.New().String()
	submission.Attachments = attachments

	if err := s.submissionRepo.Create(c.Context(), submission); err != nil {
		observability.SubmissionsTotal.WithLabelValues(kind, "error").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	observability.SubmissionsTotal.WithLabelValues(kind, "accepted").Inc()

	// Notification and mail are best-effort; the submission is already
	// persisted and the client gets its confirmation either way.
	if s.notifier != nil {
		if err := s.notifier.PublishSubmission(c.Context(), submission); err != nil {
			observability.Logger.Warn("submission event publish failed",
				slog.String("confirmation_id", submission.ConfirmationID),
				slog.Any("error", err))
		}
	}
	if err := s.mailer.Send(c.Context(), submission); err != nil {
		observability.Logger.Warn("submission notification mail failed",
			slog.String("confirmation_id", submission.ConfirmationID),
			slog.Any("error", err))
	}
	return c.Status(fiber.StatusCreated).JSON(SubmissionResponse{
		ConfirmationID: submission.ConfirmationID,
		Kind:           kind,
		Attachments:    len(submission.Attachments),
	})
}

func (s *Server) validateRFQFields(c *fiber.Ctx, submission *models.Submission, fieldErrs validation.FieldErrors) {
	submission.Material = strings.TrimSpace(c.FormValue("material"))
	submission.Process = strings.TrimSpace(c.FormValue("process"))

	if err := validation.ValidateMaterial(submission.Material); err != nil {
		fieldErrs.Add("material", err.Error())
	}
	if err := validation.ValidateProcess(submission.Process); err != nil {
		fieldErrs.Add("process", err.Error())
	}

	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil {
		fieldErrs.Add("quantity", "must be a whole number")
	} else {
		submission.Quantity = quantity
		if err := validation.ValidateQuantity(quantity); err != nil {
			fieldErrs.Add("quantity", err.Error())
		}
	}

	thickness, err := strconv.ParseFloat(c.FormValue("thickness_mm"), 64)
	if err != nil {
		fieldErrs.Add("thickness_mm", "must be a number")
	} else {
		submission.ThicknessMM = thickness
		if err := validation.ValidateThickness(thickness); err != nil {
			fieldErrs.Add("thickness_mm", err.Error())
		}
	}
}

// collectAttachments reads and sniffs every uploaded file. Only metadata is
// kept; the bytes themselves are discarded once validated.
func (s *Server) collectAttachments(c *fiber.Ctx) ([]models.Attachment, validation.FieldErrors) {
	fieldErrs := validation.FieldErrors{}

	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, fieldErrs
	}
	files := form.File["attachments"]
	if len(files) == 0 {
		return nil, fieldErrs
	}
	if len(files) > validation.MaxAttachments {
		fieldErrs.Add("attachments", "too many files")
		return nil, fieldErrs
	}

	var attachments []models.Attachment
	for i, header := range files {
		field := "attachments[" + strconv.Itoa(i) + "]"
		data, err := readUpload(header)
		if err != nil {
			fieldErrs.Add(field, err.Error())
			continue
		}
		mediaType, err := validation.SniffAttachment(header.Filename, data)
		if err != nil {
			fieldErrs.Add(field, err.Error())
			continue
		}
		attachments = append(attachments, models.Attachment{
			Filename:  header.Filename,
			MediaType: mediaType,
			SizeBytes: int64(len(data)),
		})
	}
	return attachments, fieldErrs
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > validation.MaxAttachmentBytes {
		return nil, fiber.NewError(fiber.StatusBadRequest, "file exceeds the size limit")
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// LimitReader guards against a lying Content-Length.
	data, err := io.ReadAll(io.LimitReader(f, validation.MaxAttachmentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > validation.MaxAttachmentBytes {
		return nil, fiber.NewError(fiber.StatusBadRequest, "file exceeds the size limit")
	}
	return data, nil
}
