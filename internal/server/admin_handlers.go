package server

import (
	"log/slog"
	"time"

	"forgeline/internal/models"
	"forgeline/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = time.Hour

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin handles POST /api/admin/login. Credentials come from config;
// the password is checked against a bcrypt hash.
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body", nil))
	}

	if s.config.AdminPasswordHash == "" {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUnauthorizedError("Admin access is not configured"))
	}

	if req.Username != s.config.AdminUser {
		// Burn a bcrypt comparison anyway so the two failure paths take
		// comparable time.
		_ = bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(req.Password))
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  "forgeline-api",
		"sub":  req.Username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(adminTokenTTL).Unix(),
		"jti":  uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	observability.Logger.Info("admin login", slog.String("user", req.Username))
	return c.JSON(fiber.Map{
		"token":      signed,
		"expires_in": int(adminTokenTTL.Seconds()),
	})
}

// RebuildContent handles POST /api/admin/content/rebuild. The new snapshot
// is built aside and swapped in; reads keep serving the old one meanwhile.
func (s *Server) RebuildContent(c *fiber.Ctx) error {
	if err := s.library.Rebuild(c.Context()); err != nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(err))
	}

	if s.notifier != nil {
		if err := s.notifier.PublishIndexRebuild(c.Context(), s.library.Locales()); err != nil {
			observability.Logger.Warn("rebuild event publish failed", slog.Any("error", err))
		}
	}

	return c.JSON(fiber.Map{
		"status":   "rebuilt",
		"locales":  s.library.Locales(),
		"built_at": s.library.BuiltAt(),
	})
}

// GetBuildReports handles GET /api/admin/content/reports
func (s *Server) GetBuildReports(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"built_at": s.library.BuiltAt(),
		"reports":  s.library.Reports(),
	})
}

// GetSubmissions handles GET /api/admin/submissions?kind=&limit=&offset=
func (s *Server) GetSubmissions(c *fiber.Ctx) error {
	kind := c.Query("kind")
	if kind != "" && kind != models.SubmissionContact && kind != models.SubmissionRFQ {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("unknown submission kind", map[string]string{"kind": "must be contact or rfq"}))
	}
	limit, offset := parseLimitOffset(c, 50, 200)

	submissions, err := s.submissionRepo.List(c.Context(), kind, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	total, err := s.submissionRepo.Count(c.Context(), kind)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"submissions": submissions,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}
