package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/field-report-service/internal/api/dto"
	"github.com/spec-kit/field-report-service/internal/auth"
	"github.com/spec-kit/field-report-service/internal/domain"
	"github.com/spec-kit/field-report-service/internal/service"
	apperrors "github.com/spec-kit/field-report-service/pkg/util"
)

// ReportsHandler manages report submission and the admin listing.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Submit handles POST /api/reports.
func (h *ReportsHandler) Submit(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	payload := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	report, err := h.service.Submit(c.Context(), session, payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"report": report})
}

// List handles GET /api/admin/reports.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	reports, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reports": reports})
}

// UpdateStatus handles POST /api/admin/reports/status.
func (h *ReportsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	report, err := h.service.UpdateStatus(c.Context(), req.ID, domain.ReportStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"report": report})
}
