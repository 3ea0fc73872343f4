package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/insurecare/feedback-portal/internal/api/dto"
	"github.com/insurecare/feedback-portal/internal/auth"
	"github.com/insurecare/feedback-portal/internal/service"
)

// StaffHandler exposes the agent and frontline dashboard.
type StaffHandler struct {
	dashboard *service.DashboardService
	qr        *service.QRService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(dashboard *service.DashboardService, qrService *service.QRService) *StaffHandler {
	return &StaffHandler{dashboard: dashboard, qr: qrService}
}

// Profile handles GET /api/dashboard/profile.
func (h *StaffHandler) Profile(c *fiber.Ctx) error {
	summary, err := h.dashboard.Profile(c.UserContext(), auth.CallerFromContext(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewProfileSummaryResponse(&summary))
}

// Stats handles GET /api/dashboard/stats.
func (h *StaffHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboard.StaffStats(c.UserContext(), auth.CallerFromContext(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewStaffStatsResponse(&stats))
}

// QRCode handles GET /api/dashboard/qr-code.
func (h *StaffHandler) QRCode(c *fiber.Ctx) error {
	image, err := h.qr.OwnCode(c.UserContext(), auth.CallerFromContext(c))
	if err != nil {
		return err
	}
	return attachment(c, image.Filename, image.ContentType, image.Data)
}
