package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/insurecare/feedback-portal/internal/api/dto"
	"github.com/insurecare/feedback-portal/internal/auth"
	"github.com/insurecare/feedback-portal/internal/service"
)

// AdminHandler serves the admin dashboard and profile exports.
type AdminHandler struct {
	dashboard *service.DashboardService
	export    *service.ExportService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(dashboard *service.DashboardService, export *service.ExportService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, export: export}
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.AdminStats(c.UserContext(), auth.CallerFromContext(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewAdminStatsResponse(&stats))
}

// ExportAgents handles GET /api/admin/export/agents?format=csv|xlsx.
func (h *AdminHandler) ExportAgents(c *fiber.Ctx) error {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		return err
	}
	file, err := h.export.Agents(c.UserContext(), auth.CallerFromContext(c), format)
	if err != nil {
		return err
	}
	return attachment(c, file.Filename, file.ContentType, file.Data)
}

// ExportEmployees handles GET /api/admin/export/employees?format=csv|xlsx.
func (h *AdminHandler) ExportEmployees(c *fiber.Ctx) error {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		return err
	}
	file, err := h.export.Employees(c.UserContext(), auth.CallerFromContext(c), format)
	if err != nil {
		return err
	}
	return attachment(c, file.Filename, file.ContentType, file.Data)
}
