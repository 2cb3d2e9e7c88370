package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Create files a report. The AI verdict lands asynchronously, so the
// response is always the fresh pending report.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	report, err := h.reportService.Create(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(services.ReportToResponse(report))
}

func (h *ReportHandler) MyReports(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	resp, err := h.reportService.ListByReporter(c.Context(), userID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Admin endpoints below.

func (h *ReportHandler) List(c *fiber.Ctx) error {
	resp, err := h.reportService.List(c.Context(), c.Query("status"), c.Query("reason"), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	reportID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid report id")
	}
	report, err := h.reportService.GetByID(c.Context(), reportID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(services.ReportToResponse(report))
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	reviewerID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	reportID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid report id")
	}
	var req dto.UpdateReportStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	report, err := h.reportService.UpdateStatus(c.Context(), reviewerID, reportID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(services.ReportToResponse(report))
}

func (h *ReportHandler) Stats(c *fiber.Ctx) error {
	resp, err := h.reportService.Stats(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}
