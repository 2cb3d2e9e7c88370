package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
	postService  *services.PostService
}

func NewAdminHandler(adminService *services.AdminService, postService *services.PostService) *AdminHandler {
	return &AdminHandler{adminService: adminService, postService: postService}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	resp, err := h.adminService.Dashboard(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// DeletePost removes arbitrary content outside the report flow, with the
// admin recorded as the deleting actor.
func (h *AdminHandler) DeletePost(c *fiber.Ctx) error {
	adminID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	var req dto.DeletePostRequest
	_ = c.BodyParser(&req)
	reason := req.Reason
	if reason == "" {
		reason = "Removed by administrator"
	}
	if err := h.postService.SoftDeleteByModeration(c.Context(), postID, adminID, reason); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
