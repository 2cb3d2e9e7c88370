package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/services"
)

type UploadHandler struct {
	uploadService *services.UploadService
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	header, err := c.FormFile("image")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "image file is required")
	}
	upload, err := h.uploadService.UploadImage(c.Context(), userID, header)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{
		ID:        upload.ID,
		URL:       upload.URL,
		Filename:  upload.Filename,
		MimeType:  upload.MimeType,
		Size:      upload.Size,
		CreatedAt: upload.CreatedAt,
	})
}

func (h *UploadHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	uploads, total, err := h.uploadService.ListByUser(c.Context(), userID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return serviceError(c, err)
	}
	out := make([]dto.UploadResponse, 0, len(uploads))
	for i := range uploads {
		u := &uploads[i]
		out = append(out, dto.UploadResponse{
			ID:        u.ID,
			URL:       u.URL,
			Filename:  u.Filename,
			MimeType:  u.MimeType,
			Size:      u.Size,
			CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"uploads": out, "total": total})
}

func (h *UploadHandler) DeleteImage(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	uploadID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid upload id")
	}
	if err := h.uploadService.DeleteImage(c.Context(), userID, uploadID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
