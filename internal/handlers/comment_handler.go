package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/services"
)

type CommentHandler struct {
	commentService *services.CommentService
	likeService    *services.LikeService
}

func NewCommentHandler(commentService *services.CommentService, likeService *services.LikeService) *CommentHandler {
	return &CommentHandler{commentService: commentService, likeService: likeService}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	comment, err := h.commentService.Create(c.Context(), userID, postID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	resp, err := h.commentService.List(c.Context(), userID, postID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid comment id")
	}
	if err := h.commentService.Delete(c.Context(), userID, commentID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CommentHandler) LikePost(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	resp, err := h.likeService.LikePost(c.Context(), userID, postID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *CommentHandler) UnlikePost(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	resp, err := h.likeService.UnlikePost(c.Context(), userID, postID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *CommentHandler) LikeComment(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid comment id")
	}
	resp, err := h.likeService.LikeComment(c.Context(), userID, commentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *CommentHandler) UnlikeComment(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid comment id")
	}
	resp, err := h.likeService.UnlikeComment(c.Context(), userID, commentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}
