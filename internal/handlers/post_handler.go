package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/services"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	post, err := h.postService.Create(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	post, err := h.postService.GetByID(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(services.PostToResponse(post, false))
}

func (h *PostHandler) Nearby(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.NearbyPostsRequest
	if err := c.QueryParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid query parameters")
	}
	resp, err := h.postService.Nearby(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *PostHandler) FriendsFeed(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	resp, err := h.postService.FriendsFeed(c.Context(), userID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *PostHandler) UserPosts(c *fiber.Ctx) error {
	viewerID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	ownerID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	resp, err := h.postService.UserPosts(c.Context(), viewerID, ownerID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	if err := h.postService.Delete(c.Context(), userID, postID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
