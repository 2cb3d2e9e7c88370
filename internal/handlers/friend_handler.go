package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/services"
)

type FriendHandler struct {
	friendService *services.FriendService
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) Request(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.FriendRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.friendService.Request(c.Context(), userID, req.UserID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (h *FriendHandler) Accept(c *fiber.Ctx) error {
	return h.respond(c, true)
}

func (h *FriendHandler) Reject(c *fiber.Ctx) error {
	return h.respond(c, false)
}

func (h *FriendHandler) respond(c *fiber.Ctx, accept bool) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	otherID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	if err := h.friendService.Respond(c.Context(), userID, otherID, accept); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FriendHandler) Remove(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	otherID, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	if err := h.friendService.Remove(c.Context(), userID, otherID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FriendHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	resp, err := h.friendService.List(c.Context(), userID, c.Query("filter"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}
