package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/services"
)

type UserHandler struct {
	userService   *services.UserService
	friendService *services.FriendService
}

func NewUserHandler(userService *services.UserService, friendService *services.FriendService) *UserHandler {
	return &UserHandler{userService: userService, friendService: friendService}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	user, err := h.userService.GetByID(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(services.UserToResponse(user, true))
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	viewerID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	user, err := h.userService.GetByID(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	status, err := h.friendService.StatusBetween(c.Context(), viewerID, id)
	if err != nil {
		return serviceError(c, err)
	}
	count, err := h.friendService.FriendCount(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.ProfileResponse{
		UserResponse: services.UserToResponse(user, false),
		FriendStatus: status,
		FriendCount:  count,
	})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	user, err := h.userService.UpdateProfile(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(services.UserToResponse(user, true))
}

func (h *UserHandler) UpdateLocation(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.userService.UpdateLocation(c.Context(), userID, &req); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) Search(c *fiber.Ctx) error {
	viewerID, ok := currentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	query := c.Query("q")
	if len(query) < 2 {
		return fail(c, fiber.StatusBadRequest, "query must be at least 2 characters")
	}
	users, err := h.userService.Search(c.Context(), query, c.QueryInt("limit"))
	if err != nil {
		return serviceError(c, err)
	}
	out := make([]dto.UserSearchResult, 0, len(users))
	for i := range users {
		status, err := h.friendService.StatusBetween(c.Context(), viewerID, users[i].ID)
		if err != nil {
			status = "none"
		}
		out = append(out, dto.UserSearchResult{
			UserResponse: services.UserToResponse(&users[i], false),
			FriendStatus: status,
		})
	}
	return c.JSON(out)
}
