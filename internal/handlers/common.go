package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/middleware"
	"github.com/lewlew/lewlew-server/internal/services"
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// serviceError maps well-known service errors onto HTTP statuses; anything
// unknown becomes a 500 without leaking internals.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrNotFriends),
		errors.Is(err, services.ErrNotLiked):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSelfReport),
		errors.Is(err, services.ErrDuplicateReport),
		errors.Is(err, services.ErrReportFinalized),
		errors.Is(err, services.ErrSelfFriend),
		errors.Is(err, services.ErrAlreadyFriends),
		errors.Is(err, services.ErrAlreadyLiked),
		errors.Is(err, services.ErrPhoneTaken),
		errors.Is(err, services.ErrUsernameTaken):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidReason),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrCodeInvalid):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrSMSThrottled):
		return fail(c, fiber.StatusTooManyRequests, err.Error())
	default:
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return fail(c, fiber.StatusBadRequest, ve.Error())
		}
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, err := middleware.CurrentUserID(c)
	return userID, err == nil
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
