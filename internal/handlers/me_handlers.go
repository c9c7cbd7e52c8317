package handlers

import (
	"net/http"

	"bizgate/internal/common"
	"bizgate/internal/repositories"

	"github.com/labstack/echo/v4"
)

type MeHandlers struct {
	userRepo repositories.UserRepository
}

func NewMeHandlers(userRepo repositories.UserRepository) *MeHandlers {
	return &MeHandlers{userRepo: userRepo}
}

// Me returns the authenticated user's profile.
func (h *MeHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load user")
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", "User not found", nil))
	}
	return c.JSON(http.StatusOK, user)
}
