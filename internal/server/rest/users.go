package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/services"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

func (h *Handler) handleListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), models.UserFilter{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
	})
	if err != nil {
		return errors.Wrap(err, "handleListUsers")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) handleCreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), services.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return errors.Wrap(err, "handleCreateUser")
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) handleUpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), c.Param("id"), services.UpdateUserInput{
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return errors.Wrap(err, "handleUpdateUser")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) handleDeleteUser(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return errors.Wrap(err, "handleDeleteUser")
	}
	return c.NoContent(http.StatusNoContent)
}
