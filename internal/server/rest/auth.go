package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	pair, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errors.Wrap(err, "handleLogin")
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) handleRefresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refreshToken required")
	}

	pair, err := h.users.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return errors.Wrap(err, "handleRefresh")
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) handleMe(c echo.Context) error {
	user, err := h.users.Me(c.Request().Context(), userIDFrom(c))
	if err != nil {
		return errors.Wrap(err, "handleMe")
	}
	return c.JSON(http.StatusOK, user)
}
