package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

type createLogRequest struct {
	PersonID string `json:"personId"`
	Action   string `json:"action"`
}

func (h *Handler) handleListLogs(c echo.Context) error {
	filter := models.AccessLogFilter{PersonID: c.QueryParam("personId")}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a number")
		}
		filter.Limit = limit
	}

	logs, err := h.logs.List(c.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "handleListLogs")
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) handleCreateLog(c echo.Context) error {
	var req createLogRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.PersonID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "personId required")
	}

	log, err := h.logs.Create(c.Request().Context(), req.PersonID, req.Action, userIDFrom(c))
	if err != nil {
		return errors.Wrap(err, "handleCreateLog")
	}
	return c.JSON(http.StatusCreated, idResponse{ID: log.ID})
}
