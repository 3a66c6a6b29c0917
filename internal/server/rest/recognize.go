package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

type recognizeRequest struct {
	PhotoBase64 string `json:"photoBase64" form:"photoBase64"`
}

type recognizeResponse struct {
	Matched bool           `json:"matched"`
	Person  *models.Person `json:"person,omitempty"`
	Action  string         `json:"action,omitempty"`
	LogID   string         `json:"logId,omitempty"`
}

func (h *Handler) handleRecognize(c echo.Context) error {
	var req recognizeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	photo, err := readPhoto(c, req.PhotoBase64, h.maxPhotoBytes)
	if err != nil {
		return err
	}
	if len(photo) == 0 {
		return common.ErrorPhotoMissing
	}

	res, err := h.recognition.Recognize(c.Request().Context(), photo, userIDFrom(c))
	if err != nil {
		return errors.Wrap(err, "handleRecognize")
	}

	return c.JSON(http.StatusOK, recognizeResponse{
		Matched: res.Matched,
		Person:  res.Person,
		Action:  res.Action,
		LogID:   res.LogID,
	})
}
