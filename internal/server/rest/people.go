package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/services"
)

type createPersonRequest struct {
	Name        string `json:"name" form:"name"`
	ListType    string `json:"listType" form:"listType"`
	PhotoBase64 string `json:"photoBase64" form:"photoBase64"`
}

type updatePersonRequest struct {
	Name     *string `json:"name"`
	ListType *string `json:"listType"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (h *Handler) handleListPeople(c echo.Context) error {
	people, err := h.people.List(c.Request().Context(), models.PersonFilter{
		Search:   c.QueryParam("search"),
		ListType: c.QueryParam("listType"),
	})
	if err != nil {
		return errors.Wrap(err, "handleListPeople")
	}
	return c.JSON(http.StatusOK, people)
}

func (h *Handler) handleCreatePerson(c echo.Context) error {
	var req createPersonRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	photo, err := readPhoto(c, req.PhotoBase64, h.maxPhotoBytes)
	if err != nil {
		return err
	}

	person, err := h.people.Create(c.Request().Context(), services.CreatePersonInput{
		Name:      req.Name,
		ListType:  req.ListType,
		Photo:     photo,
		CreatedBy: userIDFrom(c),
	})
	if err != nil {
		return errors.Wrap(err, "handleCreatePerson")
	}
	return c.JSON(http.StatusCreated, idResponse{ID: person.ID})
}

func (h *Handler) handleUpdatePerson(c echo.Context) error {
	var req updatePersonRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	person, err := h.people.Update(c.Request().Context(), c.Param("id"), services.UpdatePersonInput{
		Name:     req.Name,
		ListType: req.ListType,
	})
	if err != nil {
		return errors.Wrap(err, "handleUpdatePerson")
	}
	return c.JSON(http.StatusOK, person)
}

func (h *Handler) handleDeletePerson(c echo.Context) error {
	if err := h.people.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return errors.Wrap(err, "handleDeletePerson")
	}
	return c.NoContent(http.StatusNoContent)
}

// handlePersonPhoto serves the stored photo with the content hash as ETag.
func (h *Handler) handlePersonPhoto(c echo.Context) error {
	data, person, err := h.people.Photo(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.Wrap(err, "handlePersonPhoto")
	}

	etag := `"` + person.PhotoHash + `"`
	c.Response().Header().Set("ETag", etag)
	c.Response().Header().Set("Cache-Control", "private, max-age=0, must-revalidate")

	if match := c.Request().Header.Get("If-None-Match"); match == etag || match == person.PhotoHash {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
