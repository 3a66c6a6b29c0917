// Package rest exposes the BioGuard services over a JSON HTTP API built on
// echo.
package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/events"
	"github.com/dmitrijs2005/bioguard/internal/server/services"
)

type Handler struct {
	users         *services.UserService
	people        *services.PeopleService
	logs          *services.AccessLogService
	recognition   *services.RecognitionService
	hub           *events.Hub
	logger        logging.Logger
	jwtSecret     []byte
	maxPhotoBytes int64
}

type HandlerDeps struct {
	Users         *services.UserService
	People        *services.PeopleService
	Logs          *services.AccessLogService
	Recognition   *services.RecognitionService
	Hub           *events.Hub
	Logger        logging.Logger
	SecretKey     string
	MaxPhotoBytes int64
}

func NewHandler(d HandlerDeps) *Handler {
	return &Handler{
		users:         d.Users,
		people:        d.People,
		logs:          d.Logs,
		recognition:   d.Recognition,
		hub:           d.Hub,
		logger:        d.Logger.With("module", "rest"),
		jwtSecret:     []byte(d.SecretKey),
		maxPhotoBytes: d.MaxPhotoBytes,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authed := RequireAuth(h.jwtSecret)

	e.GET("/healthz", h.handleHealth)

	e.POST("/auth/login", h.handleLogin)
	e.POST("/auth/refresh", h.handleRefresh)
	e.GET("/auth/me", h.handleMe, authed)

	users := e.Group("/users", authed, AdminOnly)
	users.GET("", h.handleListUsers)
	users.POST("", h.handleCreateUser)
	users.PATCH("/:id", h.handleUpdateUser)
	users.DELETE("/:id", h.handleDeleteUser)

	people := e.Group("/people", authed)
	people.GET("", h.handleListPeople)
	people.POST("", h.handleCreatePerson)
	people.PATCH("/:id", h.handleUpdatePerson)
	people.DELETE("/:id", h.handleDeletePerson)
	people.GET("/:id/photo", h.handlePersonPhoto)

	e.GET("/logs", h.handleListLogs, authed, AdminOnly)
	e.POST("/logs", h.handleCreateLog, authed)
	e.GET("/logs/stream", h.handleLogStream, authed, AdminOnly)

	e.POST("/recognize", h.handleRecognize, authed)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
