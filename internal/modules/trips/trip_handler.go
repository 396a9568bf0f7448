package trips

import (
	"errors"
	"net/http"

	"voyage-trips/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// sessionCookieName carries the voyage session token. Verification is the
// user-management service's job; locally the token is only parsed to learn
// the subject for the durable people field.
const sessionCookieName = "voyage_at"

// Handler aggregates the trip lifecycle HTTP endpoints and the streaming
// creation/regeneration endpoints.
type Handler struct {
	svc       ServiceInterface
	streams   *ConnectionManager
	jwtSecret []byte
	upgrader  websocket.Upgrader
}

// NewHandler wires the handler; clientOrigin restricts websocket upgrades
// when set, otherwise any origin is accepted (the deployment gateway owns
// origin policy).
func NewHandler(svc ServiceInterface, jwtSecret, clientOrigin string) *Handler {
	return &Handler{
		svc:       svc,
		streams:   NewConnectionManager(),
		jwtSecret: []byte(jwtSecret),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if clientOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == clientOrigin
			},
		},
	}
}

// RegisterRoutes mounts the REST routes on api and the streaming routes on
// ws. requireAuth guards the per-user listing.
func (h *Handler) RegisterRoutes(api *echo.Group, ws *echo.Group, requireAuth echo.MiddlewareFunc) {
	api.POST("/trips", h.CreateTrip)
	api.GET("/trips/:tripId", h.GetTrip)
	api.POST("/trips/save", h.SaveTrip)
	api.DELETE("/trips/:tripId", h.DeleteTrip)
	api.PUT("/trips/:tripId/activities", h.RegenerateActivity)
	api.DELETE("/trips/:tripId/activities/:activityId", h.DeleteActivity)
	api.GET("/users/:userId/trips", h.ListUserTrips, requireAuth)

	ws.GET("/trip-creation", h.StreamTripCreation)
	ws.GET("/trip-regeneration/:tripId", h.StreamTripRegeneration)
}

// CreateTrip is the synchronous creation endpoint. The streaming variant in
// stream_handler.go shares the same coordinator path.
func (h *Handler) CreateTrip(c echo.Context) error {
	var form models.TripForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	result, err := h.svc.CreateTrip(c.Request().Context(), form, h.session(c), nil)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// GetTrip returns one itinerary, draft copy first.
func (h *Handler) GetTrip(c echo.Context) error {
	tripID := c.Param("tripId")

	it, err := h.svc.GetTrip(c.Request().Context(), tripID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, models.StoredTrip{TripID: tripID, Itinerary: it})
}

// SaveTrip commits a draft to durable storage.
func (h *Handler) SaveTrip(c echo.Context) error {
	var req models.SaveTripRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	if err := h.svc.SaveTrip(c.Request().Context(), req, h.session(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// DeleteTrip removes the durable record; the draft lapses by expiration.
func (h *Handler) DeleteTrip(c echo.Context) error {
	if err := h.svc.DeleteTrip(c.Request().Context(), c.Param("tripId")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RegenerateActivity replaces a single activity of the trip.
func (h *Handler) RegenerateActivity(c echo.Context) error {
	tripID := c.Param("tripId")

	var patch models.ActivityPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	it, err := h.svc.RegenerateActivity(c.Request().Context(), tripID, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, models.StoredTrip{TripID: tripID, Itinerary: it})
}

// DeleteActivity drops a single activity. Works on the draft copy only; a
// trip whose draft expired reports not found even when saved durably.
func (h *Handler) DeleteActivity(c echo.Context) error {
	tripID := c.Param("tripId")

	it, err := h.svc.DeleteActivity(c.Request().Context(), tripID, c.Param("activityId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, models.StoredTrip{TripID: tripID, Itinerary: it})
}

// ListUserTrips returns the durable trips the user participates in.
func (h *Handler) ListUserTrips(c echo.Context) error {
	stored, err := h.svc.ListTrips(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return writeError(c, err)
	}
	if len(stored) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, stored)
}

// session builds the caller's identity context from the voyage_at cookie.
// A malformed or unverifiable token still travels on outbound calls; only
// its absence means guest mode.
func (h *Handler) session(c echo.Context) models.Session {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return models.Session{Guest: true}
	}

	sess := models.Session{Token: cookie.Value}
	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (any, error) {
		return h.jwtSecret, nil
	})
	if err == nil && token.Valid {
		if sub, err := token.Claims.GetSubject(); err == nil {
			sess.UserID = sub
		}
	}
	return sess
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	var upstream *models.UpstreamError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "trip not found"})
	case errors.Is(err, models.ErrValidation):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	case errors.Is(err, models.ErrAssociation):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: "failed to register trip creator as participant"})
	case errors.As(err, &upstream):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: upstream.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "internal server error"})
	}
}
