package trips

import (
	"context"
	"errors"

	"voyage-trips/internal/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// StreamTripCreation runs the trip creation protocol over one websocket
// connection: connection event, form intake, progress events while the
// coordinator works, one terminal event. A peer disconnect cancels the
// in-flight gateway calls and releases the trip's connection registration.
func (h *Handler) StreamTripCreation(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade has already written the failure response
	}
	defer conn.Close()

	emitter := NewEmitter(func(ev models.StreamEvent) error {
		return conn.WriteJSON(ev)
	})
	if err := emitter.Connected("Connected to trip creation service", ""); err != nil {
		return nil
	}

	var form models.TripForm
	if err := conn.ReadJSON(&form); err != nil {
		emitter.Fail("Invalid form data: " + err.Error())
		return nil
	}
	if err := c.Validate(&form); err != nil {
		emitter.Fail("Invalid form data: " + err.Error())
		return nil
	}

	sess := h.session(c)
	if form.Guest {
		sess.Guest = true
	}

	ctx, cancel := h.watchDisconnect(c.Request().Context(), conn)
	defer cancel()

	var registered string
	defer func() {
		if registered != "" {
			h.streams.Release(registered)
		}
	}()
	report := func(progress int, message, tripID string) {
		if tripID != "" && registered == "" {
			h.streams.Register(tripID, conn)
			registered = tripID
		}
		emitter.Progress(progress, message, tripID)
	}

	result, err := h.svc.CreateTrip(ctx, form, sess, report)
	if err != nil {
		emitter.Fail(streamErrorMessage(err))
		return nil
	}
	emitter.Succeed("Trip created successfully!", result.TripID, result)
	return nil
}

// StreamTripRegeneration runs the preference-driven regeneration protocol
// for an existing trip.
func (h *Handler) StreamTripRegeneration(c echo.Context) error {
	tripID := c.Param("tripId")

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	emitter := NewEmitter(func(ev models.StreamEvent) error {
		return conn.WriteJSON(ev)
	})
	if err := emitter.Connected("Connected to trip regeneration service", tripID); err != nil {
		return nil
	}

	var req models.RegenerationRequest
	if err := conn.ReadJSON(&req); err != nil {
		emitter.Fail("Invalid preferences data: " + err.Error())
		return nil
	}

	ctx, cancel := h.watchDisconnect(c.Request().Context(), conn)
	defer cancel()

	h.streams.Register(tripID, conn)
	defer h.streams.Release(tripID)

	report := func(progress int, message, id string) {
		emitter.Progress(progress, message, id)
	}

	result, err := h.svc.RegenerateWithPreferences(ctx, tripID, req, report)
	if err != nil {
		emitter.Fail(streamErrorMessage(err))
		return nil
	}
	emitter.Succeed("Trip regenerated successfully!", tripID, result)
	return nil
}

// watchDisconnect cancels the returned context as soon as the peer stops
// reading cleanly, so outstanding gateway calls are abandoned.
func (h *Handler) watchDisconnect(parent context.Context, conn *websocket.Conn) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()
	return ctx, cancel
}

// streamErrorMessage phrases a coordinator failure for the stream peer.
func streamErrorMessage(err error) string {
	var upstream *models.UpstreamError
	switch {
	case errors.As(err, &upstream):
		return upstream.Error()
	case errors.Is(err, models.ErrNotFound):
		return "Trip not found"
	case errors.Is(err, models.ErrValidation):
		return err.Error()
	default:
		return "Error processing trip: " + err.Error()
	}
}
