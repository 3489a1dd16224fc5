// Admin booking review: list submissions, verify or reject payments,
// and remove bookings.  Status changes and deletions go through the
// engine so seat counters stay consistent with booking statuses.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-booking/internal/engine"
	"github.com/iliyamo/exam-seat-booking/internal/model"
	"github.com/iliyamo/exam-seat-booking/internal/repository"
)

// AdminBookingHandler serves /v1/admin/bookings.
type AdminBookingHandler struct {
	Engine   *engine.Engine
	Bookings *repository.BookingRepo
	Rounds   *repository.RoundRepo
}

func NewAdminBookingHandler(e *engine.Engine, b *repository.BookingRepo, r *repository.RoundRepo) *AdminBookingHandler {
	return &AdminBookingHandler{Engine: e, Bookings: b, Rounds: r}
}

type reviewReq struct {
	Status string `json:"status"` // PENDING | VERIFIED | REJECTED
}

// List returns bookings newest first.  ?status=PENDING filters by
// payment status; an unknown value is a 400.
func (h *AdminBookingHandler) List(c echo.Context) error {
	var filter *model.PaymentStatus
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		st := model.PaymentStatus(strings.ToUpper(raw))
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
		}
		filter = &st
	}
	items, err := h.Bookings.ListAll(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Review handles PATCH /v1/admin/bookings/:id/status.  Setting the
// same status a booking already has is a no-op that still returns 200.
func (h *AdminBookingHandler) Review(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	to := model.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	before, err := h.Bookings.GetBooking(c.Request().Context(), id)
	if err != nil {
		return writeEngineError(c, err)
	}

	booking, err := h.Engine.Review(c.Request().Context(), id, to)
	if err != nil {
		return writeEngineError(c, err)
	}

	// Announce bookings that just crossed into VERIFIED.
	if booking.PaymentStatus.HoldsSeat() && !before.PaymentStatus.HoldsSeat() {
		bh := BookingHandler{Rounds: h.Rounds}
		bh.publishVerified(c.Request().Context(), booking)
	}

	return c.JSON(http.StatusOK, booking)
}

// Delete removes a booking entirely.  A verified booking releases its
// seat on the way out.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.Remove(c.Request().Context(), id); err != nil {
		return writeEngineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
