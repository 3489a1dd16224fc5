package handler

// errors.go maps engine errors onto HTTP responses so every handler
// renders failures the same way.

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-booking/internal/engine"
)

// writeEngineError renders an engine error with the matching status
// code.  Validation problems are 400, missing records 404, capacity
// and state conflicts 409, disallowed status changes 422, upload
// failures 502.  Anything unrecognized is a 500.
func writeEngineError(c echo.Context, err error) error {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "field": verr.Field})
	}
	var uerr *engine.UploadError
	if errors.As(err, &uerr) {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "evidence upload failed"})
	}
	switch {
	case errors.Is(err, engine.ErrAuthRequired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	case errors.Is(err, engine.ErrRoundNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "round not found"})
	case errors.Is(err, engine.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, engine.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "round is full"})
	case errors.Is(err, engine.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting state"})
	case errors.Is(err, engine.ErrInvalidTransition):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status change"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
