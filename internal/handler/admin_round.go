// Admin round management: create rounds, open or close them, and
// delete rounds that never received bookings.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-booking/internal/model"
	"github.com/iliyamo/exam-seat-booking/internal/repository"
)

// AdminRoundHandler serves /v1/admin/rounds.
type AdminRoundHandler struct {
	Rounds *repository.RoundRepo
}

func NewAdminRoundHandler(r *repository.RoundRepo) *AdminRoundHandler {
	return &AdminRoundHandler{Rounds: r}
}

type createRoundReq struct {
	ExamDate string `json:"exam_date"` // YYYY-MM-DD
	ExamTime string `json:"exam_time"` // MORNING | AFTERNOON
	MaxSeats uint32 `json:"max_seats"`
}

type setActiveReq struct {
	IsActive bool `json:"is_active"`
}

// List returns every round, including closed ones.
func (h *AdminRoundHandler) List(c echo.Context) error {
	rounds, err := h.Rounds.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rounds})
}

// Create adds a round.  New rounds start active with zero seats taken.
func (h *AdminRoundHandler) Create(c echo.Context) error {
	var req createRoundReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exam_date must be YYYY-MM-DD"})
	}
	slot := model.ExamTime(req.ExamTime)
	if !slot.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exam_time must be MORNING or AFTERNOON"})
	}
	if req.MaxSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_seats must be positive"})
	}

	round, err := h.Rounds.Create(c.Request().Context(), date, slot, req.MaxSeats)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create round failed"})
	}
	return c.JSON(http.StatusCreated, round)
}

// SetActive opens or closes a round for new submissions.  Existing
// bookings are untouched either way.
func (h *AdminRoundHandler) SetActive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Rounds.SetActive(c.Request().Context(), id, req.IsActive); err != nil {
		return writeEngineError(c, err)
	}
	round, err := h.Rounds.GetRound(c.Request().Context(), id)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, round)
}

// Delete removes a round.  Rounds that have any bookings, in whatever
// status, cannot be deleted and return 409.
func (h *AdminRoundHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Rounds.DeleteByID(c.Request().Context(), id); err != nil {
		return writeEngineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
