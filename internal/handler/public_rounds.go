// This file defines the public browsing API.  Unauthenticated users can
// list open exam rounds while deciding which slot to book.  Responses
// expose remaining capacity but not internal bookkeeping fields.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-booking/internal/model"
	"github.com/iliyamo/exam-seat-booking/internal/repository"
)

// PublicHandler serves unauthenticated round browsing.
type PublicHandler struct {
	Rounds *repository.RoundRepo
}

// PublicRound is a round as exposed to applicants.
type PublicRound struct {
	ID        uint64         `json:"id"`
	ExamDate  time.Time      `json:"exam_date"`
	ExamTime  model.ExamTime `json:"exam_time"`
	MaxSeats  uint32         `json:"max_seats"`
	SeatsLeft uint32         `json:"seats_left"`
	Full      bool           `json:"full"`
}

// GetRounds lists active rounds ordered by date and time slot.
// Response JSON contains an "items" array of PublicRound.
func (h *PublicHandler) GetRounds(c echo.Context) error {
	ctx := c.Request().Context()
	rounds, err := h.Rounds.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicRound, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, PublicRound{
			ID:        r.ID,
			ExamDate:  r.ExamDate,
			ExamTime:  r.ExamTime,
			MaxSeats:  r.MaxSeats,
			SeatsLeft: r.SeatsLeft(),
			Full:      r.Full(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
