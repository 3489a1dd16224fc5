// This file defines the applicant-facing booking endpoints: submitting
// a new booking with evidence files and listing the caller's own
// bookings.
package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-booking/internal/engine"
	"github.com/iliyamo/exam-seat-booking/internal/middleware"
	"github.com/iliyamo/exam-seat-booking/internal/model"
	"github.com/iliyamo/exam-seat-booking/internal/queue"
	"github.com/iliyamo/exam-seat-booking/internal/repository"
	queue_publisher "github.com/iliyamo/exam-seat-booking/internal/service"
)

// BookingHandler serves applicant booking endpoints.  Submissions go
// through the engine; reads go straight to the repository.
type BookingHandler struct {
	Engine   *engine.Engine
	Bookings *repository.BookingRepo
	Rounds   *repository.RoundRepo
}

func NewBookingHandler(e *engine.Engine, b *repository.BookingRepo, r *repository.RoundRepo) *BookingHandler {
	return &BookingHandler{Engine: e, Bookings: b, Rounds: r}
}

// attachmentFrom opens a multipart file field.  A missing field yields
// a nil attachment; the engine decides whether that field was required
// for this submission.
func attachmentFrom(c echo.Context, field string) (*engine.Attachment, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil // absent field
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &engine.Attachment{Filename: fh.Filename, Content: f}, func() { _ = f.Close() }, nil
}

// Submit handles POST /v1/bookings.  The body is multipart/form-data:
// exam_round_id, applicant_type, full_name, phone and payment_method
// as values, plus optional id_proof and payment_slip files.  The
// applicant's email is taken from the access token, never from the
// form.
func (h *BookingHandler) Submit(c echo.Context) error {
	roundID, _ := strconv.ParseUint(strings.TrimSpace(c.FormValue("exam_round_id")), 10, 64)

	idProof, closeID, err := attachmentFrom(c, "id_proof")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable id_proof"})
	}
	defer closeID()
	paySlip, closePay, err := attachmentFrom(c, "payment_slip")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable payment_slip"})
	}
	defer closePay()

	in := engine.SubmitInput{
		RoundID:       roundID,
		ApplicantType: model.ApplicantType(strings.ToUpper(strings.TrimSpace(c.FormValue("applicant_type")))),
		FullName:      strings.TrimSpace(c.FormValue("full_name")),
		Phone:         strings.TrimSpace(c.FormValue("phone")),
		PaymentMethod: model.PaymentMethod(strings.ToUpper(strings.TrimSpace(c.FormValue("payment_method")))),
		IDProof:       idProof,
		PaymentProof:  paySlip,
	}
	ident := engine.Identity{
		UserID: middleware.CurrentUserID(c),
		Email:  middleware.CurrentEmail(c),
	}

	booking, err := h.Engine.Submit(c.Request().Context(), ident, in)
	if err != nil {
		return writeEngineError(c, err)
	}

	// Pay-on-site bookings are born verified; announce them right away.
	if booking.PaymentStatus.HoldsSeat() {
		h.publishVerified(c.Request().Context(), booking)
	}

	return c.JSON(http.StatusCreated, booking)
}

// MyBookings handles GET /v1/my-bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	items, err := h.Bookings.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// publishVerified emits a BookingVerifiedEvent.  Failures are logged
// and dropped; the booking already committed.
func (h *BookingHandler) publishVerified(ctx context.Context, b *model.Booking) {
	round, err := h.Rounds.GetRound(ctx, b.ExamRoundID)
	if err != nil {
		log.Printf("booking: load round %d for event failed: %v", b.ExamRoundID, err)
		return
	}
	verifiedAt := time.Now().UTC()
	if b.ConfirmedAt != nil {
		verifiedAt = *b.ConfirmedAt
	}
	_ = queue_publisher.PublishBookingVerified(ctx, queue.BookingVerifiedEvent{
		BookingID:     b.ID,
		BookingCode:   b.BookingCode,
		OwnerUserID:   b.OwnerUserID,
		ExamRoundID:   b.ExamRoundID,
		ExamDate:      round.ExamDate.Format("2006-01-02"),
		ExamTime:      string(round.ExamTime),
		FullName:      b.FullName,
		Email:         b.Email,
		ApplicantType: string(b.ApplicantType),
		PaymentMethod: string(b.PaymentMethod),
		PriceBaht:     uint32(b.Price),
		VerifiedAt:    verifiedAt.Format(time.RFC3339),
	})
}
