package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iliyamo/exam-seat-booking/internal/model"
)

// Identity is the authenticated caller as supplied by the JWT
// middleware.  The engine treats UserID and Email as opaque, trusted
// attributes; it performs no credential handling itself.
type Identity struct {
	UserID uint64
	Email  string
}

// Attachment is an evidence file streamed from the request.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// SubmitInput carries the booking form fields.  Email is deliberately
// absent: it is always taken from the authenticated identity.
type SubmitInput struct {
	RoundID       uint64
	ApplicantType model.ApplicantType
	FullName      string
	Phone         string
	PaymentMethod model.PaymentMethod
	IDProof       *Attachment
	PaymentProof  *Attachment
}

// Engine ties the round catalog and booking ledger together under the
// capacity contract.  All operations that touch a round's seat counter
// run under that round's lock; see roundLocks for the rationale.
type Engine struct {
	rounds   RoundStore
	bookings BookingStore
	blobs    BlobStore
	locks    *roundLocks
}

// New constructs an Engine.  All dependencies must be non-nil.
func New(rounds RoundStore, bookings BookingStore, blobs BlobStore) *Engine {
	if rounds == nil || bookings == nil || blobs == nil {
		panic("nil store passed to engine.New")
	}
	return &Engine{rounds: rounds, bookings: bookings, blobs: blobs, locks: newRoundLocks()}
}

// Submit runs the booking-creation flow: authentication and field
// checks, a capacity pre-check, evidence upload, then the insert and
// any seat reservation under the round lock.  Uploads happen before the
// lock is taken so a slow blob store never stalls other bookers; an
// upload failure aborts before any booking record exists, leaving at
// worst an orphaned, unreferenced blob.
func (e *Engine) Submit(ctx context.Context, id Identity, in SubmitInput) (*model.Booking, error) {
	if id.UserID == 0 || id.Email == "" {
		return nil, ErrAuthRequired
	}
	if in.RoundID == 0 {
		return nil, validationErr("exam_round_id", "required")
	}
	if !in.ApplicantType.Valid() {
		return nil, validationErr("applicant_type", "unknown applicant type")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, validationErr("full_name", "required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, validationErr("phone", "required")
	}
	if !in.PaymentMethod.Valid() {
		return nil, validationErr("payment_method", "unknown payment method")
	}
	if in.ApplicantType.Discounted() && in.IDProof == nil {
		return nil, validationErr("id_proof", "id card image required for internal applicants")
	}
	if in.PaymentMethod == model.PayTransfer && in.PaymentProof == nil {
		return nil, validationErr("payment_proof", "transfer slip required")
	}

	// Pre-check capacity with a fresh read, not a client-side snapshot.
	// The authoritative check happens again under the round lock; this
	// one exists to fail fast before paying for uploads.
	round, err := e.rounds.GetRound(ctx, in.RoundID)
	if err != nil {
		return nil, err
	}
	if !round.IsActive {
		return nil, validationErr("exam_round_id", "round is not open for booking")
	}
	if round.Full() {
		return nil, ErrCapacityExceeded
	}

	var idProofURL, payProofURL *string
	if in.ApplicantType.Discounted() {
		u, err := e.blobs.Upload(ctx, BucketIDCards, in.IDProof.Filename, in.IDProof.Content)
		if err != nil {
			return nil, &UploadError{Bucket: BucketIDCards, Err: err}
		}
		idProofURL = &u
	}
	if in.PaymentMethod == model.PayTransfer {
		u, err := e.blobs.Upload(ctx, BucketPaymentSlips, in.PaymentProof.Filename, in.PaymentProof.Content)
		if err != nil {
			return nil, &UploadError{Bucket: BucketPaymentSlips, Err: err}
		}
		payProofURL = &u
	}

	status := model.InitialStatus(in.PaymentMethod)
	b := &model.Booking{
		ExamRoundID:     in.RoundID,
		ApplicantType:   in.ApplicantType,
		FullName:        strings.TrimSpace(in.FullName),
		Email:           strings.ToLower(strings.TrimSpace(id.Email)),
		Phone:           strings.TrimSpace(in.Phone),
		Price:           in.ApplicantType.Price(),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   status,
		IDProofURL:      idProofURL,
		PaymentProofURL: payProofURL,
		OwnerUserID:     id.UserID,
	}
	if status == model.StatusVerified {
		now := time.Now().UTC()
		b.ConfirmedAt = &now
	}

	unlock := e.locks.lock(in.RoundID)
	defer unlock()

	if status.HoldsSeat() {
		// Reserve the seat first; the conditional update is the
		// authoritative capacity check.
		if err := e.rounds.AdjustSeats(ctx, in.RoundID, 1); err != nil {
			return nil, err
		}
		if err := e.bookings.InsertBooking(ctx, b); err != nil {
			// Release the seat so a failed insert leaves no orphaned
			// reservation.
			if relErr := e.rounds.AdjustSeats(ctx, in.RoundID, -1); relErr != nil {
				return nil, fmt.Errorf("insert booking: %w (seat release also failed: %v)", err, relErr)
			}
			return nil, fmt.Errorf("insert booking: %w", err)
		}
		return b, nil
	}

	// Pending bookings hold no seat yet, but a submission against a
	// round that is already full must still be refused.
	round, err = e.rounds.GetRound(ctx, in.RoundID)
	if err != nil {
		return nil, err
	}
	if round.Full() {
		return nil, ErrCapacityExceeded
	}
	if err := e.bookings.InsertBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return b, nil
}

// Review applies an admin payment-status transition.  A request for the
// status the booking is already in is a no-op and returns the booking
// unchanged, so a double-clicked approve button causes one seat change,
// not two.  Transitions crossing the verified boundary adjust the
// round's seat count within the same round-locked section as the status
// write.
func (e *Engine) Review(ctx context.Context, bookingID uint64, to model.PaymentStatus) (*model.Booking, error) {
	if !to.Valid() {
		return nil, ErrInvalidTransition
	}
	b, err := e.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == to {
		return b, nil
	}

	unlock := e.locks.lock(b.ExamRoundID)
	defer unlock()

	// Re-read under the lock; another admin may have raced us here.
	b, err = e.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == to {
		return b, nil
	}

	delta := model.SeatDelta(b.PaymentStatus, to)
	if delta != 0 {
		if err := e.rounds.AdjustSeats(ctx, b.ExamRoundID, delta); err != nil {
			return nil, err
		}
	}

	var confirmedAt *time.Time
	if to == model.StatusVerified {
		now := time.Now().UTC()
		confirmedAt = &now
	}
	if err := e.bookings.SetStatus(ctx, bookingID, to, confirmedAt); err != nil {
		if delta != 0 {
			if revErr := e.rounds.AdjustSeats(ctx, b.ExamRoundID, -delta); revErr != nil {
				return nil, fmt.Errorf("update status: %w (seat compensation also failed: %v)", err, revErr)
			}
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	b.PaymentStatus = to
	b.ConfirmedAt = confirmedAt
	return b, nil
}

// Remove deletes a booking, releasing its seat first when the booking
// currently holds one.  Deleting a PENDING or REJECTED booking leaves
// the round's counter untouched.
func (e *Engine) Remove(ctx context.Context, bookingID uint64) error {
	b, err := e.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	unlock := e.locks.lock(b.ExamRoundID)
	defer unlock()

	b, err = e.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	held := b.PaymentStatus.HoldsSeat()
	if held {
		if err := e.rounds.AdjustSeats(ctx, b.ExamRoundID, -1); err != nil {
			return err
		}
	}
	if err := e.bookings.DeleteBooking(ctx, bookingID); err != nil {
		if held {
			if revErr := e.rounds.AdjustSeats(ctx, b.ExamRoundID, 1); revErr != nil {
				return fmt.Errorf("delete booking: %w (seat compensation also failed: %v)", err, revErr)
			}
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}
