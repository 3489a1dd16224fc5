package engine

import (
	"context"
	"io"
	"time"

	"github.com/iliyamo/exam-seat-booking/internal/model"
)

// RoundStore is the engine's view of exam-round persistence.  The MySQL
// implementation lives in the repository package; tests provide an
// in-memory fake.
type RoundStore interface {
	// GetRound loads a round by id.  Returns ErrRoundNotFound when no
	// such round exists.
	GetRound(ctx context.Context, id uint64) (*model.ExamRound, error)

	// AdjustSeats applies a seat-count delta to a round as a conditional
	// update: the store must reject any delta that would leave
	// current_seats outside [0, max_seats].  A rejected positive delta
	// returns ErrCapacityExceeded; a missing round returns
	// ErrRoundNotFound.  The interface offers no unconditional
	// overwrite of the counter.
	AdjustSeats(ctx context.Context, id uint64, delta int) error
}

// BookingStore is the engine's view of booking persistence.
type BookingStore interface {
	// InsertBooking persists a new booking and populates its ID,
	// BookingCode and CreatedAt.
	InsertBooking(ctx context.Context, b *model.Booking) error

	// GetBooking loads a booking by id.  Returns ErrBookingNotFound
	// when no such booking exists.
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)

	// SetStatus updates the payment status and confirmed_at of a
	// booking.  confirmedAt is non-nil only for VERIFIED.
	SetStatus(ctx context.Context, id uint64, status model.PaymentStatus, confirmedAt *time.Time) error

	// DeleteBooking removes a booking record.
	DeleteBooking(ctx context.Context, id uint64) error
}

// BlobStore uploads evidence images (id cards, payment slips) and
// returns a public URL for the stored object.
type BlobStore interface {
	Upload(ctx context.Context, bucket, filename string, content io.Reader) (string, error)
}

// Buckets evidence files are uploaded into.
const (
	BucketIDCards      = "id-cards"
	BucketPaymentSlips = "payment-slips"
)
