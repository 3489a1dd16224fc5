package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-booking/internal/model"
)

// ----- in-memory fakes -----

type fakeRounds struct {
	mu     sync.Mutex
	rounds map[uint64]*model.ExamRound
}

func newFakeRounds(rounds ...*model.ExamRound) *fakeRounds {
	f := &fakeRounds{rounds: make(map[uint64]*model.ExamRound)}
	for _, r := range rounds {
		f.rounds[r.ID] = r
	}
	return f
}

func (f *fakeRounds) GetRound(_ context.Context, id uint64) (*model.ExamRound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[id]
	if !ok {
		return nil, ErrRoundNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRounds) AdjustSeats(_ context.Context, id uint64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[id]
	if !ok {
		return ErrRoundNotFound
	}
	next := int(r.CurrentSeats) + delta
	if next < 0 || next > int(r.MaxSeats) {
		if delta > 0 {
			return ErrCapacityExceeded
		}
		return errors.New("seat underflow")
	}
	r.CurrentSeats = uint32(next)
	return nil
}

func (f *fakeRounds) seats(id uint64) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rounds[id].CurrentSeats
}

type fakeBookings struct {
	mu         sync.Mutex
	seq        uint64
	items      map[uint64]*model.Booking
	failInsert error
	failSet    error
	failDelete error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{items: make(map[uint64]*model.Booking)}
}

func (f *fakeBookings) InsertBooking(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return f.failInsert
	}
	f.seq++
	b.ID = f.seq
	b.BookingCode = fmt.Sprintf("EX-%08d", f.seq)
	b.CreatedAt = time.Now().UTC()
	cp := *b
	f.items[b.ID] = &cp
	return nil
}

func (f *fakeBookings) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) SetStatus(_ context.Context, id uint64, status model.PaymentStatus, confirmedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return f.failSet
	}
	b, ok := f.items[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.PaymentStatus = status
	b.ConfirmedAt = confirmedAt
	return nil
}

func (f *fakeBookings) DeleteBooking(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	if _, ok := f.items[id]; !ok {
		return ErrBookingNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	fail    error
	uploads []string
}

func (f *fakeBlobs) Upload(_ context.Context, bucket, filename string, content io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	_, _ = io.Copy(io.Discard, content)
	url := "https://blobs.test/" + bucket + "/" + filename
	f.uploads = append(f.uploads, url)
	return url, nil
}

// ----- helpers -----

func openRound(id uint64, max, current uint32) *model.ExamRound {
	return &model.ExamRound{
		ID:           id,
		ExamDate:     time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC),
		ExamTime:     model.ExamTimeMorning,
		MaxSeats:     max,
		CurrentSeats: current,
		IsActive:     true,
	}
}

func transferInput(roundID uint64) SubmitInput {
	return SubmitInput{
		RoundID:       roundID,
		ApplicantType: model.ApplicantGeneral,
		FullName:      "Somchai Prasert",
		Phone:         "0812345678",
		PaymentMethod: model.PayTransfer,
		PaymentProof:  &Attachment{Filename: "slip.jpg", Content: strings.NewReader("slip")},
	}
}

func onSiteInput(roundID uint64) SubmitInput {
	return SubmitInput{
		RoundID:       roundID,
		ApplicantType: model.ApplicantGeneral,
		FullName:      "Somchai Prasert",
		Phone:         "0812345678",
		PaymentMethod: model.PayOnSite,
	}
}

var caller = Identity{UserID: 7, Email: "Applicant@Example.com"}

// ----- Submit -----

func TestSubmitRequiresAuthentication(t *testing.T) {
	e := New(newFakeRounds(openRound(1, 10, 0)), newFakeBookings(), &fakeBlobs{})

	_, err := e.Submit(context.Background(), Identity{}, transferInput(1))
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = e.Submit(context.Background(), Identity{UserID: 7}, transferInput(1))
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestSubmitFieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitInput)
		field  string
	}{
		{"missing round", func(in *SubmitInput) { in.RoundID = 0 }, "exam_round_id"},
		{"unknown applicant type", func(in *SubmitInput) { in.ApplicantType = "GUEST" }, "applicant_type"},
		{"blank name", func(in *SubmitInput) { in.FullName = "   " }, "full_name"},
		{"blank phone", func(in *SubmitInput) { in.Phone = "" }, "phone"},
		{"unknown payment method", func(in *SubmitInput) { in.PaymentMethod = "CASH" }, "payment_method"},
		{"transfer without slip", func(in *SubmitInput) { in.PaymentProof = nil }, "payment_proof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(newFakeRounds(openRound(1, 10, 0)), newFakeBookings(), &fakeBlobs{})
			in := transferInput(1)
			tt.mutate(&in)

			_, err := e.Submit(context.Background(), caller, in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSubmitInternRequiresIDProof(t *testing.T) {
	e := New(newFakeRounds(openRound(1, 10, 0)), newFakeBookings(), &fakeBlobs{})
	in := transferInput(1)
	in.ApplicantType = model.ApplicantIntern

	_, err := e.Submit(context.Background(), caller, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id_proof", verr.Field)
}

func TestSubmitTransferCreatesPendingWithoutSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	blobs := &fakeBlobs{}
	e := New(rounds, newFakeBookings(), blobs)

	b, err := e.Submit(context.Background(), caller, transferInput(1))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, b.PaymentStatus)
	assert.Nil(t, b.ConfirmedAt)
	assert.Equal(t, uint32(0), rounds.seats(1), "pending transfer must not take a seat")
	assert.Equal(t, model.PriceStandard, b.Price)
	assert.Equal(t, "applicant@example.com", b.Email, "email comes lower-cased from the identity")
	assert.Equal(t, uint64(7), b.OwnerUserID)
	require.NotNil(t, b.PaymentProofURL)
	assert.Contains(t, *b.PaymentProofURL, BucketPaymentSlips)
	assert.Nil(t, b.IDProofURL)
	assert.NotEmpty(t, b.BookingCode)
}

func TestSubmitPayOnSiteStartsVerifiedAndTakesSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	blobs := &fakeBlobs{}
	e := New(rounds, newFakeBookings(), blobs)

	b, err := e.Submit(context.Background(), caller, onSiteInput(1))
	require.NoError(t, err)

	assert.Equal(t, model.StatusVerified, b.PaymentStatus)
	require.NotNil(t, b.ConfirmedAt)
	assert.Equal(t, uint32(1), rounds.seats(1))
	assert.Empty(t, blobs.uploads, "general pay-on-site booking needs no evidence")
}

func TestSubmitDiscountedUploadsIDProof(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	e := New(rounds, newFakeBookings(), &fakeBlobs{})

	in := transferInput(1)
	in.ApplicantType = model.ApplicantStaff
	in.IDProof = &Attachment{Filename: "card.png", Content: strings.NewReader("card")}

	b, err := e.Submit(context.Background(), caller, in)
	require.NoError(t, err)

	assert.Equal(t, model.PriceDiscounted, b.Price)
	require.NotNil(t, b.IDProofURL)
	assert.Contains(t, *b.IDProofURL, BucketIDCards)
	require.NotNil(t, b.PaymentProofURL)
}

func TestSubmitRejectsInactiveRound(t *testing.T) {
	r := openRound(1, 10, 0)
	r.IsActive = false
	e := New(newFakeRounds(r), newFakeBookings(), &fakeBlobs{})

	_, err := e.Submit(context.Background(), caller, transferInput(1))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exam_round_id", verr.Field)
}

func TestSubmitRejectsFullRound(t *testing.T) {
	e := New(newFakeRounds(openRound(1, 3, 3)), newFakeBookings(), &fakeBlobs{})

	_, err := e.Submit(context.Background(), caller, transferInput(1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestSubmitUnknownRound(t *testing.T) {
	e := New(newFakeRounds(), newFakeBookings(), &fakeBlobs{})

	_, err := e.Submit(context.Background(), caller, transferInput(99))
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestSubmitUploadFailureAbortsBeforeInsert(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	bookings := newFakeBookings()
	e := New(rounds, bookings, &fakeBlobs{fail: errors.New("cdn down")})

	_, err := e.Submit(context.Background(), caller, transferInput(1))

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, BucketPaymentSlips, uerr.Bucket)
	assert.Empty(t, bookings.items, "no booking may exist after a failed upload")
	assert.Equal(t, uint32(0), rounds.seats(1))
}

func TestSubmitInsertFailureReleasesSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	bookings := newFakeBookings()
	bookings.failInsert = errors.New("db gone")
	e := New(rounds, bookings, &fakeBlobs{})

	_, err := e.Submit(context.Background(), caller, onSiteInput(1))

	require.Error(t, err)
	assert.Equal(t, uint32(0), rounds.seats(1), "seat taken for a failed insert must be released")
}

func TestSubmitConcurrentOnSiteRespectsCapacity(t *testing.T) {
	const capacity = 5
	const contenders = 40

	rounds := newFakeRounds(openRound(1, capacity, 0))
	bookings := newFakeBookings()
	e := New(rounds, bookings, &fakeBlobs{})

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ident := Identity{UserID: uint64(n + 1), Email: fmt.Sprintf("user%d@example.com", n)}
			_, err := e.Submit(context.Background(), ident, onSiteInput(1))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}
	}
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, uint32(capacity), rounds.seats(1))
	assert.Len(t, bookings.items, capacity)
}

// ----- Review -----

func submitTransfer(t *testing.T, e *Engine) *model.Booking {
	t.Helper()
	b, err := e.Submit(context.Background(), caller, transferInput(1))
	require.NoError(t, err)
	return b
}

func TestReviewVerifyTakesSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	e := New(rounds, newFakeBookings(), &fakeBlobs{})
	b := submitTransfer(t, e)

	got, err := e.Review(context.Background(), b.ID, model.StatusVerified)
	require.NoError(t, err)

	assert.Equal(t, model.StatusVerified, got.PaymentStatus)
	require.NotNil(t, got.ConfirmedAt)
	assert.Equal(t, uint32(1), rounds.seats(1))
}

func TestReviewRejectAfterVerifyReleasesSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	e := New(rounds, newFakeBookings(), &fakeBlobs{})
	b := submitTransfer(t, e)

	_, err := e.Review(context.Background(), b.ID, model.StatusVerified)
	require.NoError(t, err)
	got, err := e.Review(context.Background(), b.ID, model.StatusRejected)
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, got.PaymentStatus)
	assert.Nil(t, got.ConfirmedAt)
	assert.Equal(t, uint32(0), rounds.seats(1), "verify then reject must net to zero")
}

func TestReviewRejectPendingLeavesCounterAlone(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	e := New(rounds, newFakeBookings(), &fakeBlobs{})
	b := submitTransfer(t, e)

	got, err := e.Review(context.Background(), b.ID, model.StatusRejected)
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, got.PaymentStatus)
	assert.Equal(t, uint32(0), rounds.seats(1))
}

func TestReviewSameStatusIsIdempotent(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	e := New(rounds, newFakeBookings(), &fakeBlobs{})
	b := submitTransfer(t, e)

	_, err := e.Review(context.Background(), b.ID, model.StatusVerified)
	require.NoError(t, err)

	// A second approve of an already verified booking changes nothing.
	got, err := e.Review(context.Background(), b.ID, model.StatusVerified)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, got.PaymentStatus)
	assert.Equal(t, uint32(1), rounds.seats(1), "double approval must count one seat")
}

func TestReviewUnknownStatus(t *testing.T) {
	e := New(newFakeRounds(openRound(1, 10, 0)), newFakeBookings(), &fakeBlobs{})
	b := submitTransfer(t, e)

	_, err := e.Review(context.Background(), b.ID, "APPROVED")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReviewUnknownBooking(t *testing.T) {
	e := New(newFakeRounds(openRound(1, 10, 0)), newFakeBookings(), &fakeBlobs{})

	_, err := e.Review(context.Background(), 42, model.StatusVerified)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestReviewVerifyFailsWhenRoundFilledUp(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 1, 0))
	e := New(rounds, newFakeBookings(), &fakeBlobs{})
	b := submitTransfer(t, e)

	// Someone else takes the last seat before the admin reviews.
	require.NoError(t, rounds.AdjustSeats(context.Background(), 1, 1))

	_, err := e.Review(context.Background(), b.ID, model.StatusVerified)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	got, err := e.bookings.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.PaymentStatus, "booking must stay pending when the seat grab fails")
}

func TestReviewStatusWriteFailureCompensatesSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	bookings := newFakeBookings()
	e := New(rounds, bookings, &fakeBlobs{})
	b := submitTransfer(t, e)

	bookings.failSet = errors.New("db gone")
	_, err := e.Review(context.Background(), b.ID, model.StatusVerified)

	require.Error(t, err)
	assert.Equal(t, uint32(0), rounds.seats(1), "seat taken for a failed status write must be returned")
}

// ----- Remove -----

func TestRemoveVerifiedReleasesSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	bookings := newFakeBookings()
	e := New(rounds, bookings, &fakeBlobs{})
	b := submitTransfer(t, e)
	_, err := e.Review(context.Background(), b.ID, model.StatusVerified)
	require.NoError(t, err)

	require.NoError(t, e.Remove(context.Background(), b.ID))

	assert.Equal(t, uint32(0), rounds.seats(1))
	assert.Empty(t, bookings.items)
}

func TestRemovePendingLeavesCounterAlone(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 2))
	bookings := newFakeBookings()
	e := New(rounds, bookings, &fakeBlobs{})
	b := submitTransfer(t, e)

	require.NoError(t, e.Remove(context.Background(), b.ID))
	assert.Equal(t, uint32(2), rounds.seats(1))
}

func TestRemoveUnknownBooking(t *testing.T) {
	e := New(newFakeRounds(openRound(1, 10, 0)), newFakeBookings(), &fakeBlobs{})
	assert.ErrorIs(t, e.Remove(context.Background(), 42), ErrBookingNotFound)
}

func TestRemoveDeleteFailureCompensatesSeat(t *testing.T) {
	rounds := newFakeRounds(openRound(1, 10, 0))
	bookings := newFakeBookings()
	e := New(rounds, bookings, &fakeBlobs{})
	b := submitTransfer(t, e)
	_, err := e.Review(context.Background(), b.ID, model.StatusVerified)
	require.NoError(t, err)

	bookings.failDelete = errors.New("db gone")
	err = e.Remove(context.Background(), b.ID)

	require.Error(t, err)
	assert.Equal(t, uint32(1), rounds.seats(1), "seat released for a failed delete must be retaken")
}
