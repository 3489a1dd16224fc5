package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/exam-seat-booking/internal/engine"
	"github.com/iliyamo/exam-seat-booking/internal/model"
	"github.com/iliyamo/exam-seat-booking/internal/utils"
)

// BookingRepo provides CRUD operations for bookings.  Booking codes are
// generated here at insert time so the code is issued exactly once and
// never changes afterwards.  Seat-count consequences of status changes
// are not this repository's concern; the engine orders those around the
// status writes.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, booking_code, exam_round_id, applicant_type, full_name, email, phone,
	price, payment_method, payment_status, id_proof_url, payment_proof_url,
	owner_user_id, created_at, confirmed_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var (
		b           model.Booking
		idProof     sql.NullString
		payProof    sql.NullString
		confirmedAt sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.BookingCode, &b.ExamRoundID, &b.ApplicantType, &b.FullName, &b.Email, &b.Phone,
		&b.Price, &b.PaymentMethod, &b.PaymentStatus, &idProof, &payProof,
		&b.OwnerUserID, &b.CreatedAt, &confirmedAt,
	)
	if err != nil {
		return nil, err
	}
	if idProof.Valid {
		v := idProof.String
		b.IDProofURL = &v
	}
	if payProof.Valid {
		v := payProof.String
		b.PaymentProofURL = &v
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		b.ConfirmedAt = &t
	}
	return &b, nil
}

// InsertBooking persists a new booking.  A fresh booking code is
// generated for each attempt; on the (unlikely) unique-key collision
// the insert is retried with a new code a few times before giving up.
// The created record's ID, BookingCode and CreatedAt are populated on
// the passed struct.
func (r *BookingRepo) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(booking_code, exam_round_id, applicant_type, full_name, email, phone,
		 price, payment_method, payment_status, id_proof_url, payment_proof_url,
		 owner_user_id, confirmed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code, err := utils.NewBookingCode()
		if err != nil {
			return err
		}
		res, err := r.db.ExecContext(ctx, q,
			code, b.ExamRoundID, b.ApplicantType, b.FullName, b.Email, b.Phone,
			b.Price, b.PaymentMethod, b.PaymentStatus, b.IDProofURL, b.PaymentProofURL,
			b.OwnerUserID, b.ConfirmedAt)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				lastErr = err
				continue
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.ID = uint64(id)
		b.BookingCode = code
		// Read back the row to pick up the DB-assigned created_at.
		stored, err := r.GetBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		b.CreatedAt = stored.CreatedAt
		return nil
	}
	return lastErr
}

// GetBooking loads a booking by id.  Returns engine.ErrBookingNotFound
// when no row matches.
func (r *BookingRepo) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrBookingNotFound
	}
	return b, err
}

// SetStatus updates the payment status and confirmed_at of a booking.
func (r *BookingRepo) SetStatus(ctx context.Context, id uint64, status model.PaymentStatus, confirmedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET payment_status = ?, confirmed_at = ? WHERE id = ?`,
		status, confirmedAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return engine.ErrBookingNotFound
		}
	}
	return nil
}

// DeleteBooking removes a booking record.
func (r *BookingRepo) DeleteBooking(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrBookingNotFound
	}
	return nil
}

// BookingDetail is a booking joined with its round's date and time
// slot, the shape the admin dashboard and the applicant's own list
// render from without a second query.
type BookingDetail struct {
	model.Booking
	ExamDate time.Time      `json:"exam_date"`
	ExamTime model.ExamTime `json:"exam_time"`
}

const detailQuery = `SELECT b.id, b.booking_code, b.exam_round_id, b.applicant_type, b.full_name, b.email, b.phone,
		b.price, b.payment_method, b.payment_status, b.id_proof_url, b.payment_proof_url,
		b.owner_user_id, b.created_at, b.confirmed_at,
		r.exam_date, r.exam_time
	FROM bookings b
	JOIN exam_rounds r ON r.id = b.exam_round_id`

func (r *BookingRepo) listDetails(ctx context.Context, query string, args ...any) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d           BookingDetail
			idProof     sql.NullString
			payProof    sql.NullString
			confirmedAt sql.NullTime
		)
		if err := rows.Scan(
			&d.ID, &d.BookingCode, &d.ExamRoundID, &d.ApplicantType, &d.FullName, &d.Email, &d.Phone,
			&d.Price, &d.PaymentMethod, &d.PaymentStatus, &idProof, &payProof,
			&d.OwnerUserID, &d.CreatedAt, &confirmedAt,
			&d.ExamDate, &d.ExamTime,
		); err != nil {
			return nil, err
		}
		if idProof.Valid {
			v := idProof.String
			d.IDProofURL = &v
		}
		if payProof.Valid {
			v := payProof.String
			d.PaymentProofURL = &v
		}
		if confirmedAt.Valid {
			t := confirmedAt.Time
			d.ConfirmedAt = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListAll returns bookings for admin review, newest first, optionally
// filtered by payment status.
func (r *BookingRepo) ListAll(ctx context.Context, status *model.PaymentStatus) ([]BookingDetail, error) {
	if status != nil {
		return r.listDetails(ctx,
			detailQuery+` WHERE b.payment_status = ? ORDER BY b.created_at DESC`, *status)
	}
	return r.listDetails(ctx, detailQuery+` ORDER BY b.created_at DESC`)
}

// ListByOwner returns the bookings created by one user, newest first.
func (r *BookingRepo) ListByOwner(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	return r.listDetails(ctx,
		detailQuery+` WHERE b.owner_user_id = ? ORDER BY b.created_at DESC`, userID)
}

// CountVerifiedByRound returns the number of VERIFIED bookings for a
// round.  It exists for reconciliation: at any quiescent point this
// count must equal the round's current_seats.
func (r *BookingRepo) CountVerifiedByRound(ctx context.Context, roundID uint64) (uint32, error) {
	var n uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE exam_round_id = ? AND payment_status = ?`,
		roundID, model.StatusVerified).Scan(&n)
	return n, err
}
