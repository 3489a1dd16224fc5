package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/exam-seat-booking/internal/engine"
	"github.com/iliyamo/exam-seat-booking/internal/model"
)

// RoundRepo provides CRUD operations for exam rounds.  The seat counter
// is only ever mutated through AdjustSeats, which implements the
// conditional update required by the capacity contract; there is no
// method that overwrites current_seats directly.
type RoundRepo struct {
	db *sql.DB
}

// NewRoundRepo returns a RoundRepo bound to the given database.
func NewRoundRepo(db *sql.DB) *RoundRepo { return &RoundRepo{db: db} }

// DB exposes the underlying handle for callers that need it.
func (r *RoundRepo) DB() *sql.DB { return r.db }

const roundColumns = `id, exam_date, exam_time, max_seats, current_seats, is_active, created_at, updated_at`

func scanRound(row interface{ Scan(...any) error }) (*model.ExamRound, error) {
	var rd model.ExamRound
	err := row.Scan(
		&rd.ID, &rd.ExamDate, &rd.ExamTime, &rd.MaxSeats,
		&rd.CurrentSeats, &rd.IsActive, &rd.CreatedAt, &rd.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

// GetRound loads a single round by id.  It returns
// engine.ErrRoundNotFound when no row matches.
func (r *RoundRepo) GetRound(ctx context.Context, id uint64) (*model.ExamRound, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM exam_rounds WHERE id = ?`, id)
	rd, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrRoundNotFound
	}
	return rd, err
}

// ListActive returns active rounds ordered by exam date ascending, the
// order the public booking form presents them in.  Full rounds are
// included; the form marks them unselectable rather than hiding them.
func (r *RoundRepo) ListActive(ctx context.Context) ([]model.ExamRound, error) {
	return r.list(ctx,
		`SELECT `+roundColumns+` FROM exam_rounds WHERE is_active = 1 ORDER BY exam_date ASC, exam_time ASC`)
}

// ListAll returns every round, active or not, ordered by exam date
// ascending.  Used by the admin dashboard.
func (r *RoundRepo) ListAll(ctx context.Context) ([]model.ExamRound, error) {
	return r.list(ctx,
		`SELECT `+roundColumns+` FROM exam_rounds ORDER BY exam_date ASC, exam_time ASC`)
}

func (r *RoundRepo) list(ctx context.Context, query string) ([]model.ExamRound, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ExamRound, 0)
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rd)
	}
	return out, rows.Err()
}

// Create inserts a new round with current_seats = 0 and is_active = 1
// and returns the stored record.  Input validation (date present,
// max_seats > 0) is the handler's concern.
func (r *RoundRepo) Create(ctx context.Context, examDate time.Time, examTime model.ExamTime, maxSeats uint32) (*model.ExamRound, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO exam_rounds (exam_date, exam_time, max_seats, current_seats, is_active) VALUES (?, ?, ?, 0, 1)`,
		examDate, examTime, maxSeats)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetRound(ctx, uint64(id))
}

// SetActive toggles whether a round is offered to new bookers.
// Deactivation does not touch existing bookings or the seat counter.
func (r *RoundRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exam_rounds SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either missing or already in the requested state; distinguish.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM exam_rounds WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return engine.ErrRoundNotFound
		}
	}
	return nil
}

// DeleteByID removes a round that no booking references.  It returns
// engine.ErrConflict when dependent bookings exist and
// engine.ErrRoundNotFound when the round does not exist.  The bookings
// table carries an ON DELETE RESTRICT foreign key as a second line of
// defense; MySQL error 1451 is mapped to the same conflict error.
func (r *RoundRepo) DeleteByID(ctx context.Context, id uint64) error {
	var referenced bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE exam_round_id = ?)`, id).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return engine.ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM exam_rounds WHERE id = ?`, id)
	if err != nil {
		if strings.Contains(err.Error(), "1451") {
			return engine.ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrRoundNotFound
	}
	return nil
}

// AdjustSeats applies a seat-count delta as a single conditional
// UPDATE: the row only changes when the result stays within
// [0, max_seats].  Combined with the engine's per-round lock this makes
// the capacity check and the reservation one linearizable step, closing
// the read-then-write race that an unguarded counter has.
func (r *RoundRepo) AdjustSeats(ctx context.Context, id uint64, delta int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exam_rounds
		 SET current_seats = current_seats + ?
		 WHERE id = ?
		   AND current_seats + ? >= 0
		   AND current_seats + ? <= max_seats`,
		delta, id, delta, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// The guard refused the update; figure out why.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM exam_rounds WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return engine.ErrRoundNotFound
	}
	if delta > 0 {
		return engine.ErrCapacityExceeded
	}
	return ErrSeatUnderflow
}
