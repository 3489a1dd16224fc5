package model

import "time"

// ExamTime enumerates the two daily slots a round can occupy.
type ExamTime string

const (
	ExamTimeMorning   ExamTime = "MORNING"
	ExamTimeAfternoon ExamTime = "AFTERNOON"
)

// Valid reports whether t is one of the known slots.
func (t ExamTime) Valid() bool {
	return t == ExamTimeMorning || t == ExamTimeAfternoon
}

// ExamRound represents a bookable exam sitting on a particular date and
// time slot.  CurrentSeats counts the bookings that currently hold a seat
// (payment status VERIFIED); the repository guarantees
// 0 <= CurrentSeats <= MaxSeats after every committed mutation.
// Inactive rounds are hidden from the public booking form but remain
// visible to admins.
//
// Fields:
//  ID           - primary key identifier.
//  ExamDate     - calendar date of the sitting.
//  ExamTime     - MORNING or AFTERNOON.
//  MaxSeats     - positive seat capacity.
//  CurrentSeats - seats counted as occupied.
//  IsActive     - whether the round is offered to new bookers.
//  CreatedAt    - creation timestamp.
//  UpdatedAt    - last update timestamp.
type ExamRound struct {
	ID           uint64    `json:"id"`
	ExamDate     time.Time `json:"exam_date"`
	ExamTime     ExamTime  `json:"exam_time"`
	MaxSeats     uint32    `json:"max_seats"`
	CurrentSeats uint32    `json:"current_seats"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Full reports whether the round has no remaining capacity.  Full rounds
// are still listed to applicants so they can see the round exists; the
// form marks them unselectable instead of omitting them.
func (r *ExamRound) Full() bool {
	return r.CurrentSeats >= r.MaxSeats
}

// SeatsLeft returns the remaining capacity, never negative.
func (r *ExamRound) SeatsLeft() uint32 {
	if r.CurrentSeats >= r.MaxSeats {
		return 0
	}
	return r.MaxSeats - r.CurrentSeats
}
