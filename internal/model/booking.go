package model

import "time"

// ApplicantType categorizes who is sitting the exam.  Staff, outsourced
// workers and interns pay the discounted internal fee and must attach an
// id-card image as proof; general public applicants pay the standard fee.
type ApplicantType string

const (
	ApplicantStaff      ApplicantType = "STAFF"
	ApplicantOutsourced ApplicantType = "OUTSOURCED"
	ApplicantIntern     ApplicantType = "INTERN"
	ApplicantGeneral    ApplicantType = "GENERAL"
)

// Exam fee tiers in whole baht.  The price of a booking is derived from
// the applicant type at submission time and is never accepted from the
// client directly.
const (
	PriceDiscounted = 375
	PriceStandard   = 750
)

// Valid reports whether t is a known applicant type.
func (t ApplicantType) Valid() bool {
	switch t {
	case ApplicantStaff, ApplicantOutsourced, ApplicantIntern, ApplicantGeneral:
		return true
	}
	return false
}

// Discounted reports whether t is in the discounted (internal) fee tier.
func (t ApplicantType) Discounted() bool {
	switch t {
	case ApplicantStaff, ApplicantOutsourced, ApplicantIntern:
		return true
	}
	return false
}

// Price returns the exam fee for the applicant type.
func (t ApplicantType) Price() int {
	if t.Discounted() {
		return PriceDiscounted
	}
	return PriceStandard
}

// PaymentMethod enumerates how the applicant pays the exam fee.
type PaymentMethod string

const (
	PayTransfer PaymentMethod = "TRANSFER"
	PayOnSite   PaymentMethod = "PAY_ON_SITE"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PayTransfer || m == PayOnSite
}

// PaymentStatus is the review state of a booking's payment.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusVerified PaymentStatus = "VERIFIED"
	StatusRejected PaymentStatus = "REJECTED"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

// HoldsSeat reports whether a booking in status s occupies a seat on its
// round.  Only VERIFIED bookings count against capacity; a PENDING
// transfer does not reserve a seat until an admin verifies the slip.
func (s PaymentStatus) HoldsSeat() bool {
	return s == StatusVerified
}

// InitialStatus returns the payment status a freshly created booking
// starts in.  Transfers wait for slip review; pay-on-site bookings are
// presumptively trusted and start verified, which also reserves the seat
// immediately.
func InitialStatus(m PaymentMethod) PaymentStatus {
	if m == PayOnSite {
		return StatusVerified
	}
	return StatusPending
}

// SeatDelta returns the seat-count adjustment a status transition causes
// on the booking's round: +1 when entering VERIFIED, -1 when leaving it,
// 0 for transitions that do not cross the verified boundary.
func SeatDelta(from, to PaymentStatus) int {
	switch {
	case !from.HoldsSeat() && to.HoldsSeat():
		return 1
	case from.HoldsSeat() && !to.HoldsSeat():
		return -1
	}
	return 0
}

// Booking records one applicant's seat request against an exam round.
//
// Fields:
//  ID              - primary key identifier.
//  BookingCode     - short human-readable code, generated at insert time,
//                    unique and immutable once issued.
//  ExamRoundID     - round being booked.
//  ApplicantType   - fee tier category.
//  FullName        - applicant-supplied name.
//  Email           - always the authenticated caller's email, never taken
//                    from the form.
//  Phone           - applicant-supplied contact number.
//  Price           - fee in baht, derived from ApplicantType.
//  PaymentMethod   - TRANSFER or PAY_ON_SITE.
//  PaymentStatus   - PENDING, VERIFIED or REJECTED.
//  IDProofURL      - id-card image, required for discounted types.
//  PaymentProofURL - transfer slip image, required for transfers.
//  OwnerUserID     - identity that created the booking (attribution only).
//  CreatedAt       - creation timestamp.
//  ConfirmedAt     - set on transition into VERIFIED, cleared otherwise.
type Booking struct {
	ID              uint64        `json:"id"`
	BookingCode     string        `json:"booking_code"`
	ExamRoundID     uint64        `json:"exam_round_id"`
	ApplicantType   ApplicantType `json:"applicant_type"`
	FullName        string        `json:"full_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Price           int           `json:"price"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	IDProofURL      *string       `json:"id_proof_url,omitempty"`
	PaymentProofURL *string       `json:"payment_proof_url,omitempty"`
	OwnerUserID     uint64        `json:"owner_user_id"`
	CreatedAt       time.Time     `json:"created_at"`
	ConfirmedAt     *time.Time    `json:"confirmed_at,omitempty"`
}
