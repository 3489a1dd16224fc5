// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingVerifiedEvent is published when an admin verifies a booking's
// payment (or a pay-on-site booking is created already verified).  It
// carries enough for downstream consumers to log or notify the
// applicant without querying the primary database.
type BookingVerifiedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	BookingCode   string `json:"booking_code"`
	OwnerUserID   uint64 `json:"owner_user_id"`
	ExamRoundID   uint64 `json:"exam_round_id"`
	ExamDate      string `json:"exam_date"`
	ExamTime      string `json:"exam_time"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ApplicantType string `json:"applicant_type"`
	PaymentMethod string `json:"payment_method"`
	PriceBaht     uint32 `json:"price_baht"`
	VerifiedAt    string `json:"verified_at"`
}
