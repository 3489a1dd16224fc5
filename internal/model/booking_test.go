package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicantTypePricing(t *testing.T) {
	tests := []struct {
		typ        ApplicantType
		discounted bool
		price      int
	}{
		{ApplicantStaff, true, PriceDiscounted},
		{ApplicantOutsourced, true, PriceDiscounted},
		{ApplicantIntern, true, PriceDiscounted},
		{ApplicantGeneral, false, PriceStandard},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.True(t, tt.typ.Valid())
			assert.Equal(t, tt.discounted, tt.typ.Discounted())
			assert.Equal(t, tt.price, tt.typ.Price())
		})
	}
	assert.False(t, ApplicantType("GUEST").Valid())
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusPending, InitialStatus(PayTransfer))
	assert.Equal(t, StatusVerified, InitialStatus(PayOnSite))
}

func TestHoldsSeat(t *testing.T) {
	assert.False(t, StatusPending.HoldsSeat())
	assert.True(t, StatusVerified.HoldsSeat())
	assert.False(t, StatusRejected.HoldsSeat())
}

func TestSeatDelta(t *testing.T) {
	tests := []struct {
		name     string
		from, to PaymentStatus
		want     int
	}{
		{"pending to verified", StatusPending, StatusVerified, 1},
		{"rejected to verified", StatusRejected, StatusVerified, 1},
		{"verified to rejected", StatusVerified, StatusRejected, -1},
		{"verified to pending", StatusVerified, StatusPending, -1},
		{"pending to rejected", StatusPending, StatusRejected, 0},
		{"rejected to pending", StatusRejected, StatusPending, 0},
		{"verified to verified", StatusVerified, StatusVerified, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeatDelta(tt.from, tt.to))
		})
	}
}

func TestRoundCapacityHelpers(t *testing.T) {
	r := ExamRound{MaxSeats: 3, CurrentSeats: 1}
	assert.False(t, r.Full())
	assert.Equal(t, uint32(2), r.SeatsLeft())

	r.CurrentSeats = 3
	assert.True(t, r.Full())
	assert.Equal(t, uint32(0), r.SeatsLeft())
}

func TestExamTimeValid(t *testing.T) {
	assert.True(t, ExamTimeMorning.Valid())
	assert.True(t, ExamTimeAfternoon.Valid())
	assert.False(t, ExamTime("EVENING").Valid())
}
