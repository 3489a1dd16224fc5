package utils

import "crypto/rand"

// codeAlphabet deliberately omits 0/O, 1/I/L and other glyphs that read
// ambiguously when an applicant copies the code off a phone screen at
// the exam venue.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 8

// NewBookingCode returns a human-readable reference like "EX-7KQ2M9RD".
// Codes are random, not sequential, so one applicant cannot guess
// another's reference.
func NewBookingCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "EX-" + string(out), nil
}
