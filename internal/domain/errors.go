package domain

import "errors"

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrSeatsTaken       = errors.New("seat(s) are already held or sold")
	ErrInvalidSignature = errors.New("notification signature mismatch")
)
