package repository

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
	ErrSoldOut          = errors.New("no tickets available")
)
