package service

import "errors"

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrSoldOut          = errors.New("no tickets available for this event")
	ErrTimeSlotRequired = errors.New("time slot is required for this event")
	ErrInvalidTimeSlot  = errors.New("invalid time slot for this event")
)
