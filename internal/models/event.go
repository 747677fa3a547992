package models

import "time"

type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Location         string    `json:"location,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	TimeSlots        []string  `json:"time_slots,omitempty"`
	AvailableTickets int       `json:"available_tickets"`
	Registrations    int       `json:"registrations"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (e *Event) IsSoldOut() bool {
	return e.AvailableTickets <= 0
}

func (e *Event) HasTimeSlots() bool {
	return len(e.TimeSlots) > 0
}

func (e *Event) HasTimeSlot(slot string) bool {
	for _, s := range e.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}
