package model

import "time"

type Conference struct {
	ID               uint      `json:"ID" bson:"_id" gorm:"primaryKey"`
	Name             string    `json:"Name" bson:"name" gorm:"uniqueIndex"`
	TotalTickets     uint      `json:"TotalTickets" bson:"total_tickets"`
	RemainingTickets uint      `json:"RemainingTickets" bson:"remaining_tickets"`
	BookingSeq       uint      `json:"-" bson:"booking_seq" gorm:"-"`
	CreatedAt        time.Time `json:"CreatedAt" bson:"created_at"`
	UpdatedAt        time.Time `json:"UpdatedAt" bson:"updated_at"`
}

// BookedTickets is the number of tickets already taken by bookings.
func (c Conference) BookedTickets() uint {
	return c.TotalTickets - c.RemainingTickets
}
