package model

import "time"

// BookingRequest is the body of POST /api/book.
type BookingRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Tickets   uint   `json:"tickets"`
}

// Booking is a stored booking as returned by GET /api/bookings. Conference is
// filled in on read and never persisted with the booking itself.
type Booking struct {
	ID              uint       `json:"ID" bson:"_id" gorm:"primaryKey"`
	FirstName       string     `json:"FirstName" bson:"first_name"`
	LastName        string     `json:"LastName" bson:"last_name"`
	Email           string     `json:"Email" bson:"email" gorm:"uniqueIndex"`
	NumberOfTickets uint       `json:"NumberOfTickets" bson:"number_of_tickets"`
	ConferenceID    uint       `json:"ConferenceID" bson:"conference_id"`
	Conference      Conference `json:"Conference" bson:"-" gorm:"foreignKey:ConferenceID"`
	CreatedAt       time.Time  `json:"CreatedAt" bson:"created_at"`
}
