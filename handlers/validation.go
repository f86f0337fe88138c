package handlers

import (
	"errors"
	"fmt"
	"regexp"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func nameValidation(firstName, lastName string) error {
	if len(firstName) < 2 || len(lastName) < 2 {
		return errors.New("first and last name must have at least 2 characters")
	}
	return nil
}

func emailValidation(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%q is not a valid email", email)
	}
	return nil
}

func ticketsNumberValidation(ticketsToBook uint, remainingTickets uint) error {
	if ticketsToBook == 0 {
		return errors.New("cannot book 0 tickets")
	} else if ticketsToBook > remainingTickets {
		return fmt.Errorf("only %v tickets left for the conference, overbooking is not supported", remainingTickets)
	}
	return nil
}
