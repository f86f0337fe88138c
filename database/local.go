package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"conference-booking/model"
)

type localData struct {
	Conferences []model.Conference `json:"conferences"`
	Bookings    []model.Booking    `json:"bookings"`
	Users       []model.UserData   `json:"users"`
}

// LocalStore keeps everything in a single JSON file. Every operation reads
// the file, applies its change and writes it back under one mutex, which is
// enough for a single process.
type LocalStore struct {
	mu   sync.Mutex
	path string
}

func NewLocalStore(path string) (*LocalStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create local db directory: %w", err)
		}
	}
	return &LocalStore{path: path}, nil
}

func (s *LocalStore) read() (localData, error) {
	data := localData{}

	fileBytes, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	} else if err != nil {
		return data, fmt.Errorf("cannot read local db: %w", err)
	}

	if err := json.Unmarshal(fileBytes, &data); err != nil {
		return data, fmt.Errorf("cannot decode local db: %w", err)
	}
	return data, nil
}

func (s *LocalStore) commit(data localData) error {
	dataBytes, err := json.MarshalIndent(data, "", "	")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, dataBytes, 0644); err != nil {
		return fmt.Errorf("cannot write local db: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *LocalStore) EnsureConference(_ context.Context, name string, totalTickets uint) (model.Conference, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return model.Conference{}, false, err
	}

	var nextID uint = 1
	for _, conf := range data.Conferences {
		if conf.Name == name {
			return conf, false, nil
		}
		if conf.ID >= nextID {
			nextID = conf.ID + 1
		}
	}

	now := time.Now().UTC()
	conf := model.Conference{
		ID:               nextID,
		Name:             name,
		TotalTickets:     totalTickets,
		RemainingTickets: totalTickets,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	data.Conferences = append(data.Conferences, conf)

	if err := s.commit(data); err != nil {
		return model.Conference{}, false, err
	}
	return conf, true, nil
}

func (s *LocalStore) GetConference(_ context.Context, id uint) (model.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return model.Conference{}, err
	}

	idx := conferenceIndex(data, id)
	if idx < 0 {
		return model.Conference{}, fmt.Errorf("conference %d: %w", id, ErrNotFound)
	}
	return data.Conferences[idx], nil
}

func (s *LocalStore) UpdateTotalTickets(_ context.Context, id uint, totalTickets uint) (model.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return model.Conference{}, err
	}

	idx := conferenceIndex(data, id)
	if idx < 0 {
		return model.Conference{}, fmt.Errorf("conference %d: %w", id, ErrNotFound)
	}

	conf := data.Conferences[idx]
	remaining, err := remainingAfterResize(conf, totalTickets)
	if err != nil {
		return model.Conference{}, err
	}
	conf.TotalTickets = totalTickets
	conf.RemainingTickets = remaining
	conf.UpdatedAt = time.Now().UTC()
	data.Conferences[idx] = conf

	if err := s.commit(data); err != nil {
		return model.Conference{}, err
	}
	return conf, nil
}

func (s *LocalStore) BookTickets(_ context.Context, conferenceID uint, req model.BookingRequest) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return model.Booking{}, err
	}

	idx := conferenceIndex(data, conferenceID)
	if idx < 0 {
		return model.Booking{}, fmt.Errorf("conference %d: %w", conferenceID, ErrNotFound)
	}
	conf := data.Conferences[idx]

	if req.Tickets > conf.RemainingTickets {
		return model.Booking{}, fmt.Errorf("requested %d, available %d: %w",
			req.Tickets, conf.RemainingTickets, ErrNotEnoughTickets)
	}

	var nextID uint = 1
	for _, booking := range data.Bookings {
		if strings.EqualFold(booking.Email, req.Email) {
			return model.Booking{}, fmt.Errorf("%s: %w", req.Email, ErrDuplicateEmail)
		}
		if booking.ID >= nextID {
			nextID = booking.ID + 1
		}
	}

	now := time.Now().UTC()
	conf.RemainingTickets -= req.Tickets
	conf.UpdatedAt = now
	data.Conferences[idx] = conf

	booking := model.Booking{
		ID:              nextID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		NumberOfTickets: req.Tickets,
		ConferenceID:    conf.ID,
		CreatedAt:       now,
	}
	data.Bookings = append(data.Bookings, booking)

	if err := s.commit(data); err != nil {
		return model.Booking{}, err
	}

	booking.Conference = conf
	return booking, nil
}

func (s *LocalStore) ListBookings(_ context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}

	conferences := make(map[uint]model.Conference, len(data.Conferences))
	for _, conf := range data.Conferences {
		conferences[conf.ID] = conf
	}

	bookings := make([]model.Booking, 0, len(data.Bookings))
	for _, booking := range data.Bookings {
		booking.Conference = conferences[booking.ConferenceID]
		bookings = append(bookings, booking)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })

	return bookings, nil
}

func (s *LocalStore) GetUserData(_ context.Context, login string) (model.UserData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return model.UserData{}, err
	}

	for _, user := range data.Users {
		if user.Login == login {
			return user, nil
		}
	}
	return model.UserData{}, fmt.Errorf("user %q: %w", login, ErrNotFound)
}

func (s *LocalStore) SaveUserData(_ context.Context, user model.UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}

	for i, existing := range data.Users {
		if existing.Login == user.Login {
			data.Users[i] = user
			return s.commit(data)
		}
	}

	data.Users = append(data.Users, user)
	return s.commit(data)
}

func (s *LocalStore) Close(context.Context) error {
	return nil
}

func conferenceIndex(data localData, id uint) int {
	for i, conf := range data.Conferences {
		if conf.ID == id {
			return i
		}
	}
	return -1
}
