package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"conference-booking/model"
)

// PostgresStore is the relational store. Booking runs in a transaction that
// locks the conference row, so concurrent bookings for the same conference
// are serialized.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the db: %w", err)
	}

	if err := db.AutoMigrate(&model.Conference{}, &model.Booking{}, &model.UserData{}); err != nil {
		return nil, fmt.Errorf("cannot migrate schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) EnsureConference(ctx context.Context, name string, totalTickets uint) (model.Conference, bool, error) {
	conf := model.Conference{
		Name:             name,
		TotalTickets:     totalTickets,
		RemainingTickets: totalTickets,
	}

	result := s.db.WithContext(ctx).
		Where(model.Conference{Name: name}).
		FirstOrCreate(&conf)
	if result.Error != nil {
		return model.Conference{}, false, fmt.Errorf("cannot find or create conference: %w", result.Error)
	}
	return conf, result.RowsAffected > 0, nil
}

func (s *PostgresStore) GetConference(ctx context.Context, id uint) (model.Conference, error) {
	var conf model.Conference
	if err := s.db.WithContext(ctx).First(&conf, id).Error; err != nil {
		return model.Conference{}, notFound(err, fmt.Sprintf("conference %d", id))
	}
	return conf, nil
}

func (s *PostgresStore) UpdateTotalTickets(ctx context.Context, id uint, totalTickets uint) (model.Conference, error) {
	var conf model.Conference

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&conf, id).Error; err != nil {
			return notFound(err, fmt.Sprintf("conference %d", id))
		}

		remaining, err := remainingAfterResize(conf, totalTickets)
		if err != nil {
			return err
		}

		if err := tx.Model(&conf).Updates(map[string]interface{}{
			"total_tickets":     totalTickets,
			"remaining_tickets": remaining,
		}).Error; err != nil {
			return fmt.Errorf("cannot update conference: %w", err)
		}
		conf.TotalTickets = totalTickets
		conf.RemainingTickets = remaining
		return nil
	})
	if err != nil {
		return model.Conference{}, err
	}
	return conf, nil
}

func (s *PostgresStore) BookTickets(ctx context.Context, conferenceID uint, req model.BookingRequest) (model.Booking, error) {
	var booking model.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conf model.Conference
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&conf, conferenceID).Error; err != nil {
			return notFound(err, fmt.Sprintf("conference %d", conferenceID))
		}

		if req.Tickets > conf.RemainingTickets {
			return fmt.Errorf("requested %d, available %d: %w", req.Tickets, conf.RemainingTickets, ErrNotEnoughTickets)
		}

		booking = model.Booking{
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Email:           req.Email,
			NumberOfTickets: req.Tickets,
			ConferenceID:    conf.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%s: %w", req.Email, ErrDuplicateEmail)
			}
			return fmt.Errorf("cannot store booking: %w", err)
		}

		remaining := conf.RemainingTickets - req.Tickets
		if err := tx.Model(&conf).Update("remaining_tickets", remaining).Error; err != nil {
			return fmt.Errorf("cannot update remaining tickets: %w", err)
		}
		conf.RemainingTickets = remaining

		booking.Conference = conf
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (s *PostgresStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	bookings := []model.Booking{}
	if err := s.db.WithContext(ctx).Preload("Conference").Order("id").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("cannot read bookings: %w", err)
	}
	return bookings, nil
}

func (s *PostgresStore) GetUserData(ctx context.Context, login string) (model.UserData, error) {
	var user model.UserData
	if err := s.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		return model.UserData{}, notFound(err, fmt.Sprintf("user %q", login))
	}
	return user, nil
}

func (s *PostgresStore) SaveUserData(ctx context.Context, user model.UserData) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login"}},
		DoUpdates: clause.AssignmentColumns([]string{"hashed_password", "role"}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("cannot save user data: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("cannot read %s: %w", what, err)
}
