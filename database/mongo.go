package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"conference-booking/model"
)

const (
	conferencesCollection = "conferences"
	bookingsCollection    = "bookings"
	usersCollection       = "users"
)

// MongoStore keeps conferences, bookings and users in three collections.
// Bookings get sequential numeric ids taken from the conference's booking_seq
// counter, which is bumped in the same update that reserves the tickets.
type MongoStore struct {
	client      *mongo.Client
	conferences *mongo.Collection
	bookings    *mongo.Collection
	users       *mongo.Collection
}

func NewMongoStore(ctx context.Context, connString, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the db: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("db is not available: %w", err)
	}

	db := client.Database(database)
	store := &MongoStore{
		client:      client,
		conferences: db.Collection(conferencesCollection),
		bookings:    db.Collection(bookingsCollection),
		users:       db.Collection(usersCollection),
	}

	if err := store.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := s.bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{primitive.E{Key: "email", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("cannot create bookings index: %w", err)
	}
	if _, err := s.conferences.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{primitive.E{Key: "name", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("cannot create conferences index: %w", err)
	}
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{primitive.E{Key: "login", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("cannot create users index: %w", err)
	}
	return nil
}

func (s *MongoStore) EnsureConference(ctx context.Context, name string, totalTickets uint) (model.Conference, bool, error) {
	var conf model.Conference
	err := s.conferences.FindOne(ctx, bson.D{primitive.E{Key: "name", Value: name}}).Decode(&conf)
	if err == nil {
		return conf, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return model.Conference{}, false, fmt.Errorf("cannot read conference: %w", err)
	}

	count, err := s.conferences.CountDocuments(ctx, bson.D{})
	if err != nil {
		return model.Conference{}, false, fmt.Errorf("cannot count conferences: %w", err)
	}

	now := time.Now().UTC()
	conf = model.Conference{
		ID:               uint(count) + 1,
		Name:             name,
		TotalTickets:     totalTickets,
		RemainingTickets: totalTickets,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := s.conferences.InsertOne(ctx, conf); err != nil {
		return model.Conference{}, false, fmt.Errorf("cannot create conference: %w", err)
	}
	return conf, true, nil
}

func (s *MongoStore) GetConference(ctx context.Context, id uint) (model.Conference, error) {
	var conf model.Conference
	err := s.conferences.FindOne(ctx, bson.D{primitive.E{Key: "_id", Value: id}}).Decode(&conf)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Conference{}, fmt.Errorf("conference %d: %w", id, ErrNotFound)
	} else if err != nil {
		return model.Conference{}, fmt.Errorf("cannot read conference: %w", err)
	}
	return conf, nil
}

func (s *MongoStore) UpdateTotalTickets(ctx context.Context, id uint, totalTickets uint) (model.Conference, error) {
	conf, err := s.GetConference(ctx, id)
	if err != nil {
		return model.Conference{}, err
	}

	remaining, err := remainingAfterResize(conf, totalTickets)
	if err != nil {
		return model.Conference{}, err
	}

	// Matching on the previous counters makes the update fail if a booking
	// slipped in between the read and the write.
	filter := bson.D{
		primitive.E{Key: "_id", Value: id},
		primitive.E{Key: "remaining_tickets", Value: conf.RemainingTickets},
		primitive.E{Key: "total_tickets", Value: conf.TotalTickets},
	}
	update := bson.D{primitive.E{Key: "$set", Value: bson.D{
		primitive.E{Key: "total_tickets", Value: totalTickets},
		primitive.E{Key: "remaining_tickets", Value: remaining},
		primitive.E{Key: "updated_at", Value: time.Now().UTC()},
	}}}

	var updated model.Conference
	err = s.conferences.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Conference{}, fmt.Errorf("conference %d changed concurrently, retry: %w", id, ErrTicketsAlreadyBooked)
	} else if err != nil {
		return model.Conference{}, fmt.Errorf("cannot update conference: %w", err)
	}
	return updated, nil
}

func (s *MongoStore) BookTickets(ctx context.Context, conferenceID uint, req model.BookingRequest) (model.Booking, error) {
	now := time.Now().UTC()

	filter := bson.D{
		primitive.E{Key: "_id", Value: conferenceID},
		primitive.E{Key: "remaining_tickets", Value: bson.D{primitive.E{Key: "$gte", Value: req.Tickets}}},
	}
	update := bson.D{
		primitive.E{Key: "$inc", Value: bson.D{
			primitive.E{Key: "remaining_tickets", Value: -int64(req.Tickets)},
			primitive.E{Key: "booking_seq", Value: 1},
		}},
		primitive.E{Key: "$set", Value: bson.D{primitive.E{Key: "updated_at", Value: now}}},
	}

	var conf model.Conference
	err := s.conferences.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&conf)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := s.GetConference(ctx, conferenceID); getErr != nil {
			return model.Booking{}, getErr
		}
		return model.Booking{}, fmt.Errorf("requested %d: %w", req.Tickets, ErrNotEnoughTickets)
	} else if err != nil {
		return model.Booking{}, fmt.Errorf("cannot reserve tickets: %w", err)
	}

	booking := model.Booking{
		ID:              conf.BookingSeq,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		NumberOfTickets: req.Tickets,
		ConferenceID:    conf.ID,
		CreatedAt:       now,
	}

	if _, err := s.bookings.InsertOne(ctx, booking); err != nil {
		if releaseErr := s.releaseTickets(ctx, conferenceID, req.Tickets); releaseErr != nil {
			return model.Booking{}, fmt.Errorf("cannot release tickets after failed booking (%v): %w", err, releaseErr)
		}
		if mongo.IsDuplicateKeyError(err) {
			return model.Booking{}, fmt.Errorf("%s: %w", req.Email, ErrDuplicateEmail)
		}
		return model.Booking{}, fmt.Errorf("cannot store booking: %w", err)
	}

	booking.Conference = conf
	return booking, nil
}

func (s *MongoStore) releaseTickets(ctx context.Context, conferenceID uint, tickets uint) error {
	_, err := s.conferences.UpdateOne(ctx,
		bson.D{primitive.E{Key: "_id", Value: conferenceID}},
		bson.D{primitive.E{Key: "$inc", Value: bson.D{
			primitive.E{Key: "remaining_tickets", Value: int64(tickets)},
		}}})
	return err
}

func (s *MongoStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	conferences := map[uint]model.Conference{}
	confCur, err := s.conferences.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("cannot read conferences: %w", err)
	}
	defer confCur.Close(ctx)
	for confCur.Next(ctx) {
		var conf model.Conference
		if err := confCur.Decode(&conf); err != nil {
			return nil, fmt.Errorf("cannot decode conference: %w", err)
		}
		conferences[conf.ID] = conf
	}
	if err := confCur.Err(); err != nil {
		return nil, fmt.Errorf("cannot read conferences: %w", err)
	}

	cur, err := s.bookings.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{primitive.E{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot read bookings: %w", err)
	}
	defer cur.Close(ctx)

	bookings := []model.Booking{}
	for cur.Next(ctx) {
		var booking model.Booking
		if err := cur.Decode(&booking); err != nil {
			return nil, fmt.Errorf("cannot decode booking: %w", err)
		}
		booking.Conference = conferences[booking.ConferenceID]
		bookings = append(bookings, booking)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cannot read bookings: %w", err)
	}

	return bookings, nil
}

func (s *MongoStore) GetUserData(ctx context.Context, login string) (model.UserData, error) {
	var user model.UserData
	err := s.users.FindOne(ctx, bson.D{primitive.E{Key: "login", Value: login}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.UserData{}, fmt.Errorf("user %q: %w", login, ErrNotFound)
	} else if err != nil {
		return model.UserData{}, fmt.Errorf("server side problem occured while reading user data from database: %w", err)
	}
	return user, nil
}

func (s *MongoStore) SaveUserData(ctx context.Context, user model.UserData) error {
	_, err := s.users.ReplaceOne(ctx,
		bson.D{primitive.E{Key: "login", Value: user.Login}},
		user,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("cannot save user data: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
