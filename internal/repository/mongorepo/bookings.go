package mongorepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository"
)

type BookingRepo struct {
	coll *mongo.Collection
	obs  Observer
}

func NewBookingRepo(db *mongo.Database, obs Observer) *BookingRepo {
	return &BookingRepo{coll: db.Collection(bookingsCollection), obs: observerOrNop(obs)}
}

func (r *BookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	return r.obs.ObserveDB("bookings.insert", func() error {
		_, err := r.coll.InsertOne(ctx, booking)
		return err
	})
}

func (r *BookingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.obs.ObserveDB("bookings.find_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepo) List(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user"] = *filter.UserID
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	bookings := make([]models.Booking, 0)
	err := r.obs.ObserveDB("bookings.list", func() error {
		cursor, err := r.coll.Find(ctx, query, findOptions)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &bookings)
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepo) Update(ctx context.Context, id primitive.ObjectID, expectedStatus models.BookingStatus, patch models.BookingPatch, now time.Time) (*models.Booking, error) {
	set := patchToSet(patch)
	set["updatedAt"] = now

	filter := bson.M{"_id": id, "status": expectedStatus}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.obs.ObserveDB("bookings.update", func() error {
		return r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, repository.ErrStale
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func patchToSet(p models.BookingPatch) bson.M {
	set := bson.M{}
	if p.ServiceOption != nil {
		set["serviceOption"] = *p.ServiceOption
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Time != nil {
		set["time"] = *p.Time
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.CustomerName != nil {
		set["customerName"] = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		set["customerEmail"] = *p.CustomerEmail
	}
	if p.CustomerPhone != nil {
		set["customerPhone"] = *p.CustomerPhone
	}
	if p.TotalPrice != nil {
		set["totalPrice"] = *p.TotalPrice
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return set
}
