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

type ServiceRepo struct {
	coll *mongo.Collection
	obs  Observer
}

func NewServiceRepo(db *mongo.Database, obs Observer) *ServiceRepo {
	return &ServiceRepo{coll: db.Collection(servicesCollection), obs: observerOrNop(obs)}
}

func (r *ServiceRepo) Create(ctx context.Context, service *models.Service) error {
	if service.ID.IsZero() {
		service.ID = primitive.NewObjectID()
	}
	return r.obs.ObserveDB("services.insert", func() error {
		_, err := r.coll.InsertOne(ctx, service)
		return err
	})
}

func (r *ServiceRepo) InsertMany(ctx context.Context, services []models.Service) error {
	if len(services) == 0 {
		return nil
	}
	docs := make([]interface{}, len(services))
	for i := range services {
		if services[i].ID.IsZero() {
			services[i].ID = primitive.NewObjectID()
		}
		docs[i] = services[i]
	}
	return r.obs.ObserveDB("services.insert_many", func() error {
		_, err := r.coll.InsertMany(ctx, docs)
		return err
	})
}

func (r *ServiceRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var service models.Service
	err := r.obs.ObserveDB("services.find_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&service)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepo) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	query := bson.M{}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}
	if filter.Active != nil {
		query["isActive"] = *filter.Active
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})

	services := make([]models.Service, 0)
	err := r.obs.ObserveDB("services.list", func() error {
		cursor, err := r.coll.Find(ctx, query, findOptions)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &services)
	})
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *ServiceRepo) Update(ctx context.Context, id primitive.ObjectID, u repository.ServiceUpdate, now time.Time) (*models.Service, error) {
	set := bson.M{"updatedAt": now}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	if u.Reviews != nil {
		set["reviews"] = *u.Reviews
	}
	if u.Discount != nil {
		set["discount"] = *u.Discount
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	return r.findOneAndUpdate(ctx, "services.update", id, bson.M{"$set": set})
}

// ToggleActive flips isActive server-side so concurrent toggles never collapse.
func (r *ServiceRepo) ToggleActive(ctx context.Context, id primitive.ObjectID, now time.Time) (*models.Service, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isActive", Value: bson.D{{Key: "$not", Value: bson.A{"$isActive"}}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
	return r.findOneAndUpdate(ctx, "services.toggle", id, pipeline)
}

func (r *ServiceRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.obs.ObserveDB("services.delete", func() error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *ServiceRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.obs.ObserveDB("services.count", func() error {
		var err error
		n, err = r.coll.CountDocuments(ctx, bson.M{})
		return err
	})
	return n, err
}

func (r *ServiceRepo) findOneAndUpdate(ctx context.Context, op string, id primitive.ObjectID, update interface{}) (*models.Service, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var service models.Service
	err := r.obs.ObserveDB(op, func() error {
		return r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&service)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}
