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

type UserRepo struct {
	coll *mongo.Collection
	obs  Observer
}

func NewUserRepo(db *mongo.Database, obs Observer) *UserRepo {
	return &UserRepo{coll: db.Collection(usersCollection), obs: observerOrNop(obs)}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	err := r.obs.ObserveDB("users.insert", func() error {
		_, err := r.coll.InsertOne(ctx, user)
		return err
	})
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, "users.find_by_id", bson.M{"_id": id})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "users.find_by_email", bson.M{"email": email})
}

func (r *UserRepo) findOne(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.obs.ObserveDB(op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&user)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	opts := options.Find().SetProjection(bson.M{"password": 0})
	err := r.obs.ObserveDB("users.find_by_ids", func() error {
		cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &users)
	})
	return users, err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone *string) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if phone != nil {
		set["phone"] = *phone
	}
	return r.findOneAndUpdate(ctx, "users.update_profile", bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *UserRepo) ReplaceAddresses(ctx context.Context, id primitive.ObjectID, expectedVersion int64, addresses []models.Address) (*models.User, error) {
	filter := bson.M{"_id": id, "addressesVersion": expectedVersion}
	if expectedVersion == 0 {
		// documents written before the version field existed
		filter = bson.M{"_id": id, "$or": bson.A{
			bson.M{"addressesVersion": 0},
			bson.M{"addressesVersion": bson.M{"$exists": false}},
		}}
	}
	update := bson.M{
		"$set": bson.M{"addresses": addresses, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"addressesVersion": 1},
	}

	user, err := r.findOneAndUpdate(ctx, "users.replace_addresses", filter, update)
	if errors.Is(err, repository.ErrNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, repository.ErrStale
	}
	return user, err
}

func (r *UserRepo) SetRole(ctx context.Context, email string, role models.Role) error {
	return r.obs.ObserveDB("users.set_role", func() error {
		res, err := r.coll.UpdateOne(ctx, bson.M{"email": email},
			bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *UserRepo) findOneAndUpdate(ctx context.Context, op string, filter, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.obs.ObserveDB(op, func() error {
		return r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
